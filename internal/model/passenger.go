package model

import (
	"fmt"
	"strings"
	"time"

	apperrors "railway-reservation/pkg/app_errors"
)

// Gender 性別
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

const (
	// ChildAgeLimit 未滿此年齡不分配鋪位
	ChildAgeLimit = 5
	// SeniorCitizenAge 年滿此年齡優先分配下鋪
	SeniorCitizenAge = 60
)

// Passenger 乘客模型
type Passenger struct {
	ID                int       `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Age               int       `json:"age" db:"age"`
	Gender            Gender    `json:"gender" db:"gender"`
	HasChildUnderFive bool      `json:"has_child_under_five" db:"has_child_under_five"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// NeedsBerth 未滿 5 歲的乘客由大人抱著，不佔鋪位
func (p *Passenger) NeedsBerth() bool {
	return p.Age >= ChildAgeLimit
}

// HasLowerBerthPriority 年長者或帶幼童的女性優先分配下鋪
func (p *Passenger) HasLowerBerthPriority() bool {
	return p.Age >= SeniorCitizenAge || (p.Gender == GenderFemale && p.HasChildUnderFive)
}

// Dependent 隨行幼童，依附乘客存在
type Dependent struct {
	ID          int       `json:"id" db:"id"`
	PassengerID int       `json:"-" db:"passenger_id"`
	Name        string    `json:"name" db:"name"`
	Age         int       `json:"age" db:"age"`
	Gender      Gender    `json:"gender" db:"gender"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
}

// PassengerInput 訂票請求中的乘客資料
type PassengerInput struct {
	Name              string `json:"name" binding:"required,min=2,max=100"`
	Age               *int   `json:"age" binding:"required,min=0,max=120"`
	Gender            Gender `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	HasChildUnderFive bool   `json:"has_child_under_five"`
}

// DependentInput 訂票請求中的幼童資料
type DependentInput struct {
	Name   string `json:"name" binding:"required,min=2,max=100"`
	Age    int    `json:"age" binding:"min=0,max=4"`
	Gender Gender `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
}

// BookingRequest 訂票請求
type BookingRequest struct {
	Passenger PassengerInput   `json:"passenger" binding:"required"`
	Children  []DependentInput `json:"children" binding:"omitempty,dive"`
}

// ToPassenger 轉成乘客模型；有隨行幼童時一律視為帶幼童
func (r *BookingRequest) ToPassenger() *Passenger {
	age := 0
	if r.Passenger.Age != nil {
		age = *r.Passenger.Age
	}
	return &Passenger{
		Name:              r.Passenger.Name,
		Age:               age,
		Gender:            r.Passenger.Gender,
		HasChildUnderFive: r.Passenger.HasChildUnderFive || len(r.Children) > 0,
	}
}

func (r *BookingRequest) ToDependents() []*Dependent {
	dependents := make([]*Dependent, 0, len(r.Children))
	for _, c := range r.Children {
		dependents = append(dependents, &Dependent{Name: c.Name, Age: c.Age, Gender: c.Gender})
	}
	return dependents
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{apperrors.ErrInvalidInput}, args...)...)
}

func validName(name string) bool {
	n := len([]rune(strings.TrimSpace(name)))
	return n >= 2 && n <= 100
}

// Validate 與 binding 標籤相同的規則，另外要求帶幼童旗標時至少有一位幼童
func (r *BookingRequest) Validate() error {
	p := r.Passenger
	if !validName(p.Name) {
		return invalid("passenger name must be 2-100 characters")
	}
	if p.Age == nil || *p.Age < 0 || *p.Age > 120 {
		return invalid("passenger age must be between 0 and 120")
	}
	if !p.Gender.IsValid() {
		return invalid("passenger gender %q is not one of MALE, FEMALE, OTHER", p.Gender)
	}
	if p.HasChildUnderFive && len(r.Children) == 0 {
		return invalid("has_child_under_five requires at least one child")
	}
	for i, c := range r.Children {
		if !validName(c.Name) {
			return invalid("children[%d] name must be 2-100 characters", i)
		}
		if c.Age < 0 || c.Age >= ChildAgeLimit {
			return invalid("children[%d] age must be under %d", i, ChildAgeLimit)
		}
		if !c.Gender.IsValid() {
			return invalid("children[%d] gender %q is not one of MALE, FEMALE, OTHER", i, c.Gender)
		}
	}
	return nil
}
