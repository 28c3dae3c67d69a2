package model

import (
	"fmt"
	"time"

	apperrors "railway-reservation/pkg/app_errors"
)

// TicketStatus 票券等級
type TicketStatus string

const (
	TicketStatusConfirmed   TicketStatus = "CONFIRMED"
	TicketStatusRAC         TicketStatus = "RAC"
	TicketStatusWaitingList TicketStatus = "WAITING_LIST"
)

// IsValid 驗證狀態是否有效
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusConfirmed, TicketStatusRAC, TicketStatusWaitingList:
		return true
	}
	return false
}

// Placement 票券在候補階梯上的位置。只有本套件內的三種型別實作此介面：
// Confirmed、RAC、WaitingList，各自帶有該等級才有的欄位。
type Placement interface {
	Status() TicketStatus
	placement()
}

// Confirmed 確認票；Berth 為 nil 代表由大人抱著的幼童
type Confirmed struct {
	Berth *BerthRef
}

// RAC 與另一位乘客共用側下鋪
type RAC struct {
	Berth  BerthRef
	Number int
}

// WaitingList 候補，沒有鋪位
type WaitingList struct {
	Number int
}

func (Confirmed) Status() TicketStatus   { return TicketStatusConfirmed }
func (RAC) Status() TicketStatus         { return TicketStatusRAC }
func (WaitingList) Status() TicketStatus { return TicketStatusWaitingList }

func (Confirmed) placement()   {}
func (RAC) placement()         {}
func (WaitingList) placement() {}

// Ticket 票券模型
type Ticket struct {
	ID          int       `json:"id"`
	PNR         string    `json:"pnr"`
	PassengerID int       `json:"passenger_id"`
	Placement   Placement `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Ticket) Status() TicketStatus {
	return t.Placement.Status()
}

// Berth 回傳票券佔用的鋪位，候補或幼童票為 nil
func (t *Ticket) Berth() *BerthRef {
	switch p := t.Placement.(type) {
	case Confirmed:
		return p.Berth
	case RAC:
		b := p.Berth
		return &b
	}
	return nil
}

// HoldsCapacity 幼童票不計入任何等級的容量
func (t *Ticket) HoldsCapacity() bool {
	if c, ok := t.Placement.(Confirmed); ok {
		return c.Berth != nil
	}
	return true
}

func (t *Ticket) RACNumber() *int {
	if p, ok := t.Placement.(RAC); ok {
		n := p.Number
		return &n
	}
	return nil
}

func (t *Ticket) WaitingListNumber() *int {
	if p, ok := t.Placement.(WaitingList); ok {
		n := p.Number
		return &n
	}
	return nil
}

// Columns 拆成資料表欄位：berth_id、rac_number、waiting_list_number
func (t *Ticket) Columns() (status TicketStatus, berthID *int, racNumber *int, waitingNumber *int) {
	if b := t.Berth(); b != nil {
		id := b.ID
		berthID = &id
	}
	return t.Status(), berthID, t.RACNumber(), t.WaitingListNumber()
}

// PlacementFromColumns 由資料表欄位組回 Placement，欄位組合不合法時回傳錯誤
func PlacementFromColumns(status TicketStatus, berth *BerthRef, racNumber, waitingNumber *int) (Placement, error) {
	switch status {
	case TicketStatusConfirmed:
		if racNumber != nil || waitingNumber != nil {
			break
		}
		return Confirmed{Berth: berth}, nil
	case TicketStatusRAC:
		if berth == nil || racNumber == nil || waitingNumber != nil {
			break
		}
		return RAC{Berth: *berth, Number: *racNumber}, nil
	case TicketStatusWaitingList:
		if berth != nil || waitingNumber == nil || racNumber != nil {
			break
		}
		return WaitingList{Number: *waitingNumber}, nil
	}
	return nil, fmt.Errorf("%w: inconsistent ticket columns for status %q", apperrors.ErrInvariantViolation, status)
}
