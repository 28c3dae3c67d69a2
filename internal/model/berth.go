package model

import (
	"fmt"
	"time"

	apperrors "railway-reservation/pkg/app_errors"
)

// BerthCategory 鋪位類型
type BerthCategory string

const (
	BerthLower     BerthCategory = "LOWER"
	BerthMiddle    BerthCategory = "MIDDLE"
	BerthUpper     BerthCategory = "UPPER"
	BerthSideLower BerthCategory = "SIDE_LOWER"
)

// StandardCategories 可供確認票使用的鋪位
var StandardCategories = []BerthCategory{BerthLower, BerthMiddle, BerthUpper}

func (c BerthCategory) IsValid() bool {
	switch c {
	case BerthLower, BerthMiddle, BerthUpper, BerthSideLower:
		return true
	}
	return false
}

// IsShared 只有側下鋪可由兩位 RAC 乘客共用
func (c BerthCategory) IsShared() bool {
	return c == BerthSideLower
}

// Berth 鋪位模型
type Berth struct {
	ID        int           `json:"id" db:"id"`
	Number    int           `json:"berth_number" db:"berth_number"`
	Category  BerthCategory `json:"berth_type" db:"berth_type"`
	Occupied  bool          `json:"is_allocated" db:"is_allocated"`
	Occupants int           `json:"occupants" db:"occupants"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// SlotCapacity 回傳此鋪位最多可容納的乘客數
func (b *Berth) SlotCapacity(racSlots int) int {
	if b.Category.IsShared() {
		return racSlots
	}
	return 1
}

// HasRoom 以乘客數判斷，不以 Occupied 旗標判斷
func (b *Berth) HasRoom(racSlots int) bool {
	return b.Occupants < b.SlotCapacity(racSlots)
}

// Claim 佔用一個位置；滿了才標記 Occupied
func (b *Berth) Claim(racSlots int) error {
	capacity := b.SlotCapacity(racSlots)
	if b.Occupants >= capacity {
		return fmt.Errorf("%w: berth %d already hosts %d of %d occupants",
			apperrors.ErrInvariantViolation, b.Number, b.Occupants, capacity)
	}
	b.Occupants++
	if b.Occupants >= capacity {
		b.Occupied = true
	}
	return nil
}

// Release 釋放一個位置；仍有人使用時維持 Occupied 標記
func (b *Berth) Release() error {
	if b.Occupants <= 0 {
		return fmt.Errorf("%w: berth %d has no occupant to release",
			apperrors.ErrInvariantViolation, b.Number)
	}
	b.Occupants--
	if b.Occupants == 0 {
		b.Occupied = false
	}
	return nil
}

// BerthRef 票券上顯示的鋪位資訊
type BerthRef struct {
	ID       int           `json:"id"`
	Number   int           `json:"number"`
	Category BerthCategory `json:"type"`
}

func (b *Berth) Ref() *BerthRef {
	return &BerthRef{ID: b.ID, Number: b.Number, Category: b.Category}
}

// BerthLayout 依配置產生固定鋪位：先 N 組下中上鋪，再接側下鋪
func BerthLayout(caps Capacities) []Berth {
	berths := make([]Berth, 0, caps.BerthSets*3+caps.SideLowerBerths)
	for i := 0; i < caps.BerthSets; i++ {
		for j, category := range StandardCategories {
			berths = append(berths, Berth{Number: i*3 + j + 1, Category: category})
		}
	}
	for i := 0; i < caps.SideLowerBerths; i++ {
		berths = append(berths, Berth{Number: caps.BerthSets*3 + i + 1, Category: BerthSideLower})
	}
	return berths
}
