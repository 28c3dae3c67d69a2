package model

import (
	"fmt"
	"time"

	apperrors "railway-reservation/pkg/app_errors"
)

// Capacities 三個等級的總容量，由鋪位配置推導
type Capacities struct {
	BerthSets        int `json:"berth_sets"`
	SideLowerBerths  int `json:"side_lower_berths"`
	RACSlotsPerBerth int `json:"rac_slots_per_berth"`
	WaitingListSize  int `json:"waiting_list_size"`
}

func (c Capacities) Confirmed() int { return c.BerthSets * 3 }
func (c Capacities) RAC() int       { return c.SideLowerBerths * c.RACSlotsPerBerth }
func (c Capacities) Waiting() int   { return c.WaitingListSize }

func (c Capacities) Of(status TicketStatus) int {
	switch status {
	case TicketStatusConfirmed:
		return c.Confirmed()
	case TicketStatusRAC:
		return c.RAC()
	case TicketStatusWaitingList:
		return c.Waiting()
	}
	return 0
}

// Ledger 全域唯一的容量計數列
type Ledger struct {
	ConfirmedRemaining   int       `json:"available_confirmed_berths" db:"available_confirmed"`
	RACRemaining         int       `json:"available_rac_berths" db:"available_rac"`
	WaitingRemaining     int       `json:"available_waiting_list" db:"available_waiting"`
	CurrentRACNumber     int       `json:"current_rac_number" db:"current_rac_number"`
	CurrentWaitingNumber int       `json:"current_waiting_list_number" db:"current_waiting_number"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// NewLedger 初始狀態：所有容量皆可用
func NewLedger(caps Capacities) *Ledger {
	return &Ledger{
		ConfirmedRemaining: caps.Confirmed(),
		RACRemaining:       caps.RAC(),
		WaitingRemaining:   caps.Waiting(),
	}
}

func (l *Ledger) Remaining(status TicketStatus) int {
	switch status {
	case TicketStatusConfirmed:
		return l.ConfirmedRemaining
	case TicketStatusRAC:
		return l.RACRemaining
	case TicketStatusWaitingList:
		return l.WaitingRemaining
	}
	return 0
}

func (l *Ledger) counter(status TicketStatus) *int {
	switch status {
	case TicketStatusConfirmed:
		return &l.ConfirmedRemaining
	case TicketStatusRAC:
		return &l.RACRemaining
	case TicketStatusWaitingList:
		return &l.WaitingRemaining
	}
	return nil
}

// NextNumber 依剩餘容量推導下一個 RAC / 候補序號
func (l *Ledger) NextNumber(status TicketStatus, caps Capacities) int {
	return caps.Of(status) - l.Remaining(status) + 1
}

// Consume 扣除一個容量並重算序號
func (l *Ledger) Consume(status TicketStatus, caps Capacities) error {
	c := l.counter(status)
	if c == nil {
		return fmt.Errorf("%w: unknown tier %q", apperrors.ErrInvariantViolation, status)
	}
	if *c <= 0 {
		return fmt.Errorf("%w: no %s capacity left to consume", apperrors.ErrInvariantViolation, status)
	}
	*c--
	l.Recompute(caps)
	return nil
}

// backfillOrder 取消後回補的掃描順序：由最下游的等級開始
var backfillOrder = []TicketStatus{TicketStatusWaitingList, TicketStatusRAC, TicketStatusConfirmed}

// Backfill 取消後恰好回補一個容量：候補未滿先補候補，其次 RAC，最後確認票。
// 回傳被回補的等級。
func (l *Ledger) Backfill(caps Capacities) TicketStatus {
	chosen := TicketStatusConfirmed
	for _, status := range backfillOrder[:len(backfillOrder)-1] {
		if l.Remaining(status) < caps.Of(status) {
			chosen = status
			break
		}
	}
	*l.counter(chosen)++
	l.Recompute(caps)
	return chosen
}

// Recompute 序號是剩餘容量的衍生值，每次異動後重算
func (l *Ledger) Recompute(caps Capacities) {
	l.CurrentRACNumber = caps.RAC() - l.RACRemaining
	l.CurrentWaitingNumber = caps.Waiting() - l.WaitingRemaining
}

// Check 驗證計數沒有超出容量範圍
func (l *Ledger) Check(caps Capacities) error {
	for _, status := range backfillOrder {
		if r := l.Remaining(status); r < 0 || r > caps.Of(status) {
			return fmt.Errorf("%w: %s remaining %d outside [0,%d]",
				apperrors.ErrInvariantViolation, status, r, caps.Of(status))
		}
	}
	return nil
}
