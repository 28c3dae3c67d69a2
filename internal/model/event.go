package model

import "time"

// LadderEventType 階梯異動類型
type LadderEventType string

const (
	LadderEventBooked    LadderEventType = "BOOKED"
	LadderEventPromoted  LadderEventType = "PROMOTED"
	LadderEventCancelled LadderEventType = "CANCELLED"
)

// LadderEvent 提交成功後發送到隊列的異動紀錄
type LadderEvent struct {
	Type          LadderEventType `json:"type"`
	PNR           string          `json:"pnr"`
	From          TicketStatus    `json:"from,omitempty"`
	To            TicketStatus    `json:"to,omitempty"`
	BerthNumber   *int            `json:"berth_number,omitempty"`
	RACNumber     *int            `json:"rac_number,omitempty"`
	WaitingNumber *int            `json:"waiting_list_number,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewLadderEvent 依票券目前位置建立事件
func NewLadderEvent(eventType LadderEventType, ticket *Ticket, from TicketStatus, at time.Time) *LadderEvent {
	e := &LadderEvent{
		Type:          eventType,
		PNR:           ticket.PNR,
		From:          from,
		RACNumber:     ticket.RACNumber(),
		WaitingNumber: ticket.WaitingListNumber(),
		OccurredAt:    at.UTC(),
	}
	if eventType != LadderEventCancelled {
		e.To = ticket.Status()
	}
	if b := ticket.Berth(); b != nil {
		n := b.Number
		e.BerthNumber = &n
	}
	return e
}
