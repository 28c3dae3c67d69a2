package model

// TicketView 對外呈現的票券資訊
type TicketView struct {
	PNR               string       `json:"pnr"`
	Status            TicketStatus `json:"status"`
	Berth             *BerthRef    `json:"berth"`
	RACNumber         *int         `json:"rac_number"`
	WaitingListNumber *int         `json:"waiting_list_number"`
	Passenger         *Passenger   `json:"passenger"`
	Children          []*Dependent `json:"children"`
}

// NewTicketView 組合票券、乘客與幼童
func NewTicketView(ticket *Ticket, passenger *Passenger, children []*Dependent) *TicketView {
	if children == nil {
		children = []*Dependent{}
	}
	return &TicketView{
		PNR:               ticket.PNR,
		Status:            ticket.Status(),
		Berth:             ticket.Berth(),
		RACNumber:         ticket.RACNumber(),
		WaitingListNumber: ticket.WaitingListNumber(),
		Passenger:         passenger,
		Children:          children,
	}
}

// TicketListing 依等級分組的所有票券
type TicketListing struct {
	Summary     ListingSummary `json:"summary"`
	Confirmed   []*TicketView  `json:"confirmed"`
	RAC         []*TicketView  `json:"rac"`
	WaitingList []*TicketView  `json:"waitingList"`
}

type ListingSummary struct {
	Confirmed   int `json:"confirmed"`
	RAC         int `json:"rac"`
	WaitingList int `json:"waitingList"`
	Total       int `json:"total"`
}

// NewTicketListing 依狀態分組，保留傳入順序
func NewTicketListing(views []*TicketView) *TicketListing {
	listing := &TicketListing{
		Confirmed:   []*TicketView{},
		RAC:         []*TicketView{},
		WaitingList: []*TicketView{},
	}
	for _, v := range views {
		switch v.Status {
		case TicketStatusConfirmed:
			listing.Confirmed = append(listing.Confirmed, v)
		case TicketStatusRAC:
			listing.RAC = append(listing.RAC, v)
		case TicketStatusWaitingList:
			listing.WaitingList = append(listing.WaitingList, v)
		}
	}
	listing.Summary = ListingSummary{
		Confirmed:   len(listing.Confirmed),
		RAC:         len(listing.RAC),
		WaitingList: len(listing.WaitingList),
		Total:       len(views),
	}
	return listing
}

const (
	TierAvailable = "AVAILABLE"
	TierFull      = "FULL"

	OverallConfirmedAvailable   = "CONFIRMED_AVAILABLE"
	OverallRACAvailable         = "RAC_AVAILABLE"
	OverallWaitingListAvailable = "WAITING_LIST_AVAILABLE"
	OverallFull                 = "FULL"
)

type TierAvailability struct {
	Total     int    `json:"total"`
	Booked    int    `json:"booked"`
	Available int    `json:"available"`
	Status    string `json:"status"`
}

type Availability struct {
	Confirmed     TierAvailability `json:"confirmed"`
	RAC           TierAvailability `json:"rac"`
	WaitingList   TierAvailability `json:"waitingList"`
	OverallStatus string           `json:"overallStatus"`
}

func newTierAvailability(total, available int) TierAvailability {
	status := TierFull
	if available > 0 {
		status = TierAvailable
	}
	return TierAvailability{Total: total, Booked: total - available, Available: available, Status: status}
}

// NewAvailability 由計數列推導可售狀態
func NewAvailability(l *Ledger, caps Capacities) *Availability {
	a := &Availability{
		Confirmed:   newTierAvailability(caps.Confirmed(), l.ConfirmedRemaining),
		RAC:         newTierAvailability(caps.RAC(), l.RACRemaining),
		WaitingList: newTierAvailability(caps.Waiting(), l.WaitingRemaining),
	}
	switch {
	case l.ConfirmedRemaining > 0:
		a.OverallStatus = OverallConfirmedAvailable
	case l.RACRemaining > 0:
		a.OverallStatus = OverallRACAvailable
	case l.WaitingRemaining > 0:
		a.OverallStatus = OverallWaitingListAvailable
	default:
		a.OverallStatus = OverallFull
	}
	return a
}

// Promotion 一次階梯升級
type Promotion struct {
	PNR  string       `json:"pnr"`
	From TicketStatus `json:"from"`
	To   TicketStatus `json:"to"`
}

// CancellationResult 取消結果
type CancellationResult struct {
	PNR        string       `json:"pnr"`
	Status     TicketStatus `json:"status"`
	Promotions []Promotion  `json:"promotions"`
	Backfilled TicketStatus `json:"backfilled,omitempty"`
}
