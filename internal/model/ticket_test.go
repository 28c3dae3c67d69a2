package model

import (
	"testing"
	"time"

	apperrors "railway-reservation/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestPlacementFromColumns(t *testing.T) {
	berth := &BerthRef{ID: 64, Number: 64, Category: BerthSideLower}

	tests := []struct {
		name    string
		status  TicketStatus
		berth   *BerthRef
		rac     *int
		waiting *int
		want    Placement
		wantErr bool
	}{
		{"Confirmed with berth", TicketStatusConfirmed, berth, nil, nil, Confirmed{Berth: berth}, false},
		{"Confirmed lap held", TicketStatusConfirmed, nil, nil, nil, Confirmed{}, false},
		{"RAC", TicketStatusRAC, berth, intPtr(3), nil, RAC{Berth: *berth, Number: 3}, false},
		{"Waiting list", TicketStatusWaitingList, nil, nil, intPtr(1), WaitingList{Number: 1}, false},
		{"RAC without berth", TicketStatusRAC, nil, intPtr(1), nil, nil, true},
		{"RAC without number", TicketStatusRAC, berth, nil, nil, nil, true},
		{"Waiting list with berth", TicketStatusWaitingList, berth, nil, intPtr(1), nil, true},
		{"Confirmed with RAC number", TicketStatusConfirmed, berth, intPtr(1), nil, nil, true},
		{"Unknown status", TicketStatus("CHART_PREPARED"), nil, nil, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlacementFromColumns(tt.status, tt.berth, tt.rac, tt.waiting)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvariantViolation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTicketColumns(t *testing.T) {
	t.Run("RAC", func(t *testing.T) {
		ticket := &Ticket{Placement: RAC{Berth: BerthRef{ID: 70, Number: 70, Category: BerthSideLower}, Number: 2}}
		status, berthID, rac, waiting := ticket.Columns()
		assert.Equal(t, TicketStatusRAC, status)
		require.NotNil(t, berthID)
		assert.Equal(t, 70, *berthID)
		require.NotNil(t, rac)
		assert.Equal(t, 2, *rac)
		assert.Nil(t, waiting)
		assert.True(t, ticket.HoldsCapacity())
	})

	t.Run("Lap held minor", func(t *testing.T) {
		ticket := &Ticket{Placement: Confirmed{}}
		status, berthID, rac, waiting := ticket.Columns()
		assert.Equal(t, TicketStatusConfirmed, status)
		assert.Nil(t, berthID)
		assert.Nil(t, rac)
		assert.Nil(t, waiting)
		assert.False(t, ticket.HoldsCapacity())
	})

	t.Run("Waiting list", func(t *testing.T) {
		ticket := &Ticket{Placement: WaitingList{Number: 4}}
		assert.Nil(t, ticket.Berth())
		require.NotNil(t, ticket.WaitingListNumber())
		assert.Equal(t, 4, *ticket.WaitingListNumber())
		assert.True(t, ticket.HoldsCapacity())
	})
}

func TestNewLadderEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("IST", 19800))
	ticket := &Ticket{PNR: "AB12CD34EF", Placement: RAC{Berth: BerthRef{ID: 64, Number: 64, Category: BerthSideLower}, Number: 3}}

	promoted := NewLadderEvent(LadderEventPromoted, ticket, TicketStatusWaitingList, at)
	assert.Equal(t, TicketStatusWaitingList, promoted.From)
	assert.Equal(t, TicketStatusRAC, promoted.To)
	require.NotNil(t, promoted.BerthNumber)
	assert.Equal(t, 64, *promoted.BerthNumber)
	assert.Equal(t, time.UTC, promoted.OccurredAt.Location())

	cancelled := NewLadderEvent(LadderEventCancelled, ticket, TicketStatusRAC, at)
	assert.Empty(t, cancelled.To)
}

func TestNewTicketListing(t *testing.T) {
	views := []*TicketView{
		{PNR: "A", Status: TicketStatusConfirmed},
		{PNR: "B", Status: TicketStatusRAC},
		{PNR: "C", Status: TicketStatusConfirmed},
		{PNR: "D", Status: TicketStatusWaitingList},
	}
	listing := NewTicketListing(views)

	assert.Equal(t, ListingSummary{Confirmed: 2, RAC: 1, WaitingList: 1, Total: 4}, listing.Summary)
	assert.Equal(t, "A", listing.Confirmed[0].PNR)
	assert.Equal(t, "C", listing.Confirmed[1].PNR)
	assert.Equal(t, "D", listing.WaitingList[0].PNR)
}

func TestNewAvailability(t *testing.T) {
	caps := Capacities{BerthSets: 1, SideLowerBerths: 1, RACSlotsPerBerth: 2, WaitingListSize: 2}

	a := NewAvailability(&Ledger{ConfirmedRemaining: 0, RACRemaining: 1, WaitingRemaining: 2}, caps)
	assert.Equal(t, TierAvailability{Total: 3, Booked: 3, Available: 0, Status: TierFull}, a.Confirmed)
	assert.Equal(t, TierAvailability{Total: 2, Booked: 1, Available: 1, Status: TierAvailable}, a.RAC)
	assert.Equal(t, OverallRACAvailable, a.OverallStatus)

	full := NewAvailability(&Ledger{}, caps)
	assert.Equal(t, OverallFull, full.OverallStatus)
}
