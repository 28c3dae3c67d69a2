package service

import (
	"context"
	"testing"

	"railway-reservation/internal/model"
	"railway-reservation/internal/queue"
	"railway-reservation/internal/repository"
	"railway-reservation/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc   *ReservationServiceImpl
	db    repository.TxBeginner
	repos Repositories
	queue queue.LadderQueue
	caps  model.Capacities
}

func memoryRepositories(db *memory.DB) Repositories {
	return Repositories{
		Berths:     memory.NewBerthRepository(db),
		Ledger:     memory.NewLedgerRepository(db),
		Passengers: memory.NewPassengerRepository(db),
		Tickets:    memory.NewTicketRepository(db),
	}
}

func newTestEnv(t *testing.T, caps model.Capacities) *testEnv {
	t.Helper()
	db := memory.NewDB(caps)
	return newEnvOn(db, memoryRepositories(db), caps)
}

func newEnvOn(db repository.TxBeginner, repos Repositories, caps model.Capacities) *testEnv {
	q := queue.NewLadderQueue(256)
	svc := NewReservationService(db, repos, caps, nil, q).(*ReservationServiceImpl)
	return &testEnv{svc: svc, db: db, repos: repos, queue: q, caps: caps}
}

func bookingRequest(name string, age int, gender model.Gender) model.BookingRequest {
	return model.BookingRequest{
		Passenger: model.PassengerInput{Name: name, Age: &age, Gender: gender},
	}
}

func withChild(req model.BookingRequest) model.BookingRequest {
	req.Passenger.HasChildUnderFive = true
	req.Children = []model.DependentInput{{Name: "Baby " + req.Passenger.Name, Age: 2, Gender: model.GenderOther}}
	return req
}

func (e *testEnv) book(t *testing.T, name string, age int, gender model.Gender) *model.TicketView {
	t.Helper()
	view, err := e.svc.Book(context.Background(), bookingRequest(name, age, gender))
	require.NoError(t, err)
	return view
}

func (e *testEnv) cancel(t *testing.T, code string) *model.CancellationResult {
	t.Helper()
	result, err := e.svc.Cancel(context.Background(), code)
	require.NoError(t, err)
	return result
}

func (e *testEnv) ledger(t *testing.T) *model.Ledger {
	t.Helper()
	ledger, err := e.repos.Ledger.Get(context.Background())
	require.NoError(t, err)
	return ledger
}

func (e *testEnv) ticket(t *testing.T, code string) *model.TicketView {
	t.Helper()
	view, err := e.svc.GetByPNR(context.Background(), code)
	require.NoError(t, err)
	return view
}

func (e *testEnv) berths(t *testing.T) map[int]*model.Berth {
	t.Helper()
	list, err := e.svc.Berths(context.Background())
	require.NoError(t, err)
	byID := make(map[int]*model.Berth, len(list))
	for _, b := range list {
		byID[b.ID] = b
	}
	return byID
}

// assertConsistent 檢查計數列、票券與鋪位三者一致
func (e *testEnv) assertConsistent(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	ledger := e.ledger(t)
	views, err := e.repos.Tickets.ListViews(ctx)
	require.NoError(t, err)
	berths := e.berths(t)

	held := map[model.TicketStatus]int{}
	perBerth := map[int]int{}
	racNumbers := map[int]bool{}
	waitingNumbers := map[int]bool{}

	for _, v := range views {
		switch v.Status {
		case model.TicketStatusConfirmed:
			if v.Berth == nil {
				assert.Less(t, v.Passenger.Age, model.ChildAgeLimit, "only minors ride without a berth: %s", v.PNR)
				continue
			}
			assert.NotEqual(t, model.BerthSideLower, v.Berth.Category, "confirmed ticket on side berth: %s", v.PNR)
		case model.TicketStatusRAC:
			require.NotNil(t, v.Berth, "RAC ticket without berth: %s", v.PNR)
			assert.Equal(t, model.BerthSideLower, v.Berth.Category)
			require.NotNil(t, v.RACNumber)
			assert.False(t, racNumbers[*v.RACNumber], "duplicate RAC number %d", *v.RACNumber)
			racNumbers[*v.RACNumber] = true
		case model.TicketStatusWaitingList:
			assert.Nil(t, v.Berth)
			require.NotNil(t, v.WaitingListNumber)
			assert.False(t, waitingNumbers[*v.WaitingListNumber], "duplicate waiting number %d", *v.WaitingListNumber)
			waitingNumbers[*v.WaitingListNumber] = true
		}
		held[v.Status]++
		if v.Berth != nil {
			perBerth[v.Berth.ID]++
		}
	}

	for _, status := range []model.TicketStatus{model.TicketStatusConfirmed, model.TicketStatusRAC, model.TicketStatusWaitingList} {
		assert.Equal(t, e.caps.Of(status), ledger.Remaining(status)+held[status], "tier %s", status)
	}
	// 下游有人排隊時，上游不會留有空位
	if held[model.TicketStatusRAC] > 0 {
		assert.Zero(t, ledger.ConfirmedRemaining, "RAC tickets waiting while confirmed capacity is free")
	}
	if held[model.TicketStatusWaitingList] > 0 {
		assert.Zero(t, ledger.RACRemaining, "waiting list tickets while RAC capacity is free")
	}
	assert.Equal(t, e.caps.RAC()-ledger.RACRemaining, ledger.CurrentRACNumber)
	assert.Equal(t, e.caps.Waiting()-ledger.WaitingRemaining, ledger.CurrentWaitingNumber)

	for id, b := range berths {
		assert.Equal(t, perBerth[id], b.Occupants, "berth %d occupants", b.Number)
		assert.LessOrEqual(t, b.Occupants, b.SlotCapacity(e.caps.RACSlotsPerBerth))
		if b.Occupants == 0 {
			assert.False(t, b.Occupied, "empty berth %d flagged occupied", b.Number)
		}
		if b.Occupants == b.SlotCapacity(e.caps.RACSlotsPerBerth) {
			assert.True(t, b.Occupied, "full berth %d not flagged", b.Number)
		}
	}
}
