package service

import (
	"context"
	"testing"

	"railway-reservation/internal/model"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berthNumber(t *testing.T, view *model.TicketView) int {
	t.Helper()
	require.NotNil(t, view.Berth, "ticket %s has no berth", view.PNR)
	return view.Berth.Number
}

func TestBookConfirmedBerthPriority(t *testing.T) {
	caps := model.Capacities{BerthSets: 2, SideLowerBerths: 1, RACSlotsPerBerth: 2, WaitingListSize: 2}

	t.Run("Lowest numbered berth without priority", func(t *testing.T) {
		env := newTestEnv(t, caps)
		assert.Equal(t, 1, berthNumber(t, env.book(t, "Passenger One", 30, model.GenderMale)))
		assert.Equal(t, 2, berthNumber(t, env.book(t, "Passenger Two", 30, model.GenderMale)))
		assert.Equal(t, 3, berthNumber(t, env.book(t, "Passenger Three", 30, model.GenderFemale)))
		env.assertConsistent(t)
	})

	t.Run("Senior citizen skips to next lower berth", func(t *testing.T) {
		env := newTestEnv(t, caps)
		env.book(t, "Passenger One", 30, model.GenderMale)

		senior := env.book(t, "Senior Citizen", 61, model.GenderFemale)
		assert.Equal(t, 4, berthNumber(t, senior))
		assert.Equal(t, model.BerthLower, senior.Berth.Category)

		// 沒有優先權的乘客仍拿編號最小的空鋪
		assert.Equal(t, 2, berthNumber(t, env.book(t, "Passenger Two", 30, model.GenderMale)))
		env.assertConsistent(t)
	})

	t.Run("Female with child gets lower berth", func(t *testing.T) {
		env := newTestEnv(t, caps)
		env.book(t, "Passenger One", 30, model.GenderMale)

		view, err := env.svc.Book(context.Background(), withChild(bookingRequest("Young Mother", 28, model.GenderFemale)))
		require.NoError(t, err)
		assert.Equal(t, model.BerthLower, view.Berth.Category)
		assert.Equal(t, 4, berthNumber(t, view))
		assert.True(t, view.Passenger.HasChildUnderFive)
		require.Len(t, view.Children, 1)
		assert.Equal(t, 2, view.Children[0].Age)
	})

	t.Run("Male with child has no priority", func(t *testing.T) {
		env := newTestEnv(t, caps)
		env.book(t, "Passenger One", 30, model.GenderMale)

		view, err := env.svc.Book(context.Background(), withChild(bookingRequest("Young Father", 28, model.GenderMale)))
		require.NoError(t, err)
		assert.Equal(t, 2, berthNumber(t, view))
	})

	t.Run("Falls back when no lower berth is free", func(t *testing.T) {
		env := newTestEnv(t, caps)
		env.book(t, "Senior One", 65, model.GenderMale)
		env.book(t, "Senior Two", 70, model.GenderFemale)

		third := env.book(t, "Senior Three", 62, model.GenderOther)
		assert.Equal(t, 2, berthNumber(t, third))
		assert.Equal(t, model.BerthMiddle, third.Berth.Category)
		env.assertConsistent(t)
	})
}

func TestBookTierOrder(t *testing.T) {
	caps := model.Capacities{BerthSets: 1, SideLowerBerths: 1, RACSlotsPerBerth: 2, WaitingListSize: 2}
	env := newTestEnv(t, caps)

	for i, name := range []string{"Passenger One", "Passenger Two", "Passenger Three"} {
		view := env.book(t, name, 30, model.GenderMale)
		assert.Equal(t, model.TicketStatusConfirmed, view.Status)
		assert.Equal(t, i+1, berthNumber(t, view))
	}

	for i, name := range []string{"Shared One", "Shared Two"} {
		view := env.book(t, name, 30, model.GenderMale)
		assert.Equal(t, model.TicketStatusRAC, view.Status)
		assert.Equal(t, 4, berthNumber(t, view))
		require.NotNil(t, view.RACNumber)
		assert.Equal(t, i+1, *view.RACNumber)
	}

	berths := env.berths(t)
	assert.Equal(t, 2, berths[4].Occupants)
	assert.True(t, berths[4].Occupied)

	for i, name := range []string{"Waiting One", "Waiting Two"} {
		view := env.book(t, name, 30, model.GenderMale)
		assert.Equal(t, model.TicketStatusWaitingList, view.Status)
		assert.Nil(t, view.Berth)
		require.NotNil(t, view.WaitingListNumber)
		assert.Equal(t, i+1, *view.WaitingListNumber)
	}

	ledger := env.ledger(t)
	assert.Equal(t, 2, ledger.CurrentRACNumber)
	assert.Equal(t, 2, ledger.CurrentWaitingNumber)
	env.assertConsistent(t)
}

func TestBookSharedBerthPartiallyOccupied(t *testing.T) {
	caps := model.Capacities{BerthSets: 0, SideLowerBerths: 2, RACSlotsPerBerth: 2, WaitingListSize: 0}
	env := newTestEnv(t, caps)

	env.book(t, "Shared One", 30, model.GenderMale)
	berths := env.berths(t)
	// 第一位 RAC 乘客入座後，側下鋪仍可再容納一人
	assert.Equal(t, 1, berths[1].Occupants)
	assert.False(t, berths[1].Occupied)

	second := env.book(t, "Shared Two", 30, model.GenderMale)
	assert.Equal(t, 1, berthNumber(t, second))
	third := env.book(t, "Shared Three", 30, model.GenderMale)
	assert.Equal(t, 2, berthNumber(t, third))
	env.assertConsistent(t)
}

func TestBookMinor(t *testing.T) {
	caps := model.Capacities{BerthSets: 1, SideLowerBerths: 1, RACSlotsPerBerth: 2, WaitingListSize: 1}

	t.Run("Lap held without consuming capacity", func(t *testing.T) {
		env := newTestEnv(t, caps)
		before := env.ledger(t)

		view := env.book(t, "Little One", 3, model.GenderFemale)
		assert.Equal(t, model.TicketStatusConfirmed, view.Status)
		assert.Nil(t, view.Berth)
		assert.Nil(t, view.RACNumber)
		assert.Nil(t, view.WaitingListNumber)

		after := env.ledger(t)
		assert.Equal(t, before.ConfirmedRemaining, after.ConfirmedRemaining)
		assert.Equal(t, before.RACRemaining, after.RACRemaining)
		assert.Equal(t, before.WaitingRemaining, after.WaitingRemaining)
		for _, b := range env.berths(t) {
			assert.Zero(t, b.Occupants)
		}
		env.assertConsistent(t)
	})

	t.Run("Accepted when every tier is full", func(t *testing.T) {
		env := newTestEnv(t, caps)
		for _, name := range []string{"Adult One", "Adult Two", "Adult Three", "Adult Four", "Adult Five", "Adult Six"} {
			env.book(t, name, 30, model.GenderMale)
		}
		_, err := env.svc.Book(context.Background(), bookingRequest("Adult Seven", 30, model.GenderMale))
		require.ErrorIs(t, err, apperrors.ErrNoTicketsAvailable)

		view := env.book(t, "Little One", 4, model.GenderMale)
		assert.Equal(t, model.TicketStatusConfirmed, view.Status)
		assert.Nil(t, view.Berth)
		env.assertConsistent(t)
	})

	t.Run("Five year old needs a berth", func(t *testing.T) {
		env := newTestEnv(t, caps)
		view := env.book(t, "Young Traveller", 5, model.GenderMale)
		assert.Equal(t, 1, berthNumber(t, view))
	})
}

func TestBookRejected(t *testing.T) {
	caps := model.Capacities{BerthSets: 0, SideLowerBerths: 1, RACSlotsPerBerth: 2, WaitingListSize: 1}

	t.Run("All tiers full", func(t *testing.T) {
		env := newTestEnv(t, caps)
		for _, name := range []string{"Shared One", "Shared Two", "Waiting One"} {
			env.book(t, name, 30, model.GenderMale)
		}
		before := env.ledger(t)

		_, err := env.svc.Book(context.Background(), bookingRequest("Too Late", 30, model.GenderMale))
		assert.ErrorIs(t, err, apperrors.ErrNoTicketsAvailable)

		assert.Equal(t, before, env.ledger(t))
		listing, err := env.svc.ListAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, listing.Summary.Total)
		env.assertConsistent(t)
	})

	t.Run("Invalid request", func(t *testing.T) {
		env := newTestEnv(t, caps)
		_, err := env.svc.Book(context.Background(), bookingRequest("X", 30, model.GenderMale))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		req := bookingRequest("Missing Child", 30, model.GenderFemale)
		req.Passenger.HasChildUnderFive = true
		_, err = env.svc.Book(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		assert.Equal(t, caps.RAC(), env.ledger(t).RACRemaining)
	})

	t.Run("Ledger diverged from berths", func(t *testing.T) {
		caps := model.Capacities{BerthSets: 1, SideLowerBerths: 0, RACSlotsPerBerth: 2, WaitingListSize: 0}
		env := newTestEnv(t, caps)
		ctx := context.Background()

		// 直接佔滿鋪位但不動 ledger
		tx, err := env.db.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			berth, err := env.repos.Berths.FindFreeWithLock(ctx, tx, model.StandardCategories)
			require.NoError(t, err)
			require.NoError(t, berth.Claim(caps.RACSlotsPerBerth))
			require.NoError(t, env.repos.Berths.UpdateOccupancy(ctx, tx, berth))
		}
		require.NoError(t, tx.Commit(ctx))

		_, err = env.svc.Book(ctx, bookingRequest("Stranded Passenger", 30, model.GenderMale))
		assert.ErrorIs(t, err, apperrors.ErrInvariantViolation)
		assert.Equal(t, 3, env.ledger(t).ConfirmedRemaining)

		listing, err := env.svc.ListAll(ctx)
		require.NoError(t, err)
		assert.Zero(t, listing.Summary.Total)
	})
}
