package memory

import (
	"context"
	"testing"
	"time"

	"railway-reservation/internal/model"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCaps = model.Capacities{BerthSets: 1, SideLowerBerths: 1, RACSlotsPerBerth: 2, WaitingListSize: 1}

func TestNewDB(t *testing.T) {
	ctx := context.Background()
	db := NewDB(testCaps)

	berths, err := NewBerthRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, berths, 4)
	assert.Equal(t, model.BerthLower, berths[0].Category)
	assert.Equal(t, model.BerthSideLower, berths[3].Category)

	ledger, err := NewLedgerRepository(db).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ledger.ConfirmedRemaining)
	assert.Equal(t, 2, ledger.RACRemaining)
	assert.Equal(t, 1, ledger.WaitingRemaining)
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Rollback restores snapshot", func(t *testing.T) {
		db := NewDB(testCaps)
		ledgers := NewLedgerRepository(db)
		passengers := NewPassengerRepository(db)

		tx, err := db.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)

		ledger, err := ledgers.GetWithLock(ctx, tx)
		require.NoError(t, err)
		require.NoError(t, ledger.Consume(model.TicketStatusConfirmed, testCaps))
		require.NoError(t, ledgers.Update(ctx, tx, ledger))

		p, err := passengers.Create(ctx, tx, &model.Passenger{Name: "Meera", Age: 40, Gender: model.GenderFemale})
		require.NoError(t, err)

		require.NoError(t, tx.Rollback(ctx))

		after, err := ledgers.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, after.ConfirmedRemaining)

		tx, err = db.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)
		defer tx.Rollback(ctx)
		_, err = passengers.FindByID(ctx, tx, p.ID)
		assert.ErrorIs(t, err, apperrors.ErrPassengerNotFound)
	})

	t.Run("Commit keeps changes", func(t *testing.T) {
		db := NewDB(testCaps)
		berths := NewBerthRepository(db)

		tx, err := db.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)
		berth, err := berths.FindFreeWithLock(ctx, tx, model.StandardCategories)
		require.NoError(t, err)
		require.NoError(t, berth.Claim(testCaps.RACSlotsPerBerth))
		require.NoError(t, berths.UpdateOccupancy(ctx, tx, berth))
		require.NoError(t, tx.Commit(ctx))

		// defer tx.Rollback 在 Commit 之後不應產生影響
		assert.ErrorIs(t, tx.Rollback(ctx), pgx.ErrTxClosed)

		list, err := berths.List(ctx)
		require.NoError(t, err)
		assert.True(t, list[0].Occupied)
		assert.Equal(t, 1, list[0].Occupants)
	})

	t.Run("Closed transaction is rejected", func(t *testing.T) {
		db := NewDB(testCaps)
		tx, err := db.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		_, err = NewLedgerRepository(db).GetWithLock(ctx, tx)
		assert.ErrorIs(t, err, pgx.ErrTxClosed)
	})

	t.Run("Foreign transaction is rejected", func(t *testing.T) {
		a, b := NewDB(testCaps), NewDB(testCaps)
		tx, err := a.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		_, err = NewLedgerRepository(b).GetWithLock(ctx, tx)
		assert.ErrorIs(t, err, errForeignTx)
	})

	t.Run("Second transaction waits for the first", func(t *testing.T) {
		db := NewDB(testCaps)
		tx, err := db.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err = db.BeginTx(waitCtx, pgx.TxOptions{})
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		require.NoError(t, tx.Commit(ctx))
		tx2, err := db.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)
		require.NoError(t, tx2.Rollback(ctx))
	})
}

func TestTicketRepository(t *testing.T) {
	ctx := context.Background()
	db := NewDB(testCaps)
	passengers := NewPassengerRepository(db)
	tickets := NewTicketRepository(db)

	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	side := model.BerthRef{ID: 4, Number: 4, Category: model.BerthSideLower}
	create := func(code string, placement model.Placement) *model.Ticket {
		p, err := passengers.Create(ctx, tx, &model.Passenger{Name: "Passenger " + code, Age: 30, Gender: model.GenderMale})
		require.NoError(t, err)
		ticket, err := tickets.Create(ctx, tx, &model.Ticket{PNR: code, PassengerID: p.ID, Placement: placement})
		require.NoError(t, err)
		return ticket
	}

	create("RAC0000002", model.RAC{Berth: side, Number: 2})
	first := create("RAC0000001", model.RAC{Berth: side, Number: 1})
	create("WL00000001", model.WaitingList{Number: 1})

	t.Run("FindFirstWithLock", func(t *testing.T) {
		got, err := tickets.FindFirstWithLock(ctx, tx, model.TicketStatusRAC)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		_, err = tickets.FindFirstWithLock(ctx, tx, model.TicketStatusConfirmed)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})

	t.Run("MaxSequenceNumber", func(t *testing.T) {
		max, err := tickets.MaxSequenceNumber(ctx, tx, model.TicketStatusRAC)
		require.NoError(t, err)
		assert.Equal(t, 2, max)
	})

	t.Run("CountByBerth", func(t *testing.T) {
		n, err := tickets.CountByBerth(ctx, tx, side.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("Duplicate PNR", func(t *testing.T) {
		_, err := tickets.Create(ctx, tx, &model.Ticket{PNR: "RAC0000001", PassengerID: first.PassengerID, Placement: model.WaitingList{Number: 2}})
		assert.ErrorIs(t, err, apperrors.ErrPNRCollision)

		exists, err := tickets.ExistsPNR(ctx, tx, "RAC0000001")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("UpdatePlacement", func(t *testing.T) {
		first.Placement = model.Confirmed{Berth: &model.BerthRef{ID: 1, Number: 1, Category: model.BerthLower}}
		require.NoError(t, tickets.UpdatePlacement(ctx, tx, first))

		got, err := tickets.FindByPNRWithLock(ctx, tx, "RAC0000001")
		require.NoError(t, err)
		assert.Equal(t, model.TicketStatusConfirmed, got.Status())
		assert.Nil(t, got.RACNumber())
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, tickets.Delete(ctx, tx, first.ID))
		assert.ErrorIs(t, tickets.Delete(ctx, tx, first.ID), apperrors.ErrTicketNotFound)
		_, err := tickets.FindByPNRWithLock(ctx, tx, "RAC0000001")
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}
