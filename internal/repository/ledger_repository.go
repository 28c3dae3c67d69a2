package repository

import (
	"context"
	"time"

	"railway-reservation/internal/model"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository interface {
	Get(ctx context.Context) (*model.Ledger, error)

	// Transaction methods
	// GetWithLock 鎖住唯一的計數列，所有訂票與取消都在此排隊
	GetWithLock(ctx context.Context, tx pgx.Tx) (*model.Ledger, error)
	Update(ctx context.Context, tx pgx.Tx, ledger *model.Ledger) error
}

type LedgerRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) LedgerRepository {
	return &LedgerRepositoryImpl{
		pool: pool,
	}
}

func scanLedger(row pgx.Row) (*model.Ledger, error) {
	var ledger model.Ledger
	err := row.Scan(
		&ledger.ConfirmedRemaining,
		&ledger.RACRemaining,
		&ledger.WaitingRemaining,
		&ledger.CurrentRACNumber,
		&ledger.CurrentWaitingNumber,
		&ledger.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrLedgerNotFound)
	}
	return &ledger, nil
}

func (r *LedgerRepositoryImpl) Get(ctx context.Context) (*model.Ledger, error) {
	query := `
		SELECT available_confirmed, available_rac, available_waiting,
		       current_rac_number, current_waiting_number, updated_at
		FROM ledger
		WHERE id = 1
	`
	return scanLedger(r.pool.QueryRow(ctx, query))
}

func (r *LedgerRepositoryImpl) GetWithLock(ctx context.Context, tx pgx.Tx) (*model.Ledger, error) {
	query := `
		SELECT available_confirmed, available_rac, available_waiting,
		       current_rac_number, current_waiting_number, updated_at
		FROM ledger
		WHERE id = 1
		FOR UPDATE
	`
	return scanLedger(tx.QueryRow(ctx, query))
}

func (r *LedgerRepositoryImpl) Update(ctx context.Context, tx pgx.Tx, ledger *model.Ledger) error {
	query := `
		UPDATE ledger
		SET available_confirmed = $1,
		    available_rac = $2,
		    available_waiting = $3,
		    current_rac_number = $4,
		    current_waiting_number = $5,
		    updated_at = $6
		WHERE id = 1
	`

	now := time.Now().UTC()
	result, err := tx.Exec(ctx, query,
		ledger.ConfirmedRemaining,
		ledger.RACRemaining,
		ledger.WaitingRemaining,
		ledger.CurrentRACNumber,
		ledger.CurrentWaitingNumber,
		now,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrLedgerNotFound
	}

	ledger.UpdatedAt = now
	return nil
}
