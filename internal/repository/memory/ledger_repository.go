package memory

import (
	"context"
	"time"

	"railway-reservation/internal/model"
	"railway-reservation/internal/repository"

	"github.com/jackc/pgx/v5"
)

type LedgerRepositoryImpl struct {
	db *DB
}

func NewLedgerRepository(db *DB) repository.LedgerRepository {
	return &LedgerRepositoryImpl{db: db}
}

func (r *LedgerRepositoryImpl) Get(ctx context.Context) (*model.Ledger, error) {
	var ledger model.Ledger
	err := r.db.read(ctx, func(s *state) error {
		ledger = s.ledger
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *LedgerRepositoryImpl) GetWithLock(ctx context.Context, tx pgx.Tx) (*model.Ledger, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}
	ledger := s.ledger
	return &ledger, nil
}

func (r *LedgerRepositoryImpl) Update(ctx context.Context, tx pgx.Tx, ledger *model.Ledger) error {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return err
	}
	ledger.UpdatedAt = time.Now().UTC()
	s.ledger = *ledger
	return nil
}
