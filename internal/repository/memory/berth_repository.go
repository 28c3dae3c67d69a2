package memory

import (
	"context"
	"time"

	"railway-reservation/internal/model"
	"railway-reservation/internal/repository"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

type BerthRepositoryImpl struct {
	db *DB
}

func NewBerthRepository(db *DB) repository.BerthRepository {
	return &BerthRepositoryImpl{db: db}
}

func (r *BerthRepositoryImpl) List(ctx context.Context) ([]*model.Berth, error) {
	berths := make([]*model.Berth, 0)
	err := r.db.read(ctx, func(s *state) error {
		for _, b := range s.sortedBerths() {
			b := b
			berths = append(berths, &b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return berths, nil
}

func (r *BerthRepositoryImpl) FindFreeWithLock(ctx context.Context, tx pgx.Tx, categories []model.BerthCategory) (*model.Berth, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[model.BerthCategory]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	for _, b := range s.sortedBerths() {
		if !b.Occupied && b.Occupants == 0 && wanted[b.Category] {
			return &b, nil
		}
	}
	return nil, apperrors.ErrBerthNotFound
}

func (r *BerthRepositoryImpl) FindSharedWithRoomWithLock(ctx context.Context, tx pgx.Tx, slots int) (*model.Berth, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}

	for _, b := range s.sortedBerths() {
		if b.Category == model.BerthSideLower && b.Occupants < slots {
			return &b, nil
		}
	}
	return nil, apperrors.ErrBerthNotFound
}

func (r *BerthRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Berth, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}

	b, ok := s.berths[id]
	if !ok {
		return nil, apperrors.ErrBerthNotFound
	}
	return &b, nil
}

func (r *BerthRepositoryImpl) UpdateOccupancy(ctx context.Context, tx pgx.Tx, berth *model.Berth) error {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return err
	}

	stored, ok := s.berths[berth.ID]
	if !ok {
		return apperrors.ErrBerthNotFound
	}

	berth.UpdatedAt = time.Now().UTC()
	stored.Occupied = berth.Occupied
	stored.Occupants = berth.Occupants
	stored.UpdatedAt = berth.UpdatedAt
	s.berths[berth.ID] = stored
	return nil
}
