package memory

import (
	"context"
	"time"

	"railway-reservation/internal/model"
	"railway-reservation/internal/repository"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

type PassengerRepositoryImpl struct {
	db *DB
}

func NewPassengerRepository(db *DB) repository.PassengerRepository {
	return &PassengerRepositoryImpl{db: db}
}

func (r *PassengerRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, passenger *model.Passenger) (*model.Passenger, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}

	s.nextPassengerID++
	now := time.Now().UTC()
	passenger.ID = s.nextPassengerID
	passenger.CreatedAt = now
	passenger.UpdatedAt = now
	s.passengers[passenger.ID] = *passenger
	return passenger, nil
}

func (r *PassengerRepositoryImpl) CreateDependents(ctx context.Context, tx pgx.Tx, passengerID int, dependents []*model.Dependent) ([]*model.Dependent, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}
	if _, ok := s.passengers[passengerID]; !ok {
		return nil, apperrors.ErrPassengerNotFound
	}

	now := time.Now().UTC()
	created := make([]*model.Dependent, 0, len(dependents))
	for _, d := range dependents {
		s.nextDependentID++
		d.ID = s.nextDependentID
		d.PassengerID = passengerID
		d.CreatedAt = now
		s.dependents[passengerID] = append(s.dependents[passengerID], *d)
		created = append(created, d)
	}
	return created, nil
}

func (r *PassengerRepositoryImpl) FindByID(ctx context.Context, tx pgx.Tx, id int) (*model.Passenger, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}
	p, ok := s.passengers[id]
	if !ok {
		return nil, apperrors.ErrPassengerNotFound
	}
	return &p, nil
}

func (r *PassengerRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return err
	}
	if _, ok := s.passengers[id]; !ok {
		return apperrors.ErrPassengerNotFound
	}
	delete(s.passengers, id)
	delete(s.dependents, id)
	return nil
}
