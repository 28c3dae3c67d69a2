package repository

import (
	"context"
	"fmt"

	"railway-reservation/internal/model"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PassengerRepository interface {
	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, passenger *model.Passenger) (*model.Passenger, error)
	CreateDependents(ctx context.Context, tx pgx.Tx, passengerID int, dependents []*model.Dependent) ([]*model.Dependent, error)
	FindByID(ctx context.Context, tx pgx.Tx, id int) (*model.Passenger, error)
	// Delete 連同隨行幼童一併刪除
	Delete(ctx context.Context, tx pgx.Tx, id int) error
}

type PassengerRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPassengerRepository(pool *pgxpool.Pool) PassengerRepository {
	return &PassengerRepositoryImpl{
		pool: pool,
	}
}

func (r *PassengerRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, passenger *model.Passenger) (*model.Passenger, error) {
	query := `
		INSERT INTO passengers (name, age, gender, has_child_under_five)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		passenger.Name, passenger.Age, passenger.Gender, passenger.HasChildUnderFive,
	).Scan(
		&passenger.ID,
		&passenger.CreatedAt,
		&passenger.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create passenger: %w", err)
	}

	return passenger, nil
}

func (r *PassengerRepositoryImpl) CreateDependents(ctx context.Context, tx pgx.Tx, passengerID int, dependents []*model.Dependent) ([]*model.Dependent, error) {
	query := `
		INSERT INTO dependents (passenger_id, name, age, gender)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	created := make([]*model.Dependent, 0, len(dependents))
	for _, d := range dependents {
		d.PassengerID = passengerID
		err := tx.QueryRow(ctx, query, passengerID, d.Name, d.Age, d.Gender).Scan(&d.ID, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create dependent: %w", err)
		}
		created = append(created, d)
	}

	return created, nil
}

func (r *PassengerRepositoryImpl) FindByID(ctx context.Context, tx pgx.Tx, id int) (*model.Passenger, error) {
	query := `
		SELECT id, name, age, gender, has_child_under_five, created_at, updated_at
		FROM passengers
		WHERE id = $1
	`

	var passenger model.Passenger
	err := tx.QueryRow(ctx, query, id).Scan(
		&passenger.ID,
		&passenger.Name,
		&passenger.Age,
		&passenger.Gender,
		&passenger.HasChildUnderFive,
		&passenger.CreatedAt,
		&passenger.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrPassengerNotFound)
	}

	return &passenger, nil
}

func (r *PassengerRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	// dependents 以 ON DELETE CASCADE 跟著刪除
	result, err := tx.Exec(ctx, `DELETE FROM passengers WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPassengerNotFound
	}

	return nil
}
