package repository

import (
	"context"
	"time"

	"railway-reservation/internal/model"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BerthRepository interface {
	List(ctx context.Context) ([]*model.Berth, error)

	// Transaction methods
	// FindFreeWithLock 回傳指定類型中編號最小、尚未佔用的鋪位
	FindFreeWithLock(ctx context.Context, tx pgx.Tx, categories []model.BerthCategory) (*model.Berth, error)
	// FindSharedWithRoomWithLock 回傳乘客數未滿的側下鋪，以乘客數而非旗標判斷
	FindSharedWithRoomWithLock(ctx context.Context, tx pgx.Tx, slots int) (*model.Berth, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Berth, error)
	UpdateOccupancy(ctx context.Context, tx pgx.Tx, berth *model.Berth) error
}

type BerthRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBerthRepository(pool *pgxpool.Pool) BerthRepository {
	return &BerthRepositoryImpl{
		pool: pool,
	}
}

const berthColumns = `id, berth_number, berth_type, is_allocated, occupants, created_at, updated_at`

func scanBerth(row pgx.Row) (*model.Berth, error) {
	var berth model.Berth
	err := row.Scan(
		&berth.ID,
		&berth.Number,
		&berth.Category,
		&berth.Occupied,
		&berth.Occupants,
		&berth.CreatedAt,
		&berth.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &berth, nil
}

func (r *BerthRepositoryImpl) List(ctx context.Context) ([]*model.Berth, error) {
	query := `
		SELECT ` + berthColumns + `
		FROM berths
		ORDER BY berth_number
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	berths := make([]*model.Berth, 0)
	for rows.Next() {
		berth, err := scanBerth(rows)
		if err != nil {
			return nil, err
		}
		berths = append(berths, berth)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return berths, nil
}

func (r *BerthRepositoryImpl) FindFreeWithLock(ctx context.Context, tx pgx.Tx, categories []model.BerthCategory) (*model.Berth, error) {
	query := `
		SELECT ` + berthColumns + `
		FROM berths
		WHERE is_allocated = FALSE
		  AND occupants = 0
		  AND berth_type = ANY($1)
		ORDER BY berth_number
		LIMIT 1
		FOR UPDATE
	`

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}

	berth, err := scanBerth(tx.QueryRow(ctx, query, names))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrBerthNotFound)
	}
	return berth, nil
}

func (r *BerthRepositoryImpl) FindSharedWithRoomWithLock(ctx context.Context, tx pgx.Tx, slots int) (*model.Berth, error) {
	query := `
		SELECT ` + berthColumns + `
		FROM berths
		WHERE berth_type = $1
		  AND occupants < $2
		ORDER BY berth_number
		LIMIT 1
		FOR UPDATE
	`

	berth, err := scanBerth(tx.QueryRow(ctx, query, model.BerthSideLower, slots))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrBerthNotFound)
	}
	return berth, nil
}

func (r *BerthRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Berth, error) {
	query := `
		SELECT ` + berthColumns + `
		FROM berths
		WHERE id = $1
		FOR UPDATE
	`

	berth, err := scanBerth(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrBerthNotFound)
	}
	return berth, nil
}

func (r *BerthRepositoryImpl) UpdateOccupancy(ctx context.Context, tx pgx.Tx, berth *model.Berth) error {
	query := `
		UPDATE berths
		SET is_allocated = $1, occupants = $2, updated_at = $3
		WHERE id = $4
	`

	now := time.Now().UTC()
	result, err := tx.Exec(ctx, query, berth.Occupied, berth.Occupants, now, berth.ID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrBerthNotFound
	}

	berth.UpdatedAt = now
	return nil
}
