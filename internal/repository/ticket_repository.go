package repository

import (
	"context"
	"fmt"
	"time"

	"railway-reservation/internal/model"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindViewByPNR(ctx context.Context, pnr string) (*model.TicketView, error)
	// ListViews 依 CONFIRMED、RAC、WAITING_LIST 排序，同等級再依鋪位與序號
	ListViews(ctx context.Context) ([]*model.TicketView, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	ExistsPNR(ctx context.Context, tx pgx.Tx, pnr string) (bool, error)
	FindByPNRWithLock(ctx context.Context, tx pgx.Tx, pnr string) (*model.Ticket, error)
	// FindFirstWithLock 回傳該等級中序號最小的票券 (RAC 或 WAITING_LIST)
	FindFirstWithLock(ctx context.Context, tx pgx.Tx, status model.TicketStatus) (*model.Ticket, error)
	MaxSequenceNumber(ctx context.Context, tx pgx.Tx, status model.TicketStatus) (int, error)
	CountByBerth(ctx context.Context, tx pgx.Tx, berthID int) (int, error)
	UpdatePlacement(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) error
	Delete(ctx context.Context, tx pgx.Tx, id int) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketSelect = `
	SELECT t.id, t.pnr, t.passenger_id, t.status,
	       t.berth_id, b.berth_number, b.berth_type,
	       t.rac_number, t.waiting_list_number,
	       t.created_at, t.updated_at
	FROM tickets t
	LEFT JOIN berths b ON b.id = t.berth_id
`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var (
		ticket        model.Ticket
		status        model.TicketStatus
		berthID       *int
		berthNumber   *int
		berthType     *model.BerthCategory
		racNumber     *int
		waitingNumber *int
	)
	err := row.Scan(
		&ticket.ID,
		&ticket.PNR,
		&ticket.PassengerID,
		&status,
		&berthID,
		&berthNumber,
		&berthType,
		&racNumber,
		&waitingNumber,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var berth *model.BerthRef
	if berthID != nil && berthNumber != nil && berthType != nil {
		berth = &model.BerthRef{ID: *berthID, Number: *berthNumber, Category: *berthType}
	}

	ticket.Placement, err = model.PlacementFromColumns(status, berth, racNumber, waitingNumber)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func sequenceColumn(status model.TicketStatus) (string, error) {
	switch status {
	case model.TicketStatusRAC:
		return "rac_number", nil
	case model.TicketStatusWaitingList:
		return "waiting_list_number", nil
	}
	return "", fmt.Errorf("%w: tier %q has no sequence number", apperrors.ErrInvalidInput, status)
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (
			pnr, passenger_id, berth_id, status, rac_number, waiting_list_number
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	status, berthID, racNumber, waitingNumber := ticket.Columns()
	err := tx.QueryRow(ctx, query,
		ticket.PNR, ticket.PassengerID, berthID, status, racNumber, waitingNumber,
	).Scan(
		&ticket.ID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "tickets_pnr_key") {
			return nil, apperrors.ErrPNRCollision
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) ExistsPNR(ctx context.Context, tx pgx.Tx, pnr string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE pnr = $1)`, pnr).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *TicketRepositoryImpl) FindByPNRWithLock(ctx context.Context, tx pgx.Tx, pnr string) (*model.Ticket, error) {
	query := ticketSelect + `
		WHERE t.pnr = $1
		FOR UPDATE OF t
	`

	ticket, err := scanTicket(tx.QueryRow(ctx, query, pnr))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrTicketNotFound)
	}
	return ticket, nil
}

func (r *TicketRepositoryImpl) FindFirstWithLock(ctx context.Context, tx pgx.Tx, status model.TicketStatus) (*model.Ticket, error) {
	column, err := sequenceColumn(status)
	if err != nil {
		return nil, err
	}

	query := ticketSelect + fmt.Sprintf(`
		WHERE t.status = $1
		ORDER BY t.%s, t.id
		LIMIT 1
		FOR UPDATE OF t
	`, column)

	ticket, err := scanTicket(tx.QueryRow(ctx, query, status))
	if err != nil {
		return nil, mapNoRows(err, apperrors.ErrTicketNotFound)
	}
	return ticket, nil
}

func (r *TicketRepositoryImpl) MaxSequenceNumber(ctx context.Context, tx pgx.Tx, status model.TicketStatus) (int, error) {
	column, err := sequenceColumn(status)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(%s), 0)
		FROM tickets
		WHERE status = $1
	`, column)

	var max int
	if err := tx.QueryRow(ctx, query, status).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *TicketRepositoryImpl) CountByBerth(ctx context.Context, tx pgx.Tx, berthID int) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE berth_id = $1`, berthID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TicketRepositoryImpl) UpdatePlacement(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) error {
	query := `
		UPDATE tickets
		SET status = $1, berth_id = $2, rac_number = $3, waiting_list_number = $4, updated_at = $5
		WHERE id = $6
	`

	now := time.Now().UTC()
	status, berthID, racNumber, waitingNumber := ticket.Columns()
	result, err := tx.Exec(ctx, query, status, berthID, racNumber, waitingNumber, now, ticket.ID)
	if err != nil {
		return fmt.Errorf("failed to update ticket placement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	ticket.UpdatedAt = now
	return nil
}

func (r *TicketRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	result, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

func (r *TicketRepositoryImpl) FindViewByPNR(ctx context.Context, pnr string) (*model.TicketView, error) {
	views, err := r.queryViews(ctx, `WHERE t.pnr = $1`, pnr)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, apperrors.ErrTicketNotFound
	}
	return views[0], nil
}

func (r *TicketRepositoryImpl) ListViews(ctx context.Context) ([]*model.TicketView, error) {
	return r.queryViews(ctx, ``)
}

func (r *TicketRepositoryImpl) queryViews(ctx context.Context, where string, args ...interface{}) ([]*model.TicketView, error) {
	query := `
		SELECT t.id, t.pnr, t.passenger_id, t.status,
		       t.berth_id, b.berth_number, b.berth_type,
		       t.rac_number, t.waiting_list_number,
		       t.created_at, t.updated_at,
		       p.name, p.age, p.gender, p.has_child_under_five, p.created_at, p.updated_at
		FROM tickets t
		JOIN passengers p ON p.id = t.passenger_id
		LEFT JOIN berths b ON b.id = t.berth_id
		` + where + `
		ORDER BY
			CASE t.status
				WHEN 'CONFIRMED' THEN 1
				WHEN 'RAC' THEN 2
				WHEN 'WAITING_LIST' THEN 3
			END,
			COALESCE(b.berth_number, 0),
			COALESCE(t.rac_number, 0),
			COALESCE(t.waiting_list_number, 0),
			t.id
	`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]*model.TicketView, 0)
	byPassenger := make(map[int]*model.TicketView)
	passengerIDs := make([]int, 0)

	for rows.Next() {
		var (
			ticket        model.Ticket
			passenger     model.Passenger
			status        model.TicketStatus
			berthID       *int
			berthNumber   *int
			berthType     *model.BerthCategory
			racNumber     *int
			waitingNumber *int
		)
		err := rows.Scan(
			&ticket.ID,
			&ticket.PNR,
			&ticket.PassengerID,
			&status,
			&berthID,
			&berthNumber,
			&berthType,
			&racNumber,
			&waitingNumber,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&passenger.Name,
			&passenger.Age,
			&passenger.Gender,
			&passenger.HasChildUnderFive,
			&passenger.CreatedAt,
			&passenger.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		var berth *model.BerthRef
		if berthID != nil && berthNumber != nil && berthType != nil {
			berth = &model.BerthRef{ID: *berthID, Number: *berthNumber, Category: *berthType}
		}
		ticket.Placement, err = model.PlacementFromColumns(status, berth, racNumber, waitingNumber)
		if err != nil {
			return nil, err
		}

		passenger.ID = ticket.PassengerID
		view := model.NewTicketView(&ticket, &passenger, nil)
		views = append(views, view)
		byPassenger[passenger.ID] = view
		passengerIDs = append(passengerIDs, passenger.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(passengerIDs) == 0 {
		return views, nil
	}

	if err := r.attachDependents(ctx, passengerIDs, byPassenger); err != nil {
		return nil, err
	}

	return views, nil
}

func (r *TicketRepositoryImpl) attachDependents(ctx context.Context, passengerIDs []int, byPassenger map[int]*model.TicketView) error {
	query := `
		SELECT id, passenger_id, name, age, gender, created_at
		FROM dependents
		WHERE passenger_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, passengerIDs)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d model.Dependent
		if err := rows.Scan(&d.ID, &d.PassengerID, &d.Name, &d.Age, &d.Gender, &d.CreatedAt); err != nil {
			return err
		}
		if view, ok := byPassenger[d.PassengerID]; ok {
			view.Children = append(view.Children, &d)
		}
	}

	return rows.Err()
}
