package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"railway-reservation/internal/model"
	"railway-reservation/internal/repository"
	apperrors "railway-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

type TicketRepositoryImpl struct {
	db *DB
}

func NewTicketRepository(db *DB) repository.TicketRepository {
	return &TicketRepositoryImpl{db: db}
}

var statusRank = map[model.TicketStatus]int{
	model.TicketStatusConfirmed:   1,
	model.TicketStatusRAC:         2,
	model.TicketStatusWaitingList: 3,
}

func orDefault(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func berthNumber(t *model.Ticket) int {
	if b := t.Berth(); b != nil {
		return b.Number
	}
	return 0
}

// sortedTickets 與 SQL 版本的 ORDER BY 相同
func (s *state) sortedTickets() []model.Ticket {
	tickets := make([]model.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		tickets = append(tickets, t)
	}
	sort.Slice(tickets, func(i, j int) bool {
		a, b := &tickets[i], &tickets[j]
		if ra, rb := statusRank[a.Status()], statusRank[b.Status()]; ra != rb {
			return ra < rb
		}
		if na, nb := berthNumber(a), berthNumber(b); na != nb {
			return na < nb
		}
		if na, nb := orDefault(a.RACNumber()), orDefault(b.RACNumber()); na != nb {
			return na < nb
		}
		if na, nb := orDefault(a.WaitingListNumber()), orDefault(b.WaitingListNumber()); na != nb {
			return na < nb
		}
		return a.ID < b.ID
	})
	return tickets
}

func sequenceNumber(t *model.Ticket, status model.TicketStatus) (int, error) {
	switch status {
	case model.TicketStatusRAC:
		return orDefault(t.RACNumber()), nil
	case model.TicketStatusWaitingList:
		return orDefault(t.WaitingListNumber()), nil
	}
	return 0, fmt.Errorf("%w: tier %q has no sequence number", apperrors.ErrInvalidInput, status)
}

func (s *state) view(t model.Ticket) *model.TicketView {
	p := s.passengers[t.PassengerID]
	children := make([]*model.Dependent, 0, len(s.dependents[t.PassengerID]))
	for _, d := range s.dependents[t.PassengerID] {
		d := d
		children = append(children, &d)
	}
	return model.NewTicketView(&t, &p, children)
}

func (r *TicketRepositoryImpl) FindViewByPNR(ctx context.Context, pnr string) (*model.TicketView, error) {
	var view *model.TicketView
	err := r.db.read(ctx, func(s *state) error {
		for _, t := range s.tickets {
			if t.PNR == pnr {
				view = s.view(t)
				return nil
			}
		}
		return apperrors.ErrTicketNotFound
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (r *TicketRepositoryImpl) ListViews(ctx context.Context) ([]*model.TicketView, error) {
	views := make([]*model.TicketView, 0)
	err := r.db.read(ctx, func(s *state) error {
		for _, t := range s.sortedTickets() {
			views = append(views, s.view(t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}
	if _, ok := s.passengers[ticket.PassengerID]; !ok {
		return nil, apperrors.ErrPassengerNotFound
	}
	for _, t := range s.tickets {
		if t.PNR == ticket.PNR {
			return nil, apperrors.ErrPNRCollision
		}
	}

	s.nextTicketID++
	now := time.Now().UTC()
	ticket.ID = s.nextTicketID
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	s.tickets[ticket.ID] = *ticket
	return ticket, nil
}

func (r *TicketRepositoryImpl) ExistsPNR(ctx context.Context, tx pgx.Tx, pnr string) (bool, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return false, err
	}
	for _, t := range s.tickets {
		if t.PNR == pnr {
			return true, nil
		}
	}
	return false, nil
}

func (r *TicketRepositoryImpl) FindByPNRWithLock(ctx context.Context, tx pgx.Tx, pnr string) (*model.Ticket, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}
	for _, t := range s.tickets {
		if t.PNR == pnr {
			return &t, nil
		}
	}
	return nil, apperrors.ErrTicketNotFound
}

func (r *TicketRepositoryImpl) FindFirstWithLock(ctx context.Context, tx pgx.Tx, status model.TicketStatus) (*model.Ticket, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return nil, err
	}

	var first *model.Ticket
	firstNumber := 0
	for _, t := range s.tickets {
		if t.Status() != status {
			continue
		}
		t := t
		n, err := sequenceNumber(&t, status)
		if err != nil {
			return nil, err
		}
		if first == nil || n < firstNumber || (n == firstNumber && t.ID < first.ID) {
			first, firstNumber = &t, n
		}
	}
	if first == nil {
		return nil, apperrors.ErrTicketNotFound
	}
	return first, nil
}

func (r *TicketRepositoryImpl) MaxSequenceNumber(ctx context.Context, tx pgx.Tx, status model.TicketStatus) (int, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return 0, err
	}

	max := 0
	for _, t := range s.tickets {
		if t.Status() != status {
			continue
		}
		n, err := sequenceNumber(&t, status)
		if err != nil {
			return 0, err
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (r *TicketRepositoryImpl) CountByBerth(ctx context.Context, tx pgx.Tx, berthID int) (int, error) {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, t := range s.tickets {
		if b := t.Berth(); b != nil && b.ID == berthID {
			count++
		}
	}
	return count, nil
}

func (r *TicketRepositoryImpl) UpdatePlacement(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) error {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return err
	}

	stored, ok := s.tickets[ticket.ID]
	if !ok {
		return apperrors.ErrTicketNotFound
	}

	ticket.UpdatedAt = time.Now().UTC()
	stored.Placement = ticket.Placement
	stored.UpdatedAt = ticket.UpdatedAt
	s.tickets[ticket.ID] = stored
	return nil
}

func (r *TicketRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	s, err := r.db.stateFor(tx)
	if err != nil {
		return err
	}
	if _, ok := s.tickets[id]; !ok {
		return apperrors.ErrTicketNotFound
	}
	delete(s.tickets, id)
	return nil
}
