package service

import (
	"context"
	"errors"
	"fmt"

	"railway-reservation/internal/model"
	"railway-reservation/internal/repository"
	apperrors "railway-reservation/pkg/app_errors"
	"railway-reservation/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PromotedTicket 取消時被往上升級的票券
type PromotedTicket struct {
	Ticket *model.Ticket
	From   model.TicketStatus
}

// VacateOutcome 一次取消造成的升級與回補
type VacateOutcome struct {
	Promoted   []PromotedTicket
	Backfilled model.TicketStatus
}

type promotionStep struct {
	from model.TicketStatus
	to   model.TicketStatus
	run  func(ctx context.Context, tx pgx.Tx) (*model.Ticket, error)
}

// PromotionEngine 在取消時釋放鋪位並依序往上遞補
type PromotionEngine struct {
	allocator  *AllocationEngine
	berths     repository.BerthRepository
	tickets    repository.TicketRepository
	passengers repository.PassengerRepository
	caps       model.Capacities
	steps      []promotionStep
	log        *zap.Logger
}

func NewPromotionEngine(
	allocator *AllocationEngine,
	berths repository.BerthRepository,
	tickets repository.TicketRepository,
	passengers repository.PassengerRepository,
	caps model.Capacities,
) *PromotionEngine {
	e := &PromotionEngine{
		allocator:  allocator,
		berths:     berths,
		tickets:    tickets,
		passengers: passengers,
		caps:       caps,
		log:        logger.WithComponent("promotion"),
	}
	// 由上往下：先補確認票，再補 RAC
	e.steps = []promotionStep{
		{from: model.TicketStatusRAC, to: model.TicketStatusConfirmed, run: e.promoteRACToConfirmed},
		{from: model.TicketStatusWaitingList, to: model.TicketStatusRAC, run: e.promoteWaitingListToRAC},
	}
	return e
}

// stepsFor 取消某等級的票券時，從該等級開始往下的每一層都要遞補
func (e *PromotionEngine) stepsFor(status model.TicketStatus) []promotionStep {
	for i, step := range e.steps {
		if step.to == status {
			return e.steps[i:]
		}
	}
	return nil
}

// Vacate 釋放被取消票券的鋪位、執行升級並回補 ledger（尚未寫回 ledger）。
// 票券本身由呼叫端刪除。
func (e *PromotionEngine) Vacate(ctx context.Context, tx pgx.Tx, ledger *model.Ledger, cancelled *model.Ticket) (*VacateOutcome, error) {
	outcome := &VacateOutcome{Promoted: []PromotedTicket{}}

	// 幼童票沒有佔用容量，不觸發升級也不回補
	if !cancelled.HoldsCapacity() {
		return outcome, nil
	}

	if ref := cancelled.Berth(); ref != nil {
		if _, err := e.releaseSlot(ctx, tx, ref.ID); err != nil {
			return nil, err
		}
	}

	for _, step := range e.stepsFor(cancelled.Status()) {
		promoted, err := step.run(ctx, tx)
		if errors.Is(err, apperrors.ErrBerthNotFound) {
			e.log.Warn("promotion skipped: no berth available",
				zap.String("cancelled_pnr", cancelled.PNR),
				zap.String("from", string(step.from)),
				zap.String("to", string(step.to)))
			continue
		}
		if err != nil {
			return nil, err
		}
		if promoted != nil {
			outcome.Promoted = append(outcome.Promoted, PromotedTicket{Ticket: promoted, From: step.from})
		}
	}

	outcome.Backfilled = ledger.Backfill(e.caps)
	if err := ledger.Check(e.caps); err != nil {
		e.log.Error("ledger out of range after cancellation", zap.String("cancelled_pnr", cancelled.PNR), zap.Error(err))
		return nil, err
	}

	return outcome, nil
}

// promoteRACToConfirmed 序號最小的 RAC 票升為確認票，依優先規則重新選鋪
func (e *PromotionEngine) promoteRACToConfirmed(ctx context.Context, tx pgx.Tx) (*model.Ticket, error) {
	ticket, err := e.tickets.FindFirstWithLock(ctx, tx, model.TicketStatusRAC)
	if errors.Is(err, apperrors.ErrTicketNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	passenger, err := e.passengers.FindByID(ctx, tx, ticket.PassengerID)
	if err != nil {
		return nil, err
	}

	berth, err := e.allocator.SelectStandardBerth(ctx, tx, passenger)
	if err != nil {
		return nil, err
	}

	vacated := ticket.Berth()
	if err := e.allocator.claim(ctx, tx, berth); err != nil {
		return nil, err
	}

	ticket.Placement = model.Confirmed{Berth: berth.Ref()}
	if err := e.tickets.UpdatePlacement(ctx, tx, ticket); err != nil {
		return nil, err
	}

	if vacated != nil {
		old, err := e.releaseSlot(ctx, tx, vacated.ID)
		if err != nil {
			return nil, err
		}
		// 側下鋪的乘客數必須等於仍指向它的票券數
		holders, err := e.tickets.CountByBerth(ctx, tx, old.ID)
		if err != nil {
			return nil, err
		}
		if holders != old.Occupants {
			return nil, fmt.Errorf("%w: berth %d has %d occupants but %d tickets",
				apperrors.ErrInvariantViolation, old.Number, old.Occupants, holders)
		}
	}

	return ticket, nil
}

// promoteWaitingListToRAC 序號最小的候補票升為 RAC，序號接在目前最大 RAC 序號之後
func (e *PromotionEngine) promoteWaitingListToRAC(ctx context.Context, tx pgx.Tx) (*model.Ticket, error) {
	ticket, err := e.tickets.FindFirstWithLock(ctx, tx, model.TicketStatusWaitingList)
	if errors.Is(err, apperrors.ErrTicketNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	berth, err := e.allocator.SelectSharedBerth(ctx, tx)
	if err != nil {
		return nil, err
	}

	max, err := e.tickets.MaxSequenceNumber(ctx, tx, model.TicketStatusRAC)
	if err != nil {
		return nil, err
	}

	if err := e.allocator.claim(ctx, tx, berth); err != nil {
		return nil, err
	}

	ticket.Placement = model.RAC{Berth: *berth.Ref(), Number: max + 1}
	if err := e.tickets.UpdatePlacement(ctx, tx, ticket); err != nil {
		return nil, err
	}

	return ticket, nil
}

// releaseSlot 釋放一個乘客位置；找不到鋪位代表票券與鋪位不一致
func (e *PromotionEngine) releaseSlot(ctx context.Context, tx pgx.Tx, berthID int) (*model.Berth, error) {
	berth, err := e.berths.FindByIDWithLock(ctx, tx, berthID)
	if errors.Is(err, apperrors.ErrBerthNotFound) {
		return nil, fmt.Errorf("%w: ticket references missing berth %d", apperrors.ErrInvariantViolation, berthID)
	}
	if err != nil {
		return nil, err
	}

	if err := berth.Release(); err != nil {
		return nil, err
	}
	if err := e.berths.UpdateOccupancy(ctx, tx, berth); err != nil {
		return nil, err
	}
	return berth, nil
}
