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

// AllocationEngine 決定新訂票的等級與鋪位。所有方法都必須在已鎖住 ledger 的交易內呼叫。
type AllocationEngine struct {
	berths  repository.BerthRepository
	tickets repository.TicketRepository
	caps    model.Capacities
	log     *zap.Logger
}

func NewAllocationEngine(berths repository.BerthRepository, tickets repository.TicketRepository, caps model.Capacities) *AllocationEngine {
	return &AllocationEngine{
		berths:  berths,
		tickets: tickets,
		caps:    caps,
		log:     logger.WithComponent("allocation"),
	}
}

// Place 為乘客選定位置，並同步更新鋪位與 ledger（尚未寫回 ledger）。
// 三個等級都滿時回傳 ErrNoTicketsAvailable，且不做任何異動。
func (e *AllocationEngine) Place(ctx context.Context, tx pgx.Tx, ledger *model.Ledger, passenger *model.Passenger) (model.Placement, error) {
	// 幼童由大人抱著，不佔任何等級的容量
	if !passenger.NeedsBerth() {
		return model.Confirmed{}, nil
	}

	switch {
	case ledger.ConfirmedRemaining > 0:
		berth, err := e.SelectStandardBerth(ctx, tx, passenger)
		if err != nil {
			return nil, e.divergence(err, model.TicketStatusConfirmed, ledger)
		}
		if err := e.claim(ctx, tx, berth); err != nil {
			return nil, err
		}
		if err := ledger.Consume(model.TicketStatusConfirmed, e.caps); err != nil {
			return nil, err
		}
		return model.Confirmed{Berth: berth.Ref()}, nil

	case ledger.RACRemaining > 0:
		berth, err := e.SelectSharedBerth(ctx, tx)
		if err != nil {
			return nil, e.divergence(err, model.TicketStatusRAC, ledger)
		}
		number, err := e.nextNumber(ctx, tx, ledger, model.TicketStatusRAC)
		if err != nil {
			return nil, err
		}
		if err := e.claim(ctx, tx, berth); err != nil {
			return nil, err
		}
		if err := ledger.Consume(model.TicketStatusRAC, e.caps); err != nil {
			return nil, err
		}
		return model.RAC{Berth: *berth.Ref(), Number: number}, nil

	case ledger.WaitingRemaining > 0:
		number, err := e.nextNumber(ctx, tx, ledger, model.TicketStatusWaitingList)
		if err != nil {
			return nil, err
		}
		if err := ledger.Consume(model.TicketStatusWaitingList, e.caps); err != nil {
			return nil, err
		}
		return model.WaitingList{Number: number}, nil
	}

	return nil, apperrors.ErrNoTicketsAvailable
}

// SelectStandardBerth 優先規則：年長者或帶幼童的女性先找下鋪，沒有再找下中上鋪中編號最小者
func (e *AllocationEngine) SelectStandardBerth(ctx context.Context, tx pgx.Tx, passenger *model.Passenger) (*model.Berth, error) {
	if passenger.HasLowerBerthPriority() {
		berth, err := e.berths.FindFreeWithLock(ctx, tx, []model.BerthCategory{model.BerthLower})
		if err == nil {
			return berth, nil
		}
		if !errors.Is(err, apperrors.ErrBerthNotFound) {
			return nil, err
		}
	}
	return e.berths.FindFreeWithLock(ctx, tx, model.StandardCategories)
}

// SelectSharedBerth 側下鋪中乘客數未滿、編號最小者
func (e *AllocationEngine) SelectSharedBerth(ctx context.Context, tx pgx.Tx) (*model.Berth, error) {
	return e.berths.FindSharedWithRoomWithLock(ctx, tx, e.caps.RACSlotsPerBerth)
}

func (e *AllocationEngine) claim(ctx context.Context, tx pgx.Tx, berth *model.Berth) error {
	if err := berth.Claim(e.caps.RACSlotsPerBerth); err != nil {
		e.log.Error("berth over capacity", zap.Int("berth_number", berth.Number), zap.Error(err))
		return err
	}
	return e.berths.UpdateOccupancy(ctx, tx, berth)
}

// nextNumber 取 ledger 推導值與目前最大序號 +1 的較大者，序號不會重複使用
func (e *AllocationEngine) nextNumber(ctx context.Context, tx pgx.Tx, ledger *model.Ledger, status model.TicketStatus) (int, error) {
	number := ledger.NextNumber(status, e.caps)
	max, err := e.tickets.MaxSequenceNumber(ctx, tx, status)
	if err != nil {
		return 0, err
	}
	if max >= number {
		number = max + 1
	}
	return number, nil
}

// divergence ledger 顯示仍有容量但找不到鋪位：不降級，直接失敗
func (e *AllocationEngine) divergence(err error, status model.TicketStatus, ledger *model.Ledger) error {
	if !errors.Is(err, apperrors.ErrBerthNotFound) {
		return err
	}
	e.log.Error("ledger and berth pool diverged",
		zap.String("tier", string(status)),
		zap.Int("remaining", ledger.Remaining(status)))
	return fmt.Errorf("%w: ledger shows %d %s remaining but no berth is free",
		apperrors.ErrInvariantViolation, ledger.Remaining(status), status)
}
