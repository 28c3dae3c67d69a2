package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"railway-reservation/internal/cache"
	"railway-reservation/internal/model"
	"railway-reservation/internal/queue"
	"railway-reservation/internal/repository"
	apperrors "railway-reservation/pkg/app_errors"
	"railway-reservation/pkg/logger"
	"railway-reservation/pkg/pnr"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// pnrAttempts 產生的 PNR 已存在時最多重試的次數
const pnrAttempts = 3

type ReservationService interface {
	// 訂票：分配等級與鋪位
	Book(ctx context.Context, req model.BookingRequest) (*model.TicketView, error)
	// 取消：釋放鋪位並依序遞補
	Cancel(ctx context.Context, code string) (*model.CancellationResult, error)
	GetByPNR(ctx context.Context, code string) (*model.TicketView, error)
	ListAll(ctx context.Context) (*model.TicketListing, error)
	Availability(ctx context.Context) (*model.Availability, error)
	Berths(ctx context.Context) ([]*model.Berth, error)
}

// Repositories 訂位所需的資料存取層，postgres 與 memory 皆可
type Repositories struct {
	Berths     repository.BerthRepository
	Ledger     repository.LedgerRepository
	Passengers repository.PassengerRepository
	Tickets    repository.TicketRepository
}

type ReservationServiceImpl struct {
	db          repository.TxBeginner
	repos       Repositories
	caps        model.Capacities
	allocator   *AllocationEngine
	promoter    *PromotionEngine
	ledgerCache cache.LedgerCache
	ladderQueue queue.LadderQueue
	newPNR      pnr.Generator
	log         *zap.Logger
}

// NewReservationService ledgerCache 與 ladderQueue 可為 nil
func NewReservationService(
	db repository.TxBeginner,
	repos Repositories,
	caps model.Capacities,
	ledgerCache cache.LedgerCache,
	ladderQueue queue.LadderQueue,
) ReservationService {
	allocator := NewAllocationEngine(repos.Berths, repos.Tickets, caps)
	return &ReservationServiceImpl{
		db:          db,
		repos:       repos,
		caps:        caps,
		allocator:   allocator,
		promoter:    NewPromotionEngine(allocator, repos.Berths, repos.Tickets, repos.Passengers, caps),
		ledgerCache: ledgerCache,
		ladderQueue: ladderQueue,
		newPNR:      pnr.Generate,
		log:         logger.WithComponent("service"),
	}
}

// ledger 列上的 FOR UPDATE 是唯一的排隊點，READ COMMITTED 即可
var txOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func (s *ReservationServiceImpl) Book(ctx context.Context, req model.BookingRequest) (*model.TicketView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	passenger := req.ToPassenger()

	tx, err := s.db.BeginTx(ctx, txOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx: %v", apperrors.ErrInternalServerError, err)
	}
	defer tx.Rollback(ctx)

	// 1. 鎖住 ledger
	ledger, err := s.repos.Ledger.GetWithLock(ctx, tx)
	if err != nil {
		return nil, err
	}

	// 2. 決定等級與鋪位
	placement, err := s.allocator.Place(ctx, tx, ledger, passenger)
	if err != nil {
		return nil, err
	}

	// 3. 寫入乘客、幼童與票券
	passenger, err = s.repos.Passengers.Create(ctx, tx, passenger)
	if err != nil {
		return nil, err
	}

	children, err := s.repos.Passengers.CreateDependents(ctx, tx, passenger.ID, req.ToDependents())
	if err != nil {
		return nil, err
	}

	code, err := s.uniquePNR(ctx, tx)
	if err != nil {
		return nil, err
	}

	ticket, err := s.repos.Tickets.Create(ctx, tx, &model.Ticket{
		PNR:         code,
		PassengerID: passenger.ID,
		Placement:   placement,
	})
	if err != nil {
		return nil, err
	}

	// 4. 寫回 ledger；幼童票不異動容量
	if ticket.HoldsCapacity() {
		if err := s.repos.Ledger.Update(ctx, tx, ledger); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", apperrors.ErrInternalServerError, err)
	}

	s.log.Info("ticket booked",
		zap.String("pnr", ticket.PNR),
		zap.String("status", string(ticket.Status())),
		zap.Bool("lap_held", !ticket.HoldsCapacity()))

	s.afterCommit(ctx, ledger, ticket.HoldsCapacity(),
		model.NewLadderEvent(model.LadderEventBooked, ticket, "", time.Now()))

	return model.NewTicketView(ticket, passenger, children), nil
}

func (s *ReservationServiceImpl) Cancel(ctx context.Context, code string) (*model.CancellationResult, error) {
	code = normalizePNR(code)
	if !pnr.Valid(code) {
		return nil, apperrors.ErrTicketNotFound
	}

	tx, err := s.db.BeginTx(ctx, txOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx: %v", apperrors.ErrInternalServerError, err)
	}
	defer tx.Rollback(ctx)

	// 1. 鎖住 ledger，再鎖票券
	ledger, err := s.repos.Ledger.GetWithLock(ctx, tx)
	if err != nil {
		return nil, err
	}

	ticket, err := s.repos.Tickets.FindByPNRWithLock(ctx, tx, code)
	if err != nil {
		return nil, err
	}

	// 2. 釋放鋪位、遞補、回補 ledger
	outcome, err := s.promoter.Vacate(ctx, tx, ledger, ticket)
	if err != nil {
		return nil, err
	}

	// 3. 刪除票券與乘客（幼童隨之刪除）
	if err := s.repos.Tickets.Delete(ctx, tx, ticket.ID); err != nil {
		return nil, err
	}
	if err := s.repos.Passengers.Delete(ctx, tx, ticket.PassengerID); err != nil {
		return nil, err
	}

	if ticket.HoldsCapacity() {
		if err := s.repos.Ledger.Update(ctx, tx, ledger); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", apperrors.ErrInternalServerError, err)
	}

	result := &model.CancellationResult{
		PNR:        ticket.PNR,
		Status:     ticket.Status(),
		Promotions: make([]model.Promotion, 0, len(outcome.Promoted)),
		Backfilled: outcome.Backfilled,
	}

	now := time.Now()
	events := []*model.LadderEvent{model.NewLadderEvent(model.LadderEventCancelled, ticket, ticket.Status(), now)}
	for _, p := range outcome.Promoted {
		result.Promotions = append(result.Promotions, model.Promotion{
			PNR:  p.Ticket.PNR,
			From: p.From,
			To:   p.Ticket.Status(),
		})
		events = append(events, model.NewLadderEvent(model.LadderEventPromoted, p.Ticket, p.From, now))
	}

	s.log.Info("ticket cancelled",
		zap.String("pnr", ticket.PNR),
		zap.String("status", string(ticket.Status())),
		zap.Int("promotions", len(result.Promotions)),
		zap.String("backfilled", string(outcome.Backfilled)))

	s.afterCommit(ctx, ledger, ticket.HoldsCapacity(), events...)

	return result, nil
}

func (s *ReservationServiceImpl) GetByPNR(ctx context.Context, code string) (*model.TicketView, error) {
	code = normalizePNR(code)
	if !pnr.Valid(code) {
		return nil, apperrors.ErrTicketNotFound
	}
	return s.repos.Tickets.FindViewByPNR(ctx, code)
}

func (s *ReservationServiceImpl) ListAll(ctx context.Context) (*model.TicketListing, error) {
	views, err := s.repos.Tickets.ListViews(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewTicketListing(views), nil
}

// Availability 優先讀 Redis 快照；沒有時讀 ledger 並重新預熱
func (s *ReservationServiceImpl) Availability(ctx context.Context) (*model.Availability, error) {
	if s.ledgerCache != nil {
		ledger, err := s.ledgerCache.Load(ctx)
		if err == nil {
			return model.NewAvailability(ledger, s.caps), nil
		}
		if !errors.Is(err, apperrors.ErrCacheMiss) {
			s.log.Warn("ledger cache read failed, falling back to store", zap.Error(err))
		}
	}

	ledger, err := s.repos.Ledger.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.refreshCache(ctx, ledger)
	return model.NewAvailability(ledger, s.caps), nil
}

func (s *ReservationServiceImpl) Berths(ctx context.Context) ([]*model.Berth, error) {
	return s.repos.Berths.List(ctx)
}

func (s *ReservationServiceImpl) uniquePNR(ctx context.Context, tx pgx.Tx) (string, error) {
	for i := 0; i < pnrAttempts; i++ {
		code := s.newPNR()
		exists, err := s.repos.Tickets.ExistsPNR(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.log.Warn("pnr collision, regenerating", zap.String("pnr", code), zap.Int("attempt", i+1))
	}
	return "", fmt.Errorf("%w: %d attempts", apperrors.ErrPNRCollision, pnrAttempts)
}

// afterCommit 刷新快照並發送事件；失敗只記錄，已提交的交易不受影響
func (s *ReservationServiceImpl) afterCommit(ctx context.Context, ledger *model.Ledger, ledgerChanged bool, events ...*model.LadderEvent) {
	ctx = context.WithoutCancel(ctx)

	if ledgerChanged {
		s.refreshCache(ctx, ledger)
	}

	if s.ladderQueue == nil {
		return
	}
	for _, event := range events {
		if err := s.ladderQueue.PublishEvent(ctx, event); err != nil {
			s.log.Warn("failed to publish ladder event",
				zap.String("event", string(event.Type)),
				zap.String("pnr", event.PNR),
				zap.Error(err))
		}
	}
}

func (s *ReservationServiceImpl) refreshCache(ctx context.Context, ledger *model.Ledger) {
	if s.ledgerCache == nil {
		return
	}
	if err := s.ledgerCache.Store(ctx, ledger); err != nil {
		s.log.Warn("failed to refresh ledger cache", zap.Error(err))
	}
}

func normalizePNR(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
