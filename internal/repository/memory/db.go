// Package memory keeps the whole reservation state in process. It satisfies
// the same repository interfaces as the Postgres implementation, and a
// transaction holds an exclusive lock on the state until Commit or Rollback,
// so every transaction is serialized.
package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"railway-reservation/internal/model"

	"github.com/jackc/pgx/v5"
)

var errForeignTx = errors.New("memory: transaction does not belong to this store")

type state struct {
	berths     map[int]model.Berth
	ledger     model.Ledger
	passengers map[int]model.Passenger
	dependents map[int][]model.Dependent
	tickets    map[int]model.Ticket

	nextPassengerID int
	nextDependentID int
	nextTicketID    int
}

func (s *state) clone() *state {
	c := &state{
		berths:          make(map[int]model.Berth, len(s.berths)),
		ledger:          s.ledger,
		passengers:      make(map[int]model.Passenger, len(s.passengers)),
		dependents:      make(map[int][]model.Dependent, len(s.dependents)),
		tickets:         make(map[int]model.Ticket, len(s.tickets)),
		nextPassengerID: s.nextPassengerID,
		nextDependentID: s.nextDependentID,
		nextTicketID:    s.nextTicketID,
	}
	for id, b := range s.berths {
		c.berths[id] = b
	}
	for id, p := range s.passengers {
		c.passengers[id] = p
	}
	for id, deps := range s.dependents {
		c.dependents[id] = append([]model.Dependent(nil), deps...)
	}
	for id, t := range s.tickets {
		c.tickets[id] = t
	}
	return c
}

func (s *state) sortedBerths() []model.Berth {
	berths := make([]model.Berth, 0, len(s.berths))
	for _, b := range s.berths {
		berths = append(berths, b)
	}
	sort.Slice(berths, func(i, j int) bool { return berths[i].Number < berths[j].Number })
	return berths
}

// DB 以單一鎖序列化所有交易
type DB struct {
	sem   chan struct{}
	state *state
}

// NewDB 依配置建立鋪位並初始化計數列
func NewDB(caps model.Capacities) *DB {
	now := time.Now().UTC()
	st := &state{
		berths:     make(map[int]model.Berth),
		ledger:     *model.NewLedger(caps),
		passengers: make(map[int]model.Passenger),
		dependents: make(map[int][]model.Dependent),
		tickets:    make(map[int]model.Ticket),
	}
	st.ledger.UpdatedAt = now
	for i, b := range model.BerthLayout(caps) {
		b.ID = i + 1
		b.CreatedAt = now
		b.UpdatedAt = now
		st.berths[b.ID] = b
	}

	return &DB{
		sem:   make(chan struct{}, 1),
		state: st,
	}
}

func (db *DB) acquire(ctx context.Context) error {
	select {
	case db.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (db *DB) release() {
	<-db.sem
}

// BeginTx 取得獨占鎖並記錄快照，Rollback 時還原
func (db *DB) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	if err := db.acquire(ctx); err != nil {
		return nil, err
	}
	return &memTx{db: db, snapshot: db.state.clone()}, nil
}

// read 在交易外讀取，等同 pool 上的單一查詢
func (db *DB) read(ctx context.Context, fn func(s *state) error) error {
	if err := db.acquire(ctx); err != nil {
		return err
	}
	defer db.release()
	return fn(db.state)
}

// stateFor 確認 tx 屬於此 DB 且仍在進行中
func (db *DB) stateFor(tx pgx.Tx) (*state, error) {
	mtx, ok := tx.(*memTx)
	if !ok || mtx.db != db {
		return nil, errForeignTx
	}
	if mtx.done {
		return nil, pgx.ErrTxClosed
	}
	return db.state, nil
}

// memTx 只實作 Commit / Rollback，其餘 pgx.Tx 方法不會被 memory repository 呼叫
type memTx struct {
	pgx.Tx
	db       *DB
	snapshot *state
	done     bool
}

func (tx *memTx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.snapshot = nil
	tx.db.release()
	return nil
}

func (tx *memTx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.state = tx.snapshot
	tx.snapshot = nil
	tx.db.release()
	return nil
}
