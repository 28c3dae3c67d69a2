package database

import (
	"context"
	"fmt"

	"railway-reservation/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS berths (
		id           SERIAL PRIMARY KEY,
		berth_number INTEGER NOT NULL UNIQUE,
		berth_type   TEXT NOT NULL CHECK (berth_type IN ('LOWER', 'MIDDLE', 'UPPER', 'SIDE_LOWER')),
		is_allocated BOOLEAN NOT NULL DEFAULT FALSE,
		occupants    INTEGER NOT NULL DEFAULT 0 CHECK (occupants >= 0),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS passengers (
		id                   SERIAL PRIMARY KEY,
		name                 VARCHAR(100) NOT NULL,
		age                  INTEGER NOT NULL CHECK (age BETWEEN 0 AND 120),
		gender               TEXT NOT NULL CHECK (gender IN ('MALE', 'FEMALE', 'OTHER')),
		has_child_under_five BOOLEAN NOT NULL DEFAULT FALSE,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS dependents (
		id           SERIAL PRIMARY KEY,
		passenger_id INTEGER NOT NULL REFERENCES passengers(id) ON DELETE CASCADE,
		name         VARCHAR(100) NOT NULL,
		age          INTEGER NOT NULL CHECK (age BETWEEN 0 AND 4),
		gender       TEXT NOT NULL CHECK (gender IN ('MALE', 'FEMALE', 'OTHER')),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id                  SERIAL PRIMARY KEY,
		pnr                 VARCHAR(10) NOT NULL,
		passenger_id        INTEGER NOT NULL REFERENCES passengers(id) ON DELETE CASCADE,
		berth_id            INTEGER REFERENCES berths(id),
		status              TEXT NOT NULL,
		rac_number          INTEGER,
		waiting_list_number INTEGER,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT tickets_pnr_key UNIQUE (pnr),
		CONSTRAINT tickets_placement_check CHECK (
			(status = 'CONFIRMED' AND rac_number IS NULL AND waiting_list_number IS NULL)
			OR (status = 'RAC' AND berth_id IS NOT NULL AND rac_number IS NOT NULL AND waiting_list_number IS NULL)
			OR (status = 'WAITING_LIST' AND berth_id IS NULL AND rac_number IS NULL AND waiting_list_number IS NOT NULL)
		)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets (status)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_berth_id ON tickets (berth_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dependents_passenger_id ON dependents (passenger_id)`,
	`CREATE TABLE IF NOT EXISTS ledger (
		id                     INTEGER PRIMARY KEY CHECK (id = 1),
		available_confirmed    INTEGER NOT NULL CHECK (available_confirmed >= 0),
		available_rac          INTEGER NOT NULL CHECK (available_rac >= 0),
		available_waiting      INTEGER NOT NULL CHECK (available_waiting >= 0),
		current_rac_number     INTEGER NOT NULL DEFAULT 0,
		current_waiting_number INTEGER NOT NULL DEFAULT 0,
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate 建立資料表，可重複執行
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, ddl := range tables {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Seed 寫入固定鋪位與唯一的計數列；已存在時不覆寫
func Seed(ctx context.Context, pool *pgxpool.Pool, caps model.Capacities) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, b := range model.BerthLayout(caps) {
		batch.Queue(`
			INSERT INTO berths (berth_number, berth_type)
			VALUES ($1, $2)
			ON CONFLICT (berth_number) DO NOTHING
		`, b.Number, b.Category)
	}

	l := model.NewLedger(caps)
	batch.Queue(`
		INSERT INTO ledger (id, available_confirmed, available_rac, available_waiting,
		                    current_rac_number, current_waiting_number)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, l.ConfirmedRemaining, l.RACRemaining, l.WaitingRemaining, l.CurrentRACNumber, l.CurrentWaitingNumber)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	return tx.Commit(ctx)
}

// Reset 清空所有訂位並還原初始狀態，供測試使用
func Reset(ctx context.Context, pool *pgxpool.Pool, caps model.Capacities) error {
	_, err := pool.Exec(ctx, `TRUNCATE tickets, dependents, passengers, berths, ledger RESTART IDENTITY CASCADE`)
	if err != nil {
		return err
	}
	return Seed(ctx, pool, caps)
}
