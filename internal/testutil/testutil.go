// Package testutil connects integration tests to the test Postgres (port 5433)
// and Redis (port 6380) instances. Tests skip when either is unreachable.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"railway-reservation/config"
	"railway-reservation/internal/database"
	"railway-reservation/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 3 * time.Second

// Capacities 測試用的小型車廂：可以快速填滿每個等級
var Capacities = model.Capacities{BerthSets: 1, SideLowerBerths: 1, RACSlotsPerBerth: 2, WaitingListSize: 2}

func SetupDatabase() (*pgxpool.Pool, func(), error) {
	cfg := config.LoadTestConfig()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize test database: %v", err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to migrate test database: %v", err)
	}

	return pool, pool.Close, nil
}

// SetupRedisOnly 僅初始化 Redis，用於只依賴 Redis 的測試（如 queue、cache）
func SetupRedisOnly() (*redis.Client, func(), error) {
	cfg := config.LoadTestConfig()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	rdb, err := database.InitRedis(ctx, &cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %v", err)
	}
	cleanup := func() { rdb.Close() }
	return rdb, cleanup, nil
}

// RequireDatabase 取得已清空並重新 seed 的資料庫；無法連線時略過測試
func RequireDatabase(t *testing.T, caps model.Capacities) *pgxpool.Pool {
	t.Helper()
	pool, cleanup, err := SetupDatabase()
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(cleanup)

	if err := database.Reset(context.Background(), pool, caps); err != nil {
		t.Fatalf("Failed to reset test database: %v", err)
	}
	return pool
}

// RequireRedis 取得已清空的 Redis；無法連線時略過測試
func RequireRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb, cleanup, err := SetupRedisOnly()
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(cleanup)

	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to flush redis: %v", err)
	}
	return rdb
}
