package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := LoadConfig()
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
		assert.Equal(t, QueueDriverRedis, cfg.Queue.Driver)
		assert.Equal(t, DefaultReservationConfig(), cfg.Reservation)
		assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", StorageDriverMemory)
		t.Setenv("BERTH_SETS", "2")
		t.Setenv("WAITING_LIST_SIZE", "0")
		t.Setenv("REDIS_ENABLED", "false")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://example.com")
		t.Setenv("DB_MAX_CONNS", "4")

		cfg := LoadConfig()
		assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
		assert.Equal(t, 2, cfg.Reservation.BerthSets)
		// 空字串視為未設定，但 "0" 是有效值
		assert.Equal(t, 0, cfg.Reservation.WaitingListSize)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, int32(4), cfg.Database.MaxConns)
	})

	t.Run("Malformed integer panics", func(t *testing.T) {
		t.Setenv("BERTH_SETS", "many")
		assert.Panics(t, func() { LoadConfig() })
	})
}

func TestLoadTestConfig(t *testing.T) {
	cfg := LoadTestConfig()
	assert.Equal(t, "5433", cfg.Database.Port)
	assert.Equal(t, "6380", cfg.Redis.Port)
	assert.Equal(t, QueueDriverMemory, cfg.Queue.Driver)
}
