package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"railway-reservation/config"
	"railway-reservation/internal/cache"
	"railway-reservation/internal/database"
	"railway-reservation/internal/handler"
	"railway-reservation/internal/model"
	"railway-reservation/internal/queue"
	"railway-reservation/internal/repository"
	"railway-reservation/internal/repository/memory"
	"railway-reservation/internal/service"
	"railway-reservation/internal/worker"
	"railway-reservation/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.SetLevel(cfg.LogLevel)
	defer logger.Sync()
	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	caps := model.Capacities{
		BerthSets:        cfg.Reservation.BerthSets,
		SideLowerBerths:  cfg.Reservation.SideLowerBerths,
		RACSlotsPerBerth: cfg.Reservation.RACSlotsPerBerth,
		WaitingListSize:  cfg.Reservation.WaitingListSize,
	}

	checks := map[string]handler.HealthCheck{}

	db, repos, closeStore, err := openStore(ctx, cfg, caps, checks)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var ledgerCache cache.LedgerCache
	if rdb != nil {
		ledgerCache = cache.NewRedisLedgerCache(rdb)
		// 上一次啟動留下的快照可能來自不同的儲存狀態，啟動時一律清除
		if err := ledgerCache.Invalidate(ctx); err != nil {
			log.Warn("Failed to invalidate ledger cache", zap.Error(err))
		}
	}

	ladderQueue, err := openQueue(ctx, cfg, rdb)
	if err != nil {
		log.Fatal("Failed to initialize ladder queue", zap.String("driver", cfg.Queue.Driver), zap.Error(err))
	}

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	journal := worker.NewLadderWorker(worker.NewLogJournal(), ladderQueue)
	if err := journal.Start(workerCtx); err != nil {
		log.Fatal("Failed to start ladder worker", zap.Error(err))
	}

	svc := service.NewReservationService(db, repos, caps, ledgerCache, ladderQueue)

	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(svc, cfg.Server.AllowedOrigins, checks)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("queue", cfg.Queue.Driver),
			zap.Int("confirmed_capacity", caps.Confirmed()),
			zap.Int("rac_capacity", caps.RAC()),
			zap.Int("waiting_capacity", caps.Waiting()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// 先停 HTTP，再停 worker，避免最後的事件沒人消費
	cancelWorker()
	journal.Wait()

	log.Info("Server stopped gracefully")
}

func openStore(ctx context.Context, cfg *config.Config, caps model.Capacities, checks map[string]handler.HealthCheck) (repository.TxBeginner, service.Repositories, func(), error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		mem := memory.NewDB(caps)
		repos := service.Repositories{
			Berths:     memory.NewBerthRepository(mem),
			Ledger:     memory.NewLedgerRepository(mem),
			Passengers: memory.NewPassengerRepository(mem),
			Tickets:    memory.NewTicketRepository(mem),
		}
		return mem, repos, func() {}, nil
	}

	pool, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		return nil, service.Repositories{}, nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, service.Repositories{}, nil, err
	}
	if err := database.Seed(ctx, pool, caps); err != nil {
		pool.Close()
		return nil, service.Repositories{}, nil, err
	}
	checks["database"] = pool.Ping

	repos := service.Repositories{
		Berths:     repository.NewBerthRepository(pool),
		Ledger:     repository.NewLedgerRepository(pool),
		Passengers: repository.NewPassengerRepository(pool),
		Tickets:    repository.NewTicketRepository(pool),
	}
	return pool, repos, pool.Close, nil
}

func openQueue(ctx context.Context, cfg *config.Config, rdb *redis.Client) (queue.LadderQueue, error) {
	if cfg.Queue.Driver == config.QueueDriverRedis && rdb != nil {
		return queue.NewRedisStreamLadderQueue(ctx, rdb, "", nil)
	}
	return queue.NewLadderQueue(cfg.Queue.BufferSize), nil
}
