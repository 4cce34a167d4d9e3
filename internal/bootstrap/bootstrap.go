package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kmorita/repair-guide-engine/internal/config"
	"github.com/kmorita/repair-guide-engine/internal/core/usecase"
	"github.com/kmorita/repair-guide-engine/internal/infrastructure/cache"
	"github.com/kmorita/repair-guide-engine/internal/infrastructure/catalog/ifixit"
	"github.com/kmorita/repair-guide-engine/internal/infrastructure/catalog/offline"
	"github.com/kmorita/repair-guide-engine/internal/infrastructure/queue/nats"
	"github.com/kmorita/repair-guide-engine/internal/infrastructure/ratelimit"
	"github.com/kmorita/repair-guide-engine/internal/infrastructure/repository/postgres"
	"github.com/kmorita/repair-guide-engine/internal/infrastructure/resilience"
	"github.com/kmorita/repair-guide-engine/internal/observability/logging"
)

// App wires the engine's components. NewAPI and NewWorker build only what
// their binary needs; the API never opens Postgres and the worker never
// talks to the external catalog.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Search   *usecase.SearchOrchestrator
	Queue    *nats.Queue
	Events   *postgres.SearchEventRepository
	Recorder *usecase.SearchEventRecorder

	closeFn func()
}

func NewAPI(_ context.Context, cfg config.Config) (*App, error) {
	logger := logging.New("api", logging.Options{Level: cfg.LogLevel})
	slog.SetDefault(logger)

	store := cache.NewStore(cfg.RedisURL, logger)
	limiter := ratelimit.NewSlidingWindow(
		cfg.RateLimitMaxCalls,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
	)

	catalog := ifixit.New(
		cfg.IFixitBaseURL,
		cfg.IFixitAPIKey,
		resilience.NewExecutor(resilience.CatalogConfig()),
		logger,
	)

	offlineCatalog, err := offline.New(cfg.OfflineOverridePath, logger)
	if err != nil {
		return nil, fmt.Errorf("load offline catalog: %w", err)
	}
	logger.Info("offline catalog loaded", "guides", offlineCatalog.Size())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.EventsConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	orchestrator := usecase.NewSearchOrchestrator(
		catalog,
		offlineCatalog,
		store,
		limiter,
		logger,
		usecase.Options{
			FuzzyThreshold: cfg.SearchFuzzyThreshold,
			CacheTTL:       time.Duration(cfg.CacheTTLSeconds) * time.Second,
			TrendingTTL:    time.Duration(cfg.TrendingTTLSeconds) * time.Second,
		},
	)

	return &App{
		Config: cfg,
		Logger: logger,
		Search: orchestrator,
		Queue:  queue,
		closeFn: func() {
			queue.Close()
			_ = store.Close()
		},
	}, nil
}

func NewWorker(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.New("worker", logging.Options{Level: cfg.LogLevel})
	slog.SetDefault(logger)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	events := postgres.NewSearchEventRepository(db)
	if err := events.EnsureSchema(ctx); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.EventsConfig()),
	})
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Queue:    queue,
		Events:   events,
		Recorder: usecase.NewSearchEventRecorder(events, logger),
		closeFn: func() {
			queue.Close()
			closeDB(db)
		},
	}, nil
}

func closeDB(db *sql.DB) {
	_ = db.Close()
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
