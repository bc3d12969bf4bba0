// Package app wires configuration, storage clients, and the sync
// orchestrator into a runnable worker.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/gryroach/theater-search-etl/internal/config"
	"github.com/gryroach/theater-search-etl/internal/database"
	"github.com/gryroach/theater-search-etl/internal/elasticsearch"
	"github.com/gryroach/theater-search-etl/internal/logger"
	"github.com/gryroach/theater-search-etl/internal/pipeline"
	"github.com/gryroach/theater-search-etl/internal/retry"
	"github.com/gryroach/theater-search-etl/internal/state"
)

const redisPingTimeout = 5 * time.Second

// App holds the worker's dependencies for the lifetime of the process.
type App struct {
	cfg          *config.Config
	log          logger.Logger
	db           *sqlx.DB
	redisClient  *redis.Client
	orchestrator *pipeline.Orchestrator
	rebuild      bool
}

// Options configures App construction.
type Options struct {
	ConfigPath string
	Rebuild    bool
	Version    string
}

// New loads configuration and initializes every dependency. A returned App
// must be closed.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	log = log.With(
		logger.String("service", "theater-search-etl"),
		logger.String("version", opts.Version),
	)

	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("connect to Postgres: %w", err)
	}
	log.Info("Postgres connection established", logger.String("host", cfg.Postgres.Host))

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		URL:        cfg.Elasticsearch.URL,
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
	})
	if err != nil {
		db.Close()
		_ = log.Sync()
		return nil, fmt.Errorf("connect to Elasticsearch: %w", err)
	}
	log.Info("Elasticsearch connection established", logger.String("url", cfg.Elasticsearch.URL))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		db.Close()
		_ = log.Sync()
		return nil, fmt.Errorf("connect to Redis: %w", pingErr)
	}
	log.Info("Redis connection established", logger.String("address", cfg.Redis.Address))

	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.Backoff.MaxAttempts
	policy.BaseDelay = cfg.Backoff.BaseDelay
	policy.MaxDelay = cfg.Backoff.MaxDelay
	policy.MaxElapsed = cfg.Backoff.MaxElapsed

	var storage state.Storage
	switch cfg.State.Backend {
	case "file":
		storage = state.NewFileStorage(cfg.State.FilePath)
	default:
		storage = state.NewRedisStorage(redisClient)
	}

	orchestrator := pipeline.New(
		database.NewExtractor(db, cfg.Sync.BatchSize),
		database.NewFanout(db, cfg.Sync.BatchSize),
		database.NewAssembler(db),
		elasticsearch.NewWriter(esClient, policy, log),
		state.NewWatermarks(storage, log),
		state.NewRunLock(redisClient, cfg.Sync.LockName, cfg.Sync.LockTTL),
		pipeline.Config{
			MinInterval: cfg.Sync.MinInterval,
			MaxInterval: cfg.Sync.MaxInterval,
		},
		log,
	)

	return &App{
		cfg:          cfg,
		log:          log,
		db:           db,
		redisClient:  redisClient,
		orchestrator: orchestrator,
		rebuild:      opts.Rebuild,
	}, nil
}

// Run executes the worker until SIGINT/SIGTERM or context cancellation. On
// a first run (no stored watermarks) or an explicit rebuild request, the
// indices are dropped and recreated before the loop starts.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.rebuild || a.orchestrator.NeedsRebuild(ctx) {
		a.log.Info("performing full rebuild")
		if err := a.orchestrator.Rebuild(ctx); err != nil {
			return fmt.Errorf("rebuild indices: %w", err)
		}
	}

	a.orchestrator.Run(ctx)
	return nil
}

// Logger returns the application logger.
func (a *App) Logger() logger.Logger {
	return a.log
}

// Close releases connections and flushes the logger.
func (a *App) Close() error {
	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = err
	}
	if err := a.redisClient.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	_ = a.log.Sync()
	return firstErr
}
