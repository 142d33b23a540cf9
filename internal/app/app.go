// Package app wires configuration, storage, services, and the HTTP server
// into a runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/quillhq/quill/internal/auth"
	"github.com/quillhq/quill/internal/config"
	"github.com/quillhq/quill/internal/event"
	handler "github.com/quillhq/quill/internal/handler/http"
	"github.com/quillhq/quill/internal/indexer"
	"github.com/quillhq/quill/internal/repository/postgres"
	"github.com/quillhq/quill/internal/service"
	"github.com/quillhq/quill/internal/session"
	"github.com/quillhq/quill/migrations"
	"github.com/quillhq/quill/pkg/database"
	"github.com/quillhq/quill/pkg/health"
	"github.com/quillhq/quill/pkg/kafka"
	"github.com/quillhq/quill/pkg/logger"
	"github.com/quillhq/quill/pkg/tracing"
)

// App owns every long-lived resource of the service.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
	kafka  *kafka.Producer
	server *http.Server

	sweeperCancel  context.CancelFunc
	tracerShutdown func(context.Context) error
}

// New builds the application: connects storage, runs migrations, and wires
// services behind the router. Redis and Kafka are optional; the service runs
// degraded without them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.New(cfg.ServiceName, cfg.LogLevel)

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.TracingEndpoint,
		SampleRate:  cfg.TracingSample,
		Enabled:     cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		DSN:      cfg.PostgresDSN(),
		MaxConns: cfg.PostgresMaxConns,
		MinConns: cfg.PostgresMinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.Files, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if err := database.RegisterPoolMetrics(pool, cfg.PostgresDB); err != nil {
		log.Warn("pool metrics registration failed", "error", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn("redis unavailable, sweeping without lease", "error", err)
			redisClient = nil
		}
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.KafkaBrokers}, log)
		if err := producer.Ping(ctx); err != nil {
			log.Warn("kafka unavailable, events disabled", "error", err)
			producer.Close()
			producer = nil
		}
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)

	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	folderRepo := postgres.NewFolderRepository(pool)

	var publisher event.Publisher
	if producer != nil {
		publisher = producer
	}
	events := event.NewProducer(publisher, log)
	index := indexer.New(cfg.IndexerURL, log)

	authSvc := service.NewAuthService(userRepo, sessionRepo, tokens, events, log)
	docSvc := service.NewDocumentService(documentRepo, folderRepo, events, index, log)
	folderSvc := service.NewFolderService(folderRepo, log)

	health.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		health.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if producer != nil {
		health.Register("kafka", producer.Ping)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authSvc, log),
		Documents: handler.NewDocumentHandler(docSvc, log),
		Folders:   handler.NewFolderHandler(folderSvc, log),
		Resolver:  authSvc,
		Service:   cfg.ServiceName,
		Log:       log,
	})

	app := &App{
		cfg:            cfg,
		log:            log,
		pool:           pool,
		redis:          redisClient,
		kafka:          producer,
		tracerShutdown: tracerShutdown,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	sweeperCtx, cancel := context.WithCancel(context.Background())
	app.sweeperCancel = cancel
	sweeper := session.NewSweeper(sessionRepo, redisClient, cfg.SessionSweepInterval, log)
	go sweeper.Run(sweeperCtx)

	return app, nil
}

// Run serves HTTP until the listener fails or Shutdown is called.
func (a *App) Run() error {
	a.log.Info("server starting", "port", a.cfg.HTTPPort, "environment", a.cfg.Environment)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the server and releases resources in reverse order of
// acquisition.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("server shutting down")

	a.sweeperCancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka close: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	a.pool.Close()
	if err := a.tracerShutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}

	return errors.Join(errs...)
}
