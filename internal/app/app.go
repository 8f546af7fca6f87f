package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/customer-platform/customer-service/pkg/database"
	"github.com/customer-platform/customer-service/pkg/health"
	pkgkafka "github.com/customer-platform/customer-service/pkg/kafka"
	"github.com/customer-platform/customer-service/pkg/middleware"
	"github.com/customer-platform/customer-service/pkg/tracing"

	"github.com/customer-platform/customer-service/internal/auth"
	"github.com/customer-platform/customer-service/internal/config"
	"github.com/customer-platform/customer-service/internal/event"
	handler "github.com/customer-platform/customer-service/internal/handler/http"
	"github.com/customer-platform/customer-service/internal/repository/postgres"
	"github.com/customer-platform/customer-service/internal/service"
	"github.com/customer-platform/customer-service/internal/storage"
	"github.com/customer-platform/customer-service/internal/storage/memory"
	"github.com/customer-platform/customer-service/internal/storage/s3"
	"github.com/customer-platform/customer-service/migrations"
)

// App wires together all dependencies and runs the customer service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    "customer",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "customer")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize the Kafka producer when event publishing is enabled.
	var (
		producer       *pkgkafka.Producer
		eventPublisher event.Publisher
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		eventPublisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("event publishing disabled")
	}

	// Select the object store backend for profile images.
	var store storage.ObjectStore
	var storePing func(ctx context.Context) error
	switch cfg.StorageBackend {
	case "s3":
		s3Store, err := s3.New(ctx, s3.Config{
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			BaseEndpoint: cfg.S3Endpoint,
			UsePathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init object store: %w", err)
		}
		store = s3Store
		storePing = func(ctx context.Context) error {
			return s3Store.Ping(ctx, cfg.ImageBucket)
		}
		logger.Info("object store initialized",
			slog.String("endpoint", cfg.S3Endpoint),
			slog.String("bucket", cfg.ImageBucket),
		)
	default:
		store = memory.New()
		logger.Warn("using in-memory object store, images are lost on restart")
	}

	// Build the dependency graph.
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	hasher := auth.NewBcryptHasher(auth.BcryptCost)
	repo := postgres.NewCustomerRepository(pool)
	customerService := service.NewCustomerService(repo, hasher, eventPublisher, logger)
	imageService := service.NewProfileImageService(repo, store, cfg.ImageBucket, logger)

	// Health checks. Postgres is the only critical dependency; the service
	// can serve reads and writes with Kafka or the object store down.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}
	if storePing != nil {
		healthHandler.RegisterNonCritical("object_store", storePing)
	}

	// HTTP router.
	router := handler.NewRouter(customerService, imageService, tokens, healthHandler, logger,
		middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: drain in-flight HTTP
// requests first, flush pending spans, then close the producer and the pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
