package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/auth"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/cache"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/config"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/event"
	handler "github.com/SHANTO612/poshur-sheba-hub-sub000/internal/handler/http"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository/postgres"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/service"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage/httpstore"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage/memory"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/migrations"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/database"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/health"
	pkgkafka "github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/kafka"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/middleware"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/tracing"
)

// App wires together all dependencies and runs the marketplace service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "marketplace",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	prometheus.MustRegister(database.NewPoolStatsCollector(pool, "marketplace"))

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Redis for the provider stats cache.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("host", cfg.RedisHost))

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Asset store: remote over HTTP when configured, in-memory otherwise.
	var assets storage.AssetStore
	if cfg.AssetStoreURL != "" {
		assets = httpstore.New(httpstore.DefaultConfig(cfg.AssetStoreURL), logger)
	} else {
		logger.Warn("no asset store configured, using in-memory store")
		assets = memory.New(fmt.Sprintf("http://localhost:%d", cfg.HTTPPort))
	}

	// Build the dependency graph.
	accountRepo := postgres.NewAccountRepository(pool)
	ratingRepo := postgres.NewRatingRepository(pool)
	listingRepo := postgres.NewListingRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	appointmentRepo := postgres.NewAppointmentRepository(pool)

	eventProducer := event.NewProducer(producer, logger)
	statsCache := cache.NewStatsCache(redisClient, time.Duration(cfg.StatsCacheTTLSecs)*time.Second)

	ratingService := service.NewRatingService(ratingRepo, accountRepo, eventProducer, logger)
	deleters := []service.CascadeDeleter{
		service.NewListingCascadeDeleter(listingRepo, assets, logger),
		service.NewProductCascadeDeleter(productRepo, assets, logger),
		service.NewRatingCascadeDeleter(ratingRepo, ratingService, logger),
	}
	accountService := service.NewAccountService(accountRepo, deleters, eventProducer, logger)
	listingService := service.NewListingService(listingRepo, accountRepo, assets, eventProducer, logger)
	productService := service.NewProductService(productRepo, accountRepo, assets, eventProducer, logger)
	appointmentService := service.NewAppointmentService(appointmentRepo, accountRepo, statsCache, eventProducer, logger)

	tokenValidator := auth.NewValidator(cfg.JWTSecret).TokenValidator()

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	}

	router := handler.NewRouter(handler.Services{
		Accounts:     accountService,
		Ratings:      ratingService,
		Listings:     listingService,
		Products:     productService,
		Appointments: appointmentService,
	}, handler.RouterConfig{
		HealthHandler:  healthHandler,
		Logger:         logger,
		TokenValidator: tokenValidator,
		CORS:           corsCfg,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
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
		redisClient:    redisClient,
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

// Shutdown gracefully stops all components in dependency order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client
// 5. PostgreSQL pool
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

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis client close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
