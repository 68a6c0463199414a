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

	"github.com/amritage/age-fabric-shop-admin-panel/internal/catalog"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/config"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/event"
	handler "github.com/amritage/age-fabric-shop-admin-panel/internal/handler/http"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/repository"
	memrepo "github.com/amritage/age-fabric-shop-admin-panel/internal/repository/memory"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/repository/postgres"
	redisrepo "github.com/amritage/age-fabric-shop-admin-panel/internal/repository/redis"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/service"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/storage"
	memstorage "github.com/amritage/age-fabric-shop-admin-panel/internal/storage/memory"
	miniostorage "github.com/amritage/age-fabric-shop-admin-panel/internal/storage/minio"
	"github.com/amritage/age-fabric-shop-admin-panel/migrations"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/database"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/health"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httpclient"
	pkgkafka "github.com/amritage/age-fabric-shop-admin-panel/pkg/kafka"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/middleware"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/tracing"
)

// activityRetention caps the in-memory activity log when auditing is off.
const activityRetention = 1000

// App wires together all dependencies and runs the catalog admin service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.TracingConfig())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	// Redis holds drafts, handoffs and wizard sessions.
	redisCfg := cfg.RedisConfig()
	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	logger.Info("connected to Redis",
		slog.String("addr", redisCfg.Addr()),
		slog.Int("db", cfg.RedisDB),
	)
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	activity, err := a.initActivity(ctx, healthHandler)
	if err != nil {
		a.close()
		return nil, err
	}

	events := a.initEvents(ctx, healthHandler)

	media, err := a.initMedia(ctx, healthHandler)
	if err != nil {
		a.close()
		return nil, err
	}

	// Catalog backend client behind a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.BackendTimeout
	httpCfg.MaxRetries = cfg.BackendMaxRetries
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig(catalog.ServiceName),
		logger,
	)
	backend, err := catalog.NewClient(breaker, cfg.APIBaseURL, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	healthHandler.RegisterOptional(catalog.ServiceName, backend.Ping)
	options := catalog.NewOptionProvider(backend, cfg.OptionFetchConcurrency, logger)

	// Build the dependency graph.
	assembler, err := service.NewAssembler(media)
	if err != nil {
		a.close()
		return nil, err
	}
	filterService := service.NewFilterService(options, logger)
	intakeService := service.NewIntakeService(service.IntakeDeps{
		Sessions:    redisrepo.NewSessionRepository(rdb, cfg.DraftTTL),
		Drafts:      service.NewDraftStore(redisrepo.NewDraftRepository(rdb, cfg.DraftTTL, cfg.HandoffTTL)),
		Filters:     filterService,
		Backend:     backend,
		Assembler:   assembler,
		Media:       media,
		Events:      events,
		Activity:    activity,
		MaxFileSize: cfg.MediaMaxFileSize,
		Logger:      logger,
	})
	productService := service.NewProductService(backend, options, events, activity, logger)

	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET is not set, drafts are keyed by token digest")
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowCredentials = true
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(filterService, intakeService, productService, healthHandler, logger, handler.RouterConfig{
		ServiceName:     config.ServiceName,
		AdminCookieName: cfg.AdminCookieName,
		AdminJWTSecret:  cfg.AdminJWTSecret,
		CORS:            corsCfg,
		PprofCIDRs:      cfg.PprofAllowedCIDRs,
		MaxUploadSize:   cfg.MediaMaxFileSize,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
	})

	// Uploads need longer than the default 15s budget.
	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// initActivity returns the Postgres audit log when enabled and a bounded
// in-memory log otherwise.
func (a *App) initActivity(ctx context.Context, healthHandler *health.Handler) (repository.ActivityRepository, error) {
	if !a.cfg.AuditEnabled {
		a.logger.Info("audit log disabled, keeping activity in memory")
		return memrepo.NewActivityRepository(activityRetention), nil
	}

	pgCfg := a.cfg.PostgresConfig()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", a.cfg.PostgresHost),
		slog.Int("port", a.cfg.PostgresPort),
		slog.String("database", a.cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
		a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	a.logger.Info("database migrations completed")

	if a.cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(a.cfg.SlowQueryThreshold(), a.logger)
	}

	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	return postgres.NewActivityRepository(pool), nil
}

// initEvents returns the Kafka publisher, or one that discards events when
// EVENTS_ENABLED is false. An unreachable broker only degrades readiness.
func (a *App) initEvents(ctx context.Context, healthHandler *health.Handler) service.EventPublisher {
	if !a.cfg.EventsEnabled {
		a.logger.Info("events disabled")
		return event.Nop{}
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	a.producer = producer
	if err := producer.Ping(ctx); err != nil {
		a.logger.Warn("kafka producer ping failed, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
	}
	healthHandler.RegisterOptional("kafka", producer.Ping)
	return event.NewProducer(producer, a.logger)
}

// initMedia returns the staging store for uploads.
func (a *App) initMedia(ctx context.Context, healthHandler *health.Handler) (storage.Storage, error) {
	if a.cfg.MediaBackend != config.MediaBackendMinio {
		return memstorage.New(), nil
	}

	store, err := miniostorage.New(miniostorage.Config{
		Endpoint:  a.cfg.MinioEndpoint,
		AccessKey: a.cfg.MinioAccessKey,
		SecretKey: a.cfg.MinioSecretKey,
		Bucket:    a.cfg.MinioBucket,
		UseSSL:    a.cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure media bucket: %w", err)
	}
	a.logger.Info("media staging on MinIO",
		slog.String("endpoint", a.cfg.MinioEndpoint),
		slog.String("bucket", a.cfg.MinioBucket),
	)
	healthHandler.Register("minio", store.Ping)
	return store, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully stops all components: the HTTP server first so
// in-flight submissions finish, then the tracer and the connections.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	errs = append(errs, a.close()...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// close releases the producer and connections opened so far.
func (a *App) close() []error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errs
}
