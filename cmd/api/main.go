// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/logistics-be/internal/adapters/db"
	"github.com/ammerola/logistics-be/internal/adapters/memory"
	redis_a "github.com/ammerola/logistics-be/internal/adapters/redis_adapter"
	"github.com/ammerola/logistics-be/internal/core/ports"
	"github.com/ammerola/logistics-be/internal/core/services"
	"github.com/ammerola/logistics-be/internal/handlers"
	"github.com/ammerola/logistics-be/internal/handlers/middleware"
	"github.com/ammerola/logistics-be/internal/pkg/config"
	"github.com/ammerola/logistics-be/internal/pkg/logger"
	"github.com/ammerola/logistics-be/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting logistics request service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("locking", cfg.Locking.Driver),
	)

	ctx := context.Background()

	secrets, err := config.NewSecretsManager(ctx, cfg.Secrets, slogger)
	if err != nil {
		slogger.Error("failed to initialize secrets manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := config.ApplySecrets(ctx, cfg, secrets); err != nil {
		slogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	migrator       *db.Migrator
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	routes         handlers.Routes
}

func (d *dependencies) cleanup() {
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.migrator != nil {
		d.migrator.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	var (
		inventoryRepo ports.InventoryRepository
		requestRepo   ports.RequestRepository
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		logger.Info("connecting to database",
			slog.String("host", cfg.Database.Host),
			slog.String("database", cfg.Database.Name),
		)
		database, err := db.NewDatabase(ctx, databaseConfig(cfg), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		deps.database = database

		if cfg.Database.AutoMigrate {
			if err := runMigrations(ctx, cfg, logger); err != nil {
				deps.cleanup()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		migrator, err := db.NewMigrator(migrationConfig(cfg), logger)
		if err != nil {
			logger.Warn("schema version will not be reported", slog.String("error", err.Error()))
		} else {
			deps.migrator = migrator
		}

		inventoryRepo = db.NewInventoryRepository(database, logger)
		requestRepo = db.NewRequestRepository(database, logger)
	case config.StorageMemory:
		logger.Warn("using in-memory storage, ledgers are lost on restart")
		inventoryRepo = memory.NewInventoryRepository()
		requestRepo = memory.NewRequestRepository()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	needsRedis := cfg.Cache.Enabled || cfg.Locking.Driver == config.LockingRedis
	if needsRedis {
		logger.Info("connecting to Redis", slog.String("addr", cfg.GetRedisAddr()))

		redisClient := redis.NewClient(redisOptions(cfg))
		if err := redisClient.Ping(ctx).Err(); err != nil {
			deps.cleanup()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		deps.redisClient = redisClient
	}

	var cache ports.CacheRepository
	if cfg.Cache.Enabled {
		cache = redis_a.NewCache(deps.redisClient, cfg.Cache.TTL, logger)
	}

	var locker ports.RequestLocker
	switch cfg.Locking.Driver {
	case config.LockingRedis:
		locker = redis_a.NewRequestLocker(deps.redisClient, redis_a.LockerConfig{
			TTL:        cfg.Locking.TTL,
			RetryEvery: cfg.Locking.RetryEvery,
			MaxWait:    cfg.Locking.MaxWait,
		}, logger)
	default:
		locker = memory.NewLocker()
	}

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	notifier := workers.NewAsynqNotifier(deps.asynqClient, workers.NotifierConfig{
		Queue:    cfg.Notifications.Queue,
		MaxRetry: cfg.Notifications.MaxRetry,
		Timeout:  cfg.Notifications.Timeout,
	}, logger)

	requestService := services.NewRequestService(requestRepo, inventoryRepo, services.RequestServiceConfig{
		Locker:   locker,
		Notifier: notifier,
		Cache:    cache,
		CacheTTL: cfg.Cache.TTL,
	}, logger)
	inventoryService := services.NewInventoryService(inventoryRepo, requestRepo, cache, cfg.Cache.TTL, logger)

	// nil pointers must not reach the health handler as non-nil interfaces
	health := handlers.HealthDeps{
		Redis:  deps.redisClient,
		Queues: deps.asynqInspector,
	}
	if deps.database != nil {
		health.Database = deps.database
	}
	if deps.migrator != nil {
		health.Schema = deps.migrator
	}

	deps.routes = handlers.Routes{
		Health:    handlers.NewHealthHandler(health, cfg, logger),
		Inventory: handlers.NewInventoryHandler(inventoryService, logger),
		Requests:  handlers.NewRequestHandler(requestService, logger),
		Export:    handlers.NewExportHandler(inventoryService, logger),
		Dashboard: handlers.NewDashboardHandler(requestService, inventoryService, logger),
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	deps.routes.Register(mux)

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	}
	if cfg.Security.RateLimitRequests > 0 {
		mws = append(mws, middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration))
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		mws = append(mws, middleware.CORS(cfg.Security.AllowedOrigins))
	}
	if cfg.Security.SecureHeaders {
		mws = append(mws, middleware.SecureHeaders)
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        middleware.Chain(mux, mws...),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

func databaseConfig(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}
}

func redisOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:            cfg.GetRedisAddr(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	}
}

func migrationConfig(cfg *config.Config) *db.MigrationConfig {
	return &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")
	return db.RunMigrationsWithRetry(ctx, migrationConfig(cfg), logger, 3)
}
