/**
 * @description
 * This is the main entry point for the banking service. It loads configuration,
 * builds the logger, selects the storage backend, connects the optional Redis rate
 * limiter and RabbitMQ producer, wires the services and starts the HTTP server and
 * the ledger reconciliation job.
 *
 * @dependencies
 * - github.com/joho/godotenv: Local .env loading.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Rate limiter backend.
 * - internal/api, internal/app, internal/config, internal/store: The service itself.
 * - pkg/middleware, pkg/rabbitmq: Shared HTTP middleware and event publishing.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/transfa/banking-service/internal/api"
	"github.com/transfa/banking-service/internal/app"
	"github.com/transfa/banking-service/internal/config"
	"github.com/transfa/banking-service/internal/logger"
	"github.com/transfa/banking-service/internal/store"
	"github.com/transfa/banking-service/pkg/middleware"
	"github.com/transfa/banking-service/pkg/rabbitmq"
	"go.uber.org/zap"
)

const serviceName = "banking-service"

type repositories struct {
	clients      store.ClientRepository
	accounts     store.AccountRepository
	transactions store.TransactionRepository
}

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	zapLogger, _, err := logger.New(logger.Config{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Service:     serviceName,
	})
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting service", zap.String("port", cfg.ServerPort), zap.String("store_driver", cfg.StoreDriver))

	repos, closeStore, err := openStore(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("store initialization failed", zap.Error(err))
	}
	defer closeStore()

	limiter, closeRedis := openRateLimiter(cfg, zapLogger)
	defer closeRedis()

	var publisher rabbitmq.Publisher = &rabbitmq.EventProducerFallback{Logger: zapLogger}
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		zapLogger.Warn("RABBITMQ_URL not set; events will be dropped")
	} else if producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL, cfg.EventsExchange, zapLogger); err != nil {
		zapLogger.Warn("rabbitmq producer unavailable; using fallback", zap.Error(err))
	} else {
		defer producer.Close()
		publisher = producer
		zapLogger.Info("rabbitmq producer connected", zap.String("exchange", cfg.EventsExchange))
	}

	accountService := app.NewAccountService(repos.clients, repos.accounts, app.RandomNumberGenerator{}, publisher, zapLogger)
	transactionService := app.NewTransactionService(accountService, repos.transactions, publisher, zapLogger)
	clientService := app.NewClientService(repos.clients, publisher, zapLogger)

	authHandler, err := api.NewAuthHandler(api.AuthSettings{
		JWTSecret:         cfg.JWTSecret,
		TokenTTL:          cfg.JWTTTL(),
		AdminUsername:     cfg.AdminUsername,
		AdminPassword:     cfg.AdminPassword,
		AdminPasswordHash: cfg.AdminPasswordHash,
	}, zapLogger)
	if err != nil {
		// Tokens can still be minted out of band with the shared secret.
		zapLogger.Warn("login endpoint disabled", zap.Error(err))
		authHandler = nil
	}

	router := api.NewRouter(api.RouterConfig{
		Clients:            clientService,
		Accounts:           accountService,
		Transactions:       transactionService,
		Auth:               authHandler,
		JWTSecret:          cfg.JWTSecret,
		AllowedOrigins:     cfg.AllowedOrigins(),
		Limiter:            limiter,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             zapLogger,
	})

	reconciler := app.NewReconciler(repos.accounts, repos.transactions, publisher, zapLogger)
	scheduler := app.NewScheduler(reconciler, cfg.ReconcileSchedule, zapLogger)
	if err := scheduler.Start(); err != nil {
		zapLogger.Fatal("reconciliation scheduler failed to start", zap.Error(err), zap.String("schedule", cfg.ReconcileSchedule))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	zapLogger.Info("shutdown started")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}

	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		zapLogger.Warn("reconciliation still running at shutdown")
	}

	zapLogger.Info("shutdown complete")
}

func openStore(cfg config.Config, logger *zap.Logger) (repositories, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		mem := store.NewMemoryStore()
		return repositories{
			clients:      mem.Clients,
			accounts:     mem.Accounts,
			transactions: mem.Transactions,
		}, func() {}, nil
	}

	if cfg.RunMigrations {
		if err := store.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return repositories{}, nil, err
		}
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("unable to parse database URL: %w", err)
	}
	poolConfig.MaxConns = cfg.DatabaseMaxConns
	poolConfig.MinConns = cfg.DatabaseMinConns
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return repositories{}, nil, fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("database connected")

	return repositories{
		clients:      store.NewPostgresClientRepository(db, logger),
		accounts:     store.NewPostgresAccountRepository(db, logger),
		transactions: store.NewPostgresTransactionRepository(db, logger),
	}, db.Close, nil
}

// openRateLimiter connects to Redis when configured. Without it the API runs unthrottled.
func openRateLimiter(cfg config.Config, logger *zap.Logger) (middleware.RateLimiter, func()) {
	noop := func() {}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, noop
	}
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set; rate limiting disabled")
		return nil, noop
	}

	options, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis url parse failed; rate limiting disabled", zap.Error(err))
		return nil, noop
	}
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed; rate limiting disabled", zap.Error(err))
		_ = client.Close()
		return nil, noop
	}
	logger.Info("redis connected")

	return middleware.NewRedisRateLimiter(client, cfg.RedisRateLimitPrefix), func() { _ = client.Close() }
}
