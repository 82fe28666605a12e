// Package main is the entry point for the ledger API server.
// It wires configuration, storage, cache, event publishing and metrics
// into the ledger engine and serves it over HTTP until signalled.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerpay/internal/config"
	"ledgerpay/internal/handlers"
	"ledgerpay/internal/logger"
	"ledgerpay/internal/metrics"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/repositories/cache"
	"ledgerpay/internal/routes"
	"ledgerpay/internal/services/notification"
	"ledgerpay/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "no .env file loaded: %v\n", err)
	}
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.Env == "production")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	db, err := repositories.Connect(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database connection", zap.Error(err))
		}
	}()
	if err := repositories.Migrate(db); err != nil {
		return err
	}
	log.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	rdb := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cacheService := cache.NewCacheService(rdb, cfg.Redis.CacheTTL)
	defer func() {
		if err := cacheService.Close(); err != nil {
			log.Warn("failed to close redis connection", zap.Error(err))
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	var walletCache wallet.WalletCache = cacheService
	if err := cache.Ping(pingCtx, rdb); err != nil {
		// Reads fall back to the database; the ledger itself never needs Redis.
		log.Warn("redis unavailable, wallet cache disabled", zap.Error(err))
		walletCache = nil
	}
	cancel()

	publisher, err := newPublisher(cfg.Events, rdb, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := repositories.NewStore(db, repositories.StoreOptions{LockTimeout: cfg.Ledger.LockTimeout})
	walletService := wallet.NewService(store,
		wallet.Config{MaxReferenceAttempts: cfg.Ledger.MaxReferenceAttempts},
		wallet.Dependencies{
			Cache:     walletCache,
			Publisher: publisher,
			Metrics:   metrics.NewCollector(registry),
			Logger:    log,
		})

	health := handlers.NewHealthHandler(version).
		WithCheck("database", handlers.DatabaseCheck(db)).
		WithCheck("redis", cacheService.HealthCheck).
		WithPoolStats(cacheService.GetStats)

	app := newApp(cfg, log)
	routes.SetupRoutes(app, routes.Dependencies{
		WalletService: walletService,
		Users:         store.Users(),
		Health:        health,
		JWTSecret:     cfg.JWTSecret,
		Gatherer:      registry,
		Logger:        log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("version", version))
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	g.Go(func() error {
		reportPoolStats(ctx, db, log)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newApp(cfg config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ledgerpay",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Money-moving routes are rate limited per client.
	app.Use("/api/wallet", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodGet
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Info("rate limit reached", zap.String("ip", c.IP()), zap.String("path", c.Path()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))
	return app
}

func newPublisher(cfg config.EventsConfig, rdb *redis.Client, log *zap.Logger) (notification.Publisher, error) {
	switch cfg.Sink {
	case "kafka":
		log.Info("publishing transaction events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.Topic))
		return notification.NewKafkaPublisher(notification.NewKafkaWriter(cfg.KafkaBrokers, cfg.Topic)), nil
	case "redis":
		log.Info("publishing transaction events to redis", zap.String("channel", notification.TransactionEventsChannel))
		return notification.NewRedisPublisher(rdb, notification.TransactionEventsChannel), nil
	case "log":
		return notification.NewLogPublisher(log), nil
	case "", "none":
		return notification.NoopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown EVENTS_SINK %q", cfg.Sink)
	}
}

// reportPoolStats logs connection pool usage once a minute until ctx ends.
func reportPoolStats(ctx context.Context, db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("pool stats unavailable", zap.Error(err))
		return
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := sqlDB.Stats()
			log.Debug("db pool stats",
				zap.Int("open", stats.OpenConnections),
				zap.Int("idle", stats.Idle),
				zap.Int("in_use", stats.InUse),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration))
		}
	}
}
