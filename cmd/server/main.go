// Package main is the entry point for the social feed service.
//
// The service aggregates activity events from the learning network into a
// personalized feed: producers push events over the ingest API, viewers pull
// the assembled feed, grouped, sorted and scored, over the read API.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: feed model and algorithms, no external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: persistence, change fan-out
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pulsepath/social-feed-service/config"
	"github.com/pulsepath/social-feed-service/internal/application/command"
	"github.com/pulsepath/social-feed-service/internal/application/query"
	"github.com/pulsepath/social-feed-service/internal/domain/feed"
	"github.com/pulsepath/social-feed-service/internal/infrastructure/messaging"
	"github.com/pulsepath/social-feed-service/internal/infrastructure/persistence/memory"
	"github.com/pulsepath/social-feed-service/internal/infrastructure/persistence/postgres"
	httpserver "github.com/pulsepath/social-feed-service/internal/interface/http"
	"github.com/pulsepath/social-feed-service/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting social feed service",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT STORE
	// ─────────────────────────────────────────────────────────────────────────
	var (
		store   feed.Store
		pingers []httpserver.Pinger
		keyRepo httpserver.KeyHashLookup
	)

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		if cfg.Database.AutoMigrate {
			log.Info("running database migrations...")
			migrator := postgres.NewMigrator(dbConn)
			if err := migrator.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		store = postgres.NewEventStore(dbConn)
		keyRepo = postgres.NewProducerKeyRepository(dbConn)
		pingers = append(pingers, dbConn)
		log.Info("database connection established")
	} else {
		log.Info("no DATABASE_URL set, using in-memory event store")
		store = memory.NewEventStore()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. CHANGE FAN-OUT BUS
	// ─────────────────────────────────────────────────────────────────────────
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{}))

	var bus messaging.Bus
	if cfg.Redis.Enabled {
		log.Info("connecting to Redis...")
		client, err := newRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to configure redis: %w", err)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}

		redisBus, err := messaging.NewRedisBus(messaging.RedisBusConfig{
			Client:  client,
			Channel: cfg.Redis.Channel,
			Logger:  slogger,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis bus: %w", err)
		}
		defer func() {
			log.Info("closing redis bus...")
			_ = redisBus.Close()
			_ = client.Close()
		}()

		bus = redisBus
		pingers = append(pingers, redisPinger{client: client})
		log.Info("Redis change bus established", logger.String("channel", cfg.Redis.Channel))
	} else {
		inmem := messaging.NewInMemoryBus(slogger)
		defer func() { _ = inmem.Close() }()
		bus = inmem
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	getFeed := query.NewGetFeedHandler(store, log)
	publishEvent := command.NewPublishEventHandler(store, bus, log)
	markRead := command.NewMarkEventReadHandler(store, bus, log)
	markAllRead := command.NewMarkAllReadHandler(store, bus, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. PRODUCER AUTHENTICATION
	// ─────────────────────────────────────────────────────────────────────────
	var producerAuth *httpserver.ProducerAuth
	switch {
	case len(cfg.Feed.ProducerKeys) > 0:
		producerAuth = httpserver.NewProducerAuth(httpserver.StaticKeys(cfg.Feed.ProducerKeys))
		log.Info("producer auth enabled from config", logger.Int("keys", len(cfg.Feed.ProducerKeys)))
	case keyRepo != nil:
		producerAuth = httpserver.NewProducerAuth(keyRepo)
		log.Info("producer auth enabled from database")
	default:
		log.Warn("producer auth disabled, ingest endpoint is open")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout
	serverCfg.IdleTimeout = cfg.Server.IdleTimeout
	serverCfg.RateLimitPerMinute = cfg.Server.RateLimitPerMinute
	serverCfg.EnableCORS = cfg.Server.EnableCORS
	serverCfg.AllowedOrigins = cfg.Server.AllowedOrigins

	srv := httpserver.NewServer(serverCfg, httpserver.Dependencies{
		GetFeedHandler:       getFeed,
		PublishEventHandler:  publishEvent,
		MarkEventReadHandler: markRead,
		MarkAllReadHandler:   markAllRead,
		ProducerAuth:         producerAuth,
		FeedHorizon:          cfg.Feed.Horizon,
		FeedGroupBucket:      cfg.Feed.GroupBucket,
		Pingers:              pingers,
		Logger:               log,
	})

	errCh := srv.StartAsync()
	log.Info("HTTP server listening", logger.String("address", srv.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

// newRedisClient builds a Redis client from either a URL or individual
// settings.
func newRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}

// redisPinger adapts a Redis client to the readiness probe.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
