// Command api runs the multisite portal HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multisite_portal_backend/internal/auth"
	"multisite_portal_backend/internal/email"
	"multisite_portal_backend/internal/events"
	apphttp "multisite_portal_backend/internal/http"
	"multisite_portal_backend/internal/http/router"
	"multisite_portal_backend/internal/membership"
	"multisite_portal_backend/internal/notification"
	"multisite_portal_backend/internal/sites"
	"multisite_portal_backend/platform/config"
	"multisite_portal_backend/platform/db"
	"multisite_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Env)
	log.Info("starting api", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	migrationsDir := envOr("MIGRATIONS_DIR", "migrations")
	if err := withRetry(ctx, 5, 2*time.Second, "run migrations", log, func() error {
		return db.RunMigrations(ctx, cfg, migrationsDir)
	}); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, 5, 2*time.Second, "connect database", log, func() error {
		var connErr error
		pool, connErr = db.NewPool(ctx, cfg)
		return connErr
	}); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	redisClient := connectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	bus := events.NewInMemoryBus(log)

	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		smtpSender, err := email.NewSMTPSender(cfg)
		if err != nil {
			return fmt.Errorf("smtp sender: %w", err)
		}
		sender = smtpSender
	}

	sitesModule := sites.NewModule(pool, log)
	membershipModule := membership.NewModule(pool, redisClient, cfg.GetAttributeCacheTTL(), log)
	authModule := auth.NewModule(
		pool,
		cfg,
		membershipModule.Recorder(),
		membershipModule.Decider(),
		membershipModule,
		bus,
		log,
	)

	notification.NewModule(sender, sitesModule.Service(), log).RegisterHandlers(bus)

	app := &apphttp.App{
		Config:       cfg,
		Logger:       log,
		Health:       db.NewPoolAdapter(pool),
		EventBus:     bus,
		SiteResolver: sitesModule.Resolver(),
		Modules:      []apphttp.Module{sitesModule, authModule},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// attribute store then runs uncached.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.IsRedisEnabled() {
		return nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Warn("invalid REDIS_URL, running without attribute cache", "error", err.Error())
		return nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, running without attribute cache", "error", err.Error())
		_ = client.Close()
		return nil
	}

	log.Info("attribute cache enabled", "ttl", cfg.GetAttributeCacheTTL().String())
	return client
}

func withRetry(ctx context.Context, attempts int, delay time.Duration, op string, log *logger.Logger, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Warn("retrying", "op", op, "attempt", attempt, "error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
