// Package main is the entry point for the Expense Tracker API server.
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
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/expense-tracker/backend/config"
	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/infra/cache"
	"github.com/expense-tracker/backend/internal/infra/db"
	"github.com/expense-tracker/backend/internal/infra/dependency"
	"github.com/expense-tracker/backend/internal/infra/metrics"
	"github.com/expense-tracker/backend/internal/integration/adapters"
	"github.com/expense-tracker/backend/internal/integration/email"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	slog.Info("Starting Expense Tracker API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database_driver", cfg.Database.Driver,
	)

	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		fatal("Failed to connect to database", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.AutoMigrate(); err != nil {
		fatal("Failed to run database migrations", err)
	}
	slog.Info("Database migrations completed successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(ctx, &cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	gateway, err := adapters.NewGeminiGateway(ctx, cfg.AI, m)
	if err != nil {
		fatal("Failed to create AI gateway", err)
	}
	defer gateway.Close()

	emailSender, err := newEmailSender(&cfg.Email)
	if err != nil {
		fatal("Failed to create email sender", err)
	}

	injector, err := dependency.NewInjector(cfg, dependency.Dependencies{
		DB:          database.DB(),
		Redis:       redisClient,
		Gateway:     gateway,
		EmailSender: emailSender,
		Metrics:     m,
		Clock:       adapter.SystemClock{},
	})
	if err != nil {
		fatal("Failed to wire application", err)
	}

	if injector.EmailWorker != nil {
		go injector.EmailWorker.Start(ctx)
	}
	if injector.RetentionJob != nil {
		injector.RetentionJob.Start()
		defer injector.RetentionJob.Stop()
	}

	engine := injector.Router.Setup(cfg.Server.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server failed to start", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited properly")
}

// connectRedis returns nil when Redis cannot be reached; the server then keeps its limits in memory.
func connectRedis(ctx context.Context, cfg *config.RedisConfig) *redis.Client {
	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			fatal("Invalid Redis configuration", err)
		}
		slog.Warn("Redis unavailable, using in-memory rate limits and alert tracking", "error", err)
		return nil
	}
	return client
}

// newEmailSender returns a nil sender when the worker is disabled, which turns e-mail off entirely.
func newEmailSender(cfg *config.EmailConfig) (adapter.EmailSender, error) {
	switch {
	case !cfg.WorkerEnabled:
		slog.Info("Email worker disabled")
		return nil, nil
	case cfg.ResendAPIKey == "":
		slog.Warn("RESEND_API_KEY not set, emails will only be logged")
		return email.NewLogSender(), nil
	default:
		return email.NewResendClient(cfg.ResendAPIKey, cfg.ResendBaseURL, cfg.FromName, cfg.FromEmail)
	}
}

func fatal(msg string, err error) {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		slog.Error(msg, "error", err, "key", cfgErr.Key)
	} else {
		slog.Error(msg, "error", err)
	}
	os.Exit(1)
}
