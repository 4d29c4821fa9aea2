package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/app"
	"github.com/nekogravitycat/vendor-booking-backend/internal/config"
	"github.com/nekogravitycat/vendor-booking-backend/internal/db"
	"github.com/nekogravitycat/vendor-booking-backend/internal/logging"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Connect DB
	var pool *pgxpool.Pool
	if cfg.StoreBackend == config.BackendPostgres {
		pool, err = db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		}, logger.Named("db"))
		if err != nil {
			logger.Fatal("failed to connect to db", zap.Error(err))
		}
		defer pool.Close()

		if cfg.DBRunMigrations {
			if err := db.RunMigrations(ctx, pool, logger.Named("migrate")); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = db.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		defer func() { _ = redisClient.Close() }()
	}

	container, err := app.NewContainer(ctx, app.Config{
		IsProduction:  cfg.IsProduction,
		ProdOrigins:   cfg.ProdOrigins,
		Logger:        logger,
		DBPool:        pool,
		Redis:         redisClient,
		MediaDir:      cfg.MediaDir,
		JWTSecret:     cfg.JWTSecret,
		JWTTTL:        cfg.JWTAccessTokenTTL,
		BcryptCost:    cfg.BcryptCost,
		SeedFixtures:  cfg.SeedFixtures,
		SweepSchedule: cfg.CompletionSweepSchedule,
	})
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	if container.Sweeper != nil {
		container.Sweeper.Start()
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		logger.Info("server running",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store_backend", cfg.StoreBackend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	if container.Sweeper != nil {
		container.Sweeper.Stop(shutdownCtx)
	}

	logger.Info("server exited gracefully")
}
