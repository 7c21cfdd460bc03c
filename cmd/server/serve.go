package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"medicine_backend/internal/app/di"
	"medicine_backend/internal/app/router"
	"medicine_backend/internal/platform/db"
	platformhandler "medicine_backend/internal/platform/http/handler"
	"medicine_backend/internal/platform/metrics"
	redisclient "medicine_backend/internal/platform/redis"
	"medicine_backend/internal/shared/ratelimiter"
)

func runServe(parent context.Context, opts *options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.UsingDevSecret() {
		slog.Warn("JWT_SECRET is not set. Using the development secret; set a strong secret in production.")
	}

	// db
	gdb, err := db.Open(cfg.DB)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()
	if cfg.DB.RunMigrations || cfg.DB.Driver == db.DriverSQLite {
		if err := db.Migrate(gdb); err != nil {
			slog.Error("migration failed", "error", err)
			return err
		}
	}

	readyChecks := map[string]platformhandler.Check{
		"database": func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := redisclient.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
			readyChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	// 認証ルートの回数制限（0で無効）
	var limiter ratelimiter.Limiter
	if cfg.Server.AuthRateLimit > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.Server.AuthRateLimit, time.Minute)
	}

	tokens := di.NewTokenGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	engine := router.NewRouter(router.Deps{
		Auth:           di.NewAuthHandler(gdb, tokens),
		Medicine:       di.NewMedicineHandler(di.NewMedicineRepository(rdb, gdb, cfg.Redis.CacheTTL)),
		Verifier:       tokens,
		AuthLimiter:    limiter,
		Metrics:        metrics.New(),
		ReadyChecks:    readyChecks,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			slog.Error("server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		return err
	}
	return nil
}
