// Copyright (c) 2026 Mesh Network. All rights reserved.

// Command api is the entry point for the Mesh HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Ensure the bootstrap admin account exists.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meshnetwork/mesh/internal/api"
	"github.com/meshnetwork/mesh/internal/community"
	"github.com/meshnetwork/mesh/internal/permission"
	"github.com/meshnetwork/mesh/internal/platform/config"
	"github.com/meshnetwork/mesh/internal/platform/constants"
	"github.com/meshnetwork/mesh/internal/platform/mail"
	"github.com/meshnetwork/mesh/internal/platform/migration"
	pgstore "github.com/meshnetwork/mesh/internal/platform/postgres"
	redisstore "github.com/meshnetwork/mesh/internal/platform/redis"
	"github.com/meshnetwork/mesh/internal/post"
	"github.com/meshnetwork/mesh/internal/search"
	"github.com/meshnetwork/mesh/internal/users/account"
	"github.com/meshnetwork/mesh/internal/users/auth"
)

// sessionSweepInterval is how often expired session rows are purged.
const sessionSweepInterval = 1 * time.Hour

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	permissions := permission.NewResolver(permission.NewPostgresStore(pool))
	mailer := mail.NewSMTPMailer(cfg, log)

	userRepository := auth.NewPostgresUserRepository(pool)
	sessionRepository := auth.NewPostgresSessionRepository(pool)
	verifyTokenRepository := auth.NewVerificationTokenRepository(rdb)
	authService := auth.NewService(userRepository, sessionRepository, verifyTokenRepository, permissions, mailer, log)

	communityService := community.NewService(community.NewPostgresRepository(pool), permissions, log)

	postService := post.NewService(post.NewPostgresRepository(pool), communityService, permissions, log)
	postHandler := post.NewHandler(postService)

	// Nested listing routes (/users/{name}/posts, /communities/{name}/posts)
	// are served by the post handler but mounted inside the owning subtree.
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), postHandler.ByAuthor)
	communityHandler := community.NewHandler(communityService, postHandler.ByCommunity)

	searchHandler := search.NewHandler(search.NewService(search.NewPostgresRepository(pool), log))

	accountHandler := account.NewHandler(authService, communityService)

	// ── 8. Bootstrap Admin ────────────────────────────────────────────────
	must(log, authService.BootstrapAdmin(startupCtx), "bootstrap admin account")

	// ── 9. Session Sweeper ────────────────────────────────────────────────
	// Expired sessions are also rejected lazily on resolve; this keeps the
	// table from growing without bound.
	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	defer sweeperCancel()
	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweeperCtx.Done():
				return
			case <-ticker.C:
				if err := sessionRepository.DeleteExpired(sweeperCtx); err != nil {
					log.Error("session_sweep_failed", slog.Any("error", err))
				}
			}
		}
	}()

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Account:   accountHandler,
		Community: communityHandler,
		Post:      postHandler,
		Search:    searchHandler,
	}

	server := api.NewServer(sweeperCtx, cfg, log, authService, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
