package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/mealsense/internal/application"
	appanalysis "github.com/bryanwahyu/mealsense/internal/application/analysis"
	appdiag "github.com/bryanwahyu/mealsense/internal/application/diagnostics"
	"github.com/bryanwahyu/mealsense/internal/config"
	domain "github.com/bryanwahyu/mealsense/internal/domain/analysis"
	"github.com/bryanwahyu/mealsense/internal/infra/ai/openai"
	"github.com/bryanwahyu/mealsense/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/mealsense/internal/infra/db/mysql"
	"github.com/bryanwahyu/mealsense/internal/infra/db/postgres"
	"github.com/bryanwahyu/mealsense/internal/infra/firebase"
	"github.com/bryanwahyu/mealsense/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/mealsense/internal/infra/storage"
	"github.com/bryanwahyu/mealsense/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readiness := map[string]middleware.HealthChecker{}

	// repository
	repo, db, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		readiness["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// archive
	var archive domain.Archive
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		archive = store
		readiness["minio"] = store
	}

	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY is empty; analysis requests will fail")
	}
	ai := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.FallbackModel, log)

	clock := application.SystemClock{}
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate)
	go limiter.RunCleanup(ctx, time.Minute, 10*time.Minute)

	handler := httpserver.NewRouter(httpserver.Deps{
		Diagnostics: appdiag.NewService(clock, log, cfg.Production()),
		Snapshot:    config.CredentialSnapshot,
		Initializer: firebase.NewInitializer(config.CredentialSnapshot(), log),
		Analysis: &appanalysis.Service{
			AI:      ai,
			Repo:    repo,
			Archive: archive,
			Clock:   clock,
			Log:     log,
		},
		Metrics:     middleware.DefaultMetrics,
		Log:         log,
		APIKeys:     cfg.Server.APIKeys,
		CORSOrigins: cfg.Server.CORSOrigins,
		Limiter:     limiter,
		Readiness:   readiness,
	})
	if len(cfg.Server.APIKeys) == 0 {
		log.Warn("no API keys configured; /v1 is unauthenticated")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	return nil
}

func openRepository(ctx context.Context, cfg *config.Config) (domain.Repository, *sql.DB, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return mysqlp.NewAnalysisRepository(db), db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewAnalysisRepository(db), db, nil
	case "memory":
		return memory.NewAnalysisRepository(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
