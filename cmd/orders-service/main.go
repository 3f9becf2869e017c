package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheusmosca/commerce-orders/internal/config"
	"github.com/matheusmosca/commerce-orders/internal/logging"
	"github.com/matheusmosca/commerce-orders/internal/server"
	"github.com/matheusmosca/commerce-orders/internal/store/memory"
	"github.com/matheusmosca/commerce-orders/internal/store/postgres"
	"github.com/matheusmosca/commerce-orders/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service_failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	providers, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:  cfg.ServiceName,
		Env:          cfg.Env,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Disabled:     cfg.OTelDisabled,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry_shutdown_failed", zap.Error(err))
		}
	}()

	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := server.NewRouter(backend, server.Options{
		ServiceName:      cfg.ServiceName,
		PlacementTimeout: cfg.OrderPlacementTimeout,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	srv := server.New(":"+cfg.Port, router, cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout, cfg.ShutdownTimeout, logger)
	return srv.Run(ctx)
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (server.Backend, func(), error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("memory_store_enabled")
		return server.NewMemoryBackend(memory.New()), func() {}, nil
	}

	db, err := postgres.Open(ctx, postgres.Options{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		ConnectAttempts: cfg.DatabaseConnectAttempts,
		RetryInterval:   time.Second,
	}, logger)
	if err != nil {
		return server.Backend{}, nil, err
	}

	if cfg.DatabaseAutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
			db.Close()
			return server.Backend{}, nil, err
		}
		logger.Info("database_migrated")
	}
	return server.NewPostgresBackend(db), db.Close, nil
}
