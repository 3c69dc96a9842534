// @title Commander Ledger API
// @version 1.0
// @description Журнал партий Commander: игроки, результаты, каталог командиров.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Dosada05/commander-ledger/broadcast"
	"github.com/Dosada05/commander-ledger/config"
	"github.com/Dosada05/commander-ledger/db"
	"github.com/Dosada05/commander-ledger/handlers"
	"github.com/Dosada05/commander-ledger/middleware"
	"github.com/Dosada05/commander-ledger/repositories"
	api "github.com/Dosada05/commander-ledger/routes"
	"github.com/Dosada05/commander-ledger/scryfall"
	"github.com/Dosada05/commander-ledger/services"
	"github.com/Dosada05/commander-ledger/storage"
	"github.com/Dosada05/commander-ledger/telemetry"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName     = "commander-ledger"
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Настройка логгера
	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logger.Warn("unknown LOG_LEVEL, using info", slog.String("level", cfg.LogLevel))
	}
	logger.Info("configuration loaded",
		slog.String("database_driver", cfg.DatabaseDriver),
		slog.Int("port", cfg.ServerPort),
		slog.String("catalog_store", cfg.CatalogStore),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Трассировка (включается только при заданном OTEL_ENDPOINT)
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", slog.Any("error", err))
		}
	}()

	// Подключение к базе данных
	dialect, err := db.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return err
	}
	dbConn, err := db.Connect(dialect, cfg.DatabaseURL, dbPingTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(ctx, dbConn, dialect); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("database schema is up to date")

	// Хранилище снимка каталога
	snapshotStore, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog store: %w", err)
	}

	// Лента событий
	hub := broadcast.NewHub(logger)

	// Инициализация репозиториев
	playerRepo := repositories.NewPlayerRepository(dbConn, dialect)
	gameRepo := repositories.NewGameRepository(dbConn, dialect)

	// Инициализация сервисов
	scryfallClient := scryfall.NewClient(scryfall.Config{
		BulkDataURL:     cfg.ScryfallBulkDataURL,
		DownloadTimeout: cfg.CatalogFetchTimeout,
		MaxAttempts:     cfg.CatalogFetchAttempts,
		MaxBytes:        cfg.CatalogMaxBytes,
		Logger:          logger,
	})
	gameService := services.NewGameService(dbConn, gameRepo, playerRepo, hub, logger)
	playerService := services.NewPlayerService(playerRepo, hub, logger)
	catalogRefreshTimeout := time.Duration(cfg.CatalogFetchAttempts) * cfg.CatalogFetchTimeout
	catalogService := services.NewCatalogService(scryfallClient, snapshotStore, hub, catalogRefreshTimeout, logger)
	scheduler := services.NewCatalogScheduler(catalogService, cfg.CatalogRefreshInterval, logger)

	// Инициализация обработчиков HTTP
	auth, err := middleware.NewBearerAuth(cfg.PostToken, cfg.PostTokenHash)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Games:      handlers.NewGameHandler(gameService),
		Players:    handlers.NewPlayerHandler(playerService),
		Commanders: handlers.NewCommanderHandler(catalogService),
		WebSocket:  handlers.NewWebSocketHandler(hub),
		Health:     handlers.NewHealthHandler(dbConn, scheduler, hub),
	}, auth.Authenticate, cfg.StaticDir)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.ServerAddr, strconv.Itoa(cfg.ServerPort)),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("catalog scheduler started", slog.Duration("interval", cfg.CatalogRefreshInterval))
		return scheduler.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}

func newSnapshotStore(ctx context.Context, cfg *config.Config) (storage.SnapshotStore, error) {
	switch cfg.CatalogStore {
	case config.CatalogStoreR2:
		return storage.NewCloudflareR2SnapshotStore(ctx, storage.CloudflareR2Config{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			ObjectKey:       cfg.R2.ObjectKey,
		})
	default:
		return storage.NewFileSnapshotStore(cfg.CatalogFile)
	}
}
