package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/monster_tracker/internal/config"
	"github.com/Skotchmaster/monster_tracker/internal/db"
	"github.com/Skotchmaster/monster_tracker/internal/httpserver"
	"github.com/Skotchmaster/monster_tracker/internal/logging"
	"github.com/Skotchmaster/monster_tracker/internal/mykafka"
	"github.com/Skotchmaster/monster_tracker/internal/repo"
	"github.com/Skotchmaster/monster_tracker/internal/service"
	"github.com/Skotchmaster/monster_tracker/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := openStore(initCtx, cfg)
	cancel()
	if err != nil {
		logger.Error("store_init_failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	publisher, closePublisher := newPublisher(cfg, logger)

	if err := os.MkdirAll(cfg.StaticDir, 0o755); err != nil {
		logger.Error("static_dir_failed", "dir", cfg.StaticDir, "error", err)
		os.Exit(1)
	}

	authSvc := &service.AuthService{
		Repo:   store,
		Tokens: tokens.NewIssuer(cfg.JWTSecret, tokens.DefaultTTL),
		Events: publisher,
	}

	e := httpserver.New(logger, &httpserver.Deps{
		AuthHandler:        &httpserver.AuthHTTP{Svc: authSvc},
		ConsumptionHandler: &httpserver.ConsumptionHTTP{Svc: &service.ConsumptionService{Repo: store, Events: publisher}},
		PreferencesHandler: &httpserver.PreferencesHTTP{Svc: &service.PreferencesService{Repo: store}},
		Verifier:           authSvc,
		Store:              store,
		ProtectPreferences: cfg.ProtectPreferences(),
		StaticDir:          cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_started",
			"addr", srv.Addr,
			"store", cfg.StoreDriver,
			"preferences_auth", cfg.PreferencesAuth,
			"kafka", len(cfg.KafkaBrokers) > 0,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := store.Close(ctx); err != nil {
		logger.Error("store_close_error", "error", err)
	}
	if err := closePublisher(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}

func openStore(ctx context.Context, cfg *config.Config) (repo.Store, error) {
	if cfg.StoreDriver == config.DriverMongo {
		m, err := repo.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		if err := m.EnsureIndexes(ctx); err != nil {
			_ = m.Close(context.Background())
			return nil, err
		}
		return m, nil
	}

	gdb, err := db.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}
	return &repo.GormRepo{DB: gdb}, nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (mykafka.Publisher, func() error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka_disabled")
		return mykafka.Nop{}, func() error { return nil }
	}

	p, err := mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		logger.Warn("kafka_init_failed", "error", err)
		return mykafka.Nop{}, func() error { return nil }
	}
	return p, p.Close
}
