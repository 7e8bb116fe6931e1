package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andikasp/orderdesk/internal/audit"
	"github.com/andikasp/orderdesk/internal/catalog"
	"github.com/andikasp/orderdesk/internal/config"
	"github.com/andikasp/orderdesk/internal/dairyapi"
	"github.com/andikasp/orderdesk/internal/httpx"
	kafkax "github.com/andikasp/orderdesk/internal/kafka"
	"github.com/andikasp/orderdesk/internal/order"
	"github.com/andikasp/orderdesk/internal/postgres"
	"github.com/andikasp/orderdesk/internal/redisx"
	"github.com/andikasp/orderdesk/internal/session"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// skema audit, kalau diminta
	if cfg.MigrationsDir != "" {
		m, err := migrate.New("file://"+cfg.MigrationsDir, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("migrate init", zap.Error(err))
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("migrate up", zap.Error(err))
		}
	}

	// DB (audit log)
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, order.TopicOrderSubmitted, 1024, logger)
	prod.Start(ctx)

	// Upstream client & catalog
	upstream := dairyapi.NewClient(cfg.DairyAPIBaseURL, logger)
	cat := &catalog.Service{Fetcher: upstream, Redis: rdb, Logger: logger}

	// Draft sessions
	sessions := session.NewStore(30 * time.Minute)
	sessions.StartSweeper(ctx, 5*time.Minute)

	submitter := &order.Submitter{
		Upstream: upstream,
		Catalog:  cat,
		Audit:    &audit.Repo{DB: db},
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
		Logger:   logger,
	}

	router := httpx.NewRouter()
	dh := &httpx.DeskHandler{
		Catalog:   cat,
		Sessions:  sessions,
		Upstream:  upstream,
		Submitter: submitter,
		Audit:     &audit.Repo{DB: db},
		Logger:    logger,
	}
	dh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
