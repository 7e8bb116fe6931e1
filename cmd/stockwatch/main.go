package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/andikasp/orderdesk/internal/catalog"
	"github.com/andikasp/orderdesk/internal/config"
	"github.com/andikasp/orderdesk/internal/dairyapi"
	kafkax "github.com/andikasp/orderdesk/internal/kafka"
	"github.com/andikasp/orderdesk/internal/order"
	"github.com/andikasp/orderdesk/internal/redisx"
	"github.com/andikasp/orderdesk/internal/stockwatch"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

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

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	upstream := dairyapi.NewClient(cfg.DairyAPIBaseURL, logger)
	cat := &catalog.Service{Fetcher: upstream, Redis: rdb, Logger: logger}

	svc := &stockwatch.Service{
		Catalog: cat,
		Redis:   rdb,
		Logger:  logger,
		Name:    cfg.ServiceName + "-stockwatch",
	}

	group := getenv("STOCKWATCH_GROUP", "orderdesk-stockwatch")
	workers := mustAtoi(os.Getenv("STOCKWATCH_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, order.TopicStockChanged, workers, logger)

	go func() {
		logger.Info("stockwatch consumer started",
			zap.String("group", group),
			zap.String("topic", order.TopicStockChanged),
			zap.Int("workers", workers),
		)
		if err := cons.Start(ctx, svc.HandleStockChanged); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
