package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/illegalcall/codeshell/internal/config"
	"github.com/illegalcall/codeshell/internal/store"
	"github.com/illegalcall/codeshell/internal/worker"
	"github.com/illegalcall/codeshell/pkg/database"
	"github.com/illegalcall/codeshell/pkg/kafka"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := database.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("Connected to Redis", "addr", cfg.Redis.Addr)

	consumer, err := kafka.NewConsumer(ctx, cfg.Kafka.Broker, cfg.Kafka.Group)
	if err != nil {
		slog.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()
	slog.Info("Connected to Kafka", "broker", cfg.Kafka.Broker, "group", cfg.Kafka.Group)

	// The worker only touches the Redis side of the cached store.
	cache := store.NewCachedStore(nil, rdb, cfg.Redis.PreviewTTL)

	w := worker.NewWorker(cfg, cache, consumer)
	if err := w.Start(ctx); err != nil {
		slog.Error("Worker error", "error", err)
		os.Exit(1)
	}
}
