package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/illegalcall/codeshell/internal/api"
	"github.com/illegalcall/codeshell/internal/auth"
	"github.com/illegalcall/codeshell/internal/config"
	"github.com/illegalcall/codeshell/internal/events"
	"github.com/illegalcall/codeshell/internal/pkg/supabase"
	"github.com/illegalcall/codeshell/internal/preview"
	"github.com/illegalcall/codeshell/internal/profile"
	"github.com/illegalcall/codeshell/internal/store"
	"github.com/illegalcall/codeshell/internal/workspace"
	"github.com/illegalcall/codeshell/pkg/database"
	"github.com/illegalcall/codeshell/pkg/kafka"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sb := supabase.NewClients(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.ServiceKey)

	rdb, err := database.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("Connected to Redis", "addr", cfg.Redis.Addr)

	data, closeData, err := newStore(ctx, cfg, sb)
	if err != nil {
		slog.Error("Failed to initialize data provider", "provider", cfg.Data.Provider, "error", err)
		os.Exit(1)
	}
	defer closeData()
	cached := store.NewCachedStore(data, rdb, cfg.Redis.PreviewTTL)

	provider, err := newAuthProvider(cfg, sb)
	if err != nil {
		slog.Error("Failed to initialize auth provider", "error", err)
		os.Exit(1)
	}

	snapshots, err := newStorage(cfg, sb)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.Discard{}
	if cfg.Kafka.Broker != "" {
		producer, err := kafka.NewProducer(ctx, cfg.Kafka.Broker, cfg.Kafka.RetryMax, cfg.Kafka.RetryBackoff)
		if err != nil {
			slog.Error("Failed to create Kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		publisher = events.NewProducer(producer, cfg.Kafka.Topic)
		slog.Info("Connected to Kafka", "broker", cfg.Kafka.Broker, "topic", cfg.Kafka.Topic)
	} else {
		slog.Warn("KAFKA_BROKER is empty, preview events are discarded")
	}

	server := api.NewServer(cfg, api.Deps{
		Gate:        auth.NewGate(provider),
		Store:       cached,
		Deployments: cached,
		Profiles:    profile.NewService(cached, cfg.Profile.RetryDelay),
		Accounts:    auth.NewAccounts(supabase.NewAuthClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)),
		Workspaces:  workspace.NewRepository(rdb, 0),
		Deployer:    preview.NewEdgeFunctionDeployer(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Deploy.FunctionName),
		Storage:     snapshots,
		Events:      publisher,
		Ping:        func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("Starting server", "port", cfg.Server.Port, "auth", cfg.Auth.Provider, "data", cfg.Data.Provider)
	if err := server.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
