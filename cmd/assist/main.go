package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vidyasangam/assist/internal/anthropic"
	"github.com/vidyasangam/assist/internal/api"
	"github.com/vidyasangam/assist/internal/chat"
	"github.com/vidyasangam/assist/internal/config"
	"github.com/vidyasangam/assist/internal/gateway"
	"github.com/vidyasangam/assist/internal/hermes"
	"github.com/vidyasangam/assist/internal/history"
	"github.com/vidyasangam/assist/internal/store"
	"github.com/vidyasangam/assist/internal/suggest"
	"github.com/vidyasangam/assist/internal/typing"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("assist starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	blobs, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer blobs.Close()
	slog.Info("store ready", "backend", cfg.StoreBackend)

	// Completion gateway
	llm, err := openGateway(cfg)
	if err != nil {
		slog.Error("failed to configure gateway", "error", err)
		os.Exit(1)
	}
	slog.Info("completion gateway ready", "backend", cfg.GatewayBackend)

	deps := chat.Deps{
		Completer: llm,
		Suggester: suggest.New(llm, chat.SystemPrompt, slog.Default()),
		Presenter: typing.New(cfg.TypingInterval),
		Store:     history.New(blobs, cfg.ArchiveLimit, slog.Default()),
		Logger:    slog.Default(),
	}

	// NATS/Hermes (optional, the assistant works without the bus)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		deps.Publisher = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, session events will not be published")
	}

	hub := chat.NewHub(deps)
	go hub.RunEviction(ctx, cfg.SessionIdleTTL)

	// HTTP API
	srv := api.NewServer(cfg.Port, hub, api.Options{
		APIToken:  cfg.APIToken,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	if hermesClient != nil {
		if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"gateway":   cfg.GatewayBackend,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("assist ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}

	// Let in-flight replies finish and persist before the store closes.
	hub.Wait()
	slog.Info("assist stopped")
}

func openStore(ctx context.Context, cfg config.Config) (store.Blobs, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		return store.NewSQLite(cfg.SQLitePath)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres backend")
		}
		return store.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func openGateway(cfg config.Config) (gateway.Completer, error) {
	switch cfg.GatewayBackend {
	case "proxy":
		return gateway.NewProxyClient(cfg.GatewayURL, cfg.GatewayTimeout), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai backend")
		}
		return gateway.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.GatewayTimeout), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required for the anthropic backend")
		}
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.GatewayTimeout), nil
	default:
		return nil, fmt.Errorf("unknown GATEWAY_BACKEND %q", cfg.GatewayBackend)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
