package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/glosslab/gloss/internal/annotate"
	"github.com/glosslab/gloss/internal/api"
	"github.com/glosslab/gloss/internal/completion"
	"github.com/glosslab/gloss/internal/config"
	"github.com/glosslab/gloss/internal/events"
	"github.com/glosslab/gloss/internal/prompts"
	"github.com/glosslab/gloss/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("gloss starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL, cfg.DBMaxAttempts, cfg.DBRetryDelay)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready")

	// Prompt library — a missing slot is a deployment error, refuse to start.
	lib, err := prompts.Load(cfg.PromptsPath)
	if err != nil {
		slog.Error("failed to load prompt library", "path", cfg.PromptsPath, "error", err)
		os.Exit(1)
	}
	slog.Info("prompt library loaded",
		"path", cfg.PromptsPath,
		"word_examples", len(lib.WordExamples()),
		"text_examples", len(lib.TextExamples()),
	)

	// Completion client
	if cfg.AIAPIKey == "" {
		slog.Error("AI_API_KEY is required")
		os.Exit(1)
	}
	llm := completion.NewClient(cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL)
	slog.Info("completion client ready", "model", cfg.AIModel)

	// Event bus (optional — gloss works without NATS, just no lifecycle events)
	var bus annotate.Bus
	if cfg.NatsURL != "" {
		pub, err := events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		bus = pub
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without lifecycle events")
	}

	// Services
	svc := annotate.New(db, llm, lib, bus, slog.Default())
	feedback := annotate.NewFeedback(db, bus, slog.Default())

	// HTTP API
	srv := api.NewServer(cfg.Port, svc, feedback, cfg.RequestTimeout)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("gloss ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("gloss stopped")
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
