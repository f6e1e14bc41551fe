package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/sheetcheck/internal/config"
	"github.com/JonMunkholm/sheetcheck/internal/core"
	_ "github.com/JonMunkholm/sheetcheck/internal/core/profiles" // Register built-in profiles
	"github.com/JonMunkholm/sheetcheck/internal/logging"
	"github.com/JonMunkholm/sheetcheck/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"ingest_max_concurrent", cfg.Ingest.MaxConcurrent,
		"ingest_read_ahead", cfg.Ingest.ReadAhead,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// A rules file registers (or replaces) a profile of its own
	if cfg.Ingest.RulesFile != "" {
		rules, err := core.LoadRuleSet(cfg.Ingest.RulesFile)
		if err != nil {
			slog.Error("failed to load rules file", "path", cfg.Ingest.RulesFile, "error", err)
			os.Exit(1)
		}
		core.Replace(core.ProfileFromConfig(cfg.Ingest.RulesProfile, cfg.Ingest.RulesProfile, rules))
		slog.Info("rules file loaded",
			"path", cfg.Ingest.RulesFile,
			"profile", cfg.Ingest.RulesProfile,
			"columns", len(rules.Rules),
		)
	}

	if _, ok := core.Lookup(cfg.Ingest.Profile); !ok {
		slog.Error("default profile is not registered", "profile", cfg.Ingest.Profile)
		os.Exit(1)
	}

	profiles := core.Profiles()
	keys := make([]string, len(profiles))
	for i, p := range profiles {
		keys[i] = p.Key
	}
	slog.Info("profiles registered", "count", len(profiles), "keys", keys, "default", cfg.Ingest.Profile)

	service := core.NewService(core.ServiceConfig{
		ReadAhead:     cfg.Ingest.ReadAhead,
		MaxConcurrent: cfg.Ingest.MaxConcurrent,
		MaxWait:       cfg.Ingest.MaxWaitTime,
		Timeout:       cfg.Ingest.Timeout,
		SessionTTL:    cfg.Ingest.SessionTTL,
		Profile:       cfg.Ingest.Profile,
	})

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionJanitor(jobCtx, 0)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests first so no new ingestion starts
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Running ingestions are cancelled; their sessions are discarded
		status := service.Limiter().Status()
		if status.Active > 0 {
			slog.Info("cancelling running ingestions", "active", status.Active)
		}
		if err := service.Shutdown(shutdownCtx); err != nil {
			slog.Warn("ingestions did not stop in time", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
