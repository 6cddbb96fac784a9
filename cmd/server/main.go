package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/copywrite/internal/api"
	"github.com/dgallion1/copywrite/internal/config"
	"github.com/dgallion1/copywrite/internal/copywriting"
	"github.com/dgallion1/copywrite/internal/dictionary"
	"github.com/dgallion1/copywrite/internal/pipeline"
	"github.com/dgallion1/copywrite/internal/spacing"
	"github.com/dgallion1/copywrite/internal/stats"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	site, err := config.LoadSite(cfg.SiteConfigPath())
	if err != nil {
		log.Error("invalid site config", "path", cfg.SiteConfigPath(), "error", err)
		os.Exit(1)
	}
	flags := site.Copywriting.Flags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dict := dictionary.LoadOrEmpty(cfg.DictionaryPath(), log)
	filter := copywriting.New(dict, spacing.Text, log)
	rec := stats.NewRecorder(time.Hour)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, filter, flags, rec, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, filter, flags, rec, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting copywrite",
		"port", cfg.Port,
		"dictionary_entries", dict.Len(),
		"site_config", cfg.SiteConfigPath(),
		"flags", flags,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
