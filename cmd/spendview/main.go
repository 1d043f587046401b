package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"spendview/internal/config"
	"spendview/internal/dashboard"
	apphttp "spendview/internal/http"
	"spendview/internal/llm"
	applog "spendview/internal/log"
	"spendview/internal/source"
)

func main() {
	// Load .env if present. Real environment variables win.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var src source.Source
	switch cfg.DataSource {
	case "sheets":
		s, err := source.NewSheetsSource(ctx, cfg.SpreadsheetID, cfg.SheetRange)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets source", "error", err)
			os.Exit(1)
		}
		src = s
		logger.Info("Using Google Sheets dataset source", "spreadsheet", cfg.SpreadsheetID, "range", cfg.SheetRange)
	default:
		src = source.NewFileSource(cfg.CSVPath)
		logger.Info("Using file dataset source", "path", cfg.CSVPath)
	}

	// The dashboard works without an LLM client; analysis and chat report
	// themselves unavailable instead.
	var analyst apphttp.Analyst
	if client, err := llm.NewClient(ctx, cfg.GeminiModel); err != nil {
		logger.Warn("LLM client unavailable, analysis and chat disabled", "error", err)
	} else {
		analyst = client
	}

	srv := apphttp.NewServer(apphttp.Options{
		Controller:  dashboard.NewController(),
		Source:      src,
		Analyst:     analyst,
		Logger:      logger,
		LoadTimeout: cfg.LoadTimeout,
		LLMTimeout:  cfg.LLMTimeout,
	})

	if err := srv.Load(ctx); err != nil {
		logger.Warn("Initial dataset load failed, starting with an empty dataset", "error", err)
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv,

		ReadTimeout: 10 * time.Second,
		// Write timeout covers the LLM round-trip on the analysis endpoints.
		WriteTimeout:   cfg.LLMTimeout + 10*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spendview server", "port", cfg.Port, "source", cfg.DataSource)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
