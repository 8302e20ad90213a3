package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/radar-rainfall/internal/adapter/geocode"
	httpadapter "github.com/couchcryptid/radar-rainfall/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/radar-rainfall/internal/adapter/kafka"
	"github.com/couchcryptid/radar-rainfall/internal/adapter/radar"
	"github.com/couchcryptid/radar-rainfall/internal/config"
	"github.com/couchcryptid/radar-rainfall/internal/domain"
	"github.com/couchcryptid/radar-rainfall/internal/observability"
	"github.com/couchcryptid/radar-rainfall/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// A missing .env file is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	background, err := domain.LoadBackgroundModelFile(cfg.CalibrationFile)
	if err != nil {
		logger.Error("failed to load calibration", "path", cfg.CalibrationFile, "error", err)
		os.Exit(1)
	}
	logger.Info("calibration loaded", "path", cfg.CalibrationFile, "records", background.Len())

	schedule, err := cron.ParseStandard(cfg.ScanSchedule)
	if err != nil {
		logger.Error("failed to parse scan schedule", "error", err)
		os.Exit(1)
	}

	geocoder, err := geocode.NewFromConfig(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to create geocoder", "error", err)
		os.Exit(1)
	}

	analyzer := domain.NewAnalyzer(domain.ChennaiSite(), domain.DefaultReflectivityTable(), background)
	fetcher := radar.NewFetcher(cfg.RadarImageURL, cfg.RadarFetchTimeout, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(fetcher, analyzer, geocoder, writer, logger, metrics, pipeline.Options{
		Threshold:   cfg.RainfallThreshold,
		MaxLookups:  cfg.GeocoderMaxLookups,
		Schedule:    schedule,
		ScanOnStart: true,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start scan scheduler.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
