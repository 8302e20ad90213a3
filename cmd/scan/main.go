// Command scan runs a single radar scan and prints the places receiving heavy
// rain, one per line. It reads the same environment as the service for the
// geocoder settings; flags override the image source and threshold.
//
// Usage:
//
//	go run ./cmd/scan
//	go run ./cmd/scan -frame testdata/caz_chn.gif -threshold 40 -json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/radar-rainfall/internal/adapter/geocode"
	"github.com/couchcryptid/radar-rainfall/internal/adapter/radar"
	"github.com/couchcryptid/radar-rainfall/internal/config"
	"github.com/couchcryptid/radar-rainfall/internal/domain"
	"github.com/couchcryptid/radar-rainfall/internal/observability"
	"github.com/couchcryptid/radar-rainfall/internal/pipeline"
	"github.com/joho/godotenv"
)

// fileSource serves a frame stored on disk.
type fileSource struct {
	path string
}

func (f fileSource) FetchFrame(_ context.Context) (*image.Paletted, error) {
	return radar.DecodeFile(f.path)
}

func (f fileSource) URL() string { return "file://" + f.path }

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	framePath := flag.String("frame", "", "decode this GIF/PNG instead of downloading the radar image")
	imageURL := flag.String("url", cfg.RadarImageURL, "radar image URL")
	calibration := flag.String("calibration", cfg.CalibrationFile, "background calibration file")
	threshold := flag.Float64("threshold", cfg.RainfallThreshold, "reflectivity threshold in dBZ")
	asJSON := flag.Bool("json", false, "print the full report as JSON")
	flag.Parse()

	if math.IsNaN(*threshold) || math.IsInf(*threshold, 0) {
		return fmt.Errorf("invalid -threshold %v", *threshold)
	}

	// Stdout carries the report; logs go to stderr.
	logger := observability.NewConsoleLogger(os.Stderr, cfg.LogLevel)
	metrics := observability.NewMetrics()

	background, err := domain.LoadBackgroundModelFile(*calibration)
	if err != nil {
		return err
	}

	geocoder, err := geocode.NewFromConfig(cfg, logger, metrics)
	if err != nil {
		return err
	}

	var source pipeline.FrameSource = radar.NewFetcher(*imageURL, cfg.RadarFetchTimeout, logger)
	if *framePath != "" {
		source = fileSource{path: *framePath}
	}

	analyzer := domain.NewAnalyzer(domain.ChennaiSite(), domain.DefaultReflectivityTable(), background)
	p := pipeline.New(source, analyzer, geocoder, nil, logger, metrics, pipeline.Options{
		Threshold:  *threshold,
		MaxLookups: cfg.GeocoderMaxLookups,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := p.Scan(ctx)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if geocoder == nil {
		for _, c := range report.Coordinates {
			fmt.Printf("%.6f,%.6f\n", c.Lat, c.Lon)
		}
		return nil
	}
	for _, place := range report.Places {
		fmt.Println(place)
	}
	return nil
}
