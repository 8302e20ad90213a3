package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/radar-rainfall/internal/domain"
	"github.com/couchcryptid/radar-rainfall/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

// FrameSource downloads the current radar frame.
type FrameSource interface {
	FetchFrame(ctx context.Context) (*image.Paletted, error)
	URL() string
}

// ReportLoader publishes a finished rainfall report.
type ReportLoader interface {
	LoadReport(ctx context.Context, report domain.RainfallReport) error
}

// Options tune a Pipeline.
type Options struct {
	Threshold   float64         // dBZ; see domain.HeavyRainThreshold
	MaxLookups  int             // 0 means unlimited
	Schedule    cron.Schedule   // required by Run
	Clock       clockwork.Clock // default real clock
	ScanOnStart bool
}

// Pipeline orchestrates the fetch-classify-geocode-publish cycle.
type Pipeline struct {
	source   FrameSource
	analyzer *domain.Analyzer
	geocoder domain.Geocoder
	loader   ReportLoader
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options

	ready  atomic.Bool
	mu     sync.RWMutex
	latest *domain.RainfallReport
}

// New creates a Pipeline. A nil geocoder skips place resolution and a nil
// loader skips publishing.
func New(source FrameSource, analyzer *domain.Analyzer, geocoder domain.Geocoder, loader ReportLoader,
	logger *slog.Logger, metrics *observability.Metrics, opts Options,
) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:   source,
		analyzer: analyzer,
		geocoder: geocoder,
		loader:   loader,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// CheckReadiness returns nil once a scan has produced a report,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no radar scan has completed yet")
	}
	return nil
}

// Latest returns the report of the most recent successful scan.
func (p *Pipeline) Latest() (domain.RainfallReport, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return domain.RainfallReport{}, false
	}
	return *p.latest, true
}

// Run scans on every schedule activation until the context is cancelled.
// A failed scan is logged and the scheduler waits for the next activation.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.opts.Schedule == nil {
		return errors.New("pipeline: no scan schedule configured")
	}

	p.logger.Info("pipeline started",
		"source", p.source.URL(),
		"threshold", p.opts.Threshold,
		"geocoding", p.geocoder != nil,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	if p.opts.ScanOnStart {
		p.runScan(ctx)
	}

	for {
		now := p.opts.Clock.Now()
		next := p.opts.Schedule.Next(now)
		p.logger.Debug("next scan scheduled", "at", next)

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-p.opts.Clock.After(next.Sub(now)):
		}

		p.runScan(ctx)
	}
}

func (p *Pipeline) runScan(ctx context.Context) {
	report, err := p.Scan(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("scan failed", "error", err)
		return
	}
	p.logger.Info("scan complete",
		"id", report.ID,
		"pixels", report.PixelCount,
		"places", len(report.Places),
		"lookups", report.Lookups,
		"failed_lookups", report.FailedLookups,
	)
}

// Scan runs one cycle: fetch the frame, locate rainfall, resolve places, and
// publish the report. The report is kept as Latest even if publishing fails.
func (p *Pipeline) Scan(ctx context.Context) (domain.RainfallReport, error) {
	start := p.opts.Clock.Now()
	site := p.analyzer.Site()

	frame, err := p.source.FetchFrame(ctx)
	if err != nil {
		p.metrics.ScansTotal.WithLabelValues("error").Inc()
		return domain.RainfallReport{}, fmt.Errorf("fetch frame: %w", err)
	}

	coords, err := p.analyzer.ComputeRainfallLocations(frame, p.opts.Threshold)
	if err != nil {
		p.metrics.ScansTotal.WithLabelValues("error").Inc()
		return domain.RainfallReport{}, fmt.Errorf("analyze frame: %w", err)
	}
	p.metrics.RainfallPixels.Observe(float64(len(coords)))

	resolved, err := domain.ResolvePlaces(ctx, coords, p.geocoder, p.opts.MaxLookups, p.logger)
	if err != nil {
		p.metrics.ScansTotal.WithLabelValues("error").Inc()
		return domain.RainfallReport{}, fmt.Errorf("resolve places: %w", err)
	}

	scannedAt := start.UTC()
	report := domain.RainfallReport{
		ID:            domain.ReportID(site.Name, scannedAt, p.opts.Threshold),
		Site:          site.Name,
		ImageURL:      p.source.URL(),
		Threshold:     p.opts.Threshold,
		PixelCount:    len(coords),
		Coordinates:   coords,
		Places:        resolved.Places,
		Lookups:       resolved.Lookups,
		FailedLookups: resolved.Failed,
		ScannedAt:     scannedAt,
	}
	if report.Places == nil {
		report.Places = []string{}
	}
	if code, ok := domain.DominantColor(frame, site.LegendBox); ok {
		report.LegendCode = &code
	}

	p.mu.Lock()
	p.latest = &report
	p.mu.Unlock()
	p.ready.Store(true)
	p.metrics.PlacesFound.Set(float64(len(report.Places)))

	if p.loader != nil {
		if err := p.loader.LoadReport(ctx, report); err != nil {
			p.metrics.PublishErrors.Inc()
			p.metrics.ScansTotal.WithLabelValues("error").Inc()
			return report, fmt.Errorf("publish report: %w", err)
		}
		p.metrics.ReportsPublished.Inc()
	}

	p.metrics.ScansTotal.WithLabelValues("success").Inc()
	p.metrics.ScanDuration.Observe(p.opts.Clock.Since(start).Seconds())
	return report, nil
}
