//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/radar-rainfall/internal/adapter/kafka"
	"github.com/couchcryptid/radar-rainfall/internal/adapter/radar"
	"github.com/couchcryptid/radar-rainfall/internal/config"
	"github.com/couchcryptid/radar-rainfall/internal/domain"
	"github.com/couchcryptid/radar-rainfall/internal/observability"
	"github.com/couchcryptid/radar-rainfall/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSinkTopic = "test-rainfall-reports"

// publishedMessage holds a deserialized message read from the sink topic.
type publishedMessage struct {
	Report  domain.RainfallReport
	Key     string
	Headers map[string]string
}

// readPublished reads a single message from the sink consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var report domain.RainfallReport
	require.NoError(t, json.Unmarshal(msg.Value, &report), "unmarshal sink message")

	return publishedMessage{
		Report:  report,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaWriter verifies that kafka.Writer publishes a report with its key
// and headers intact.
func TestKafkaWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	scannedAt := time.Date(2024, time.December, 1, 4, 0, 0, 0, time.UTC)
	report := domain.RainfallReport{
		ID:          domain.ReportID("chennai", scannedAt, 45),
		Site:        "chennai",
		Threshold:   45,
		PixelCount:  1,
		Coordinates: []domain.Geo{{Lat: 13.083911, Lon: 80.289676}},
		Places:      []string{"Fort St. George, Chennai"},
		Lookups:     1,
		ScannedAt:   scannedAt,
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadReport(ctx, report))

	pm := readPublished(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, report.ID, pm.Key)
	assert.Equal(t, "chennai", pm.Headers["site"])
	assert.Equal(t, "2024-12-01T04:00:00Z", pm.Headers["scanned_at"])
	assert.Equal(t, report, pm.Report)
}

// TestPipelineEndToEnd serves a synthetic radar frame over HTTP and runs one
// scheduled scan through the real fetcher and Kafka writer.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	site := domain.ChennaiSite()
	frame := image.NewPaletted(image.Rect(0, 0, 800, 700), palette.Plan9)
	center := site.AnalysisBox.Min.Add(site.Center())
	frame.SetColorIndex(center.X, center.Y, 186) // 50 dBZ at the radar

	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, frame, &gif.Options{NumColors: 256}))
	radarSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(radarSrv.Close)

	clearSky := image.NewPaletted(image.Rect(0, 0, site.AnalysisBox.Dx(), site.AnalysisBox.Dy()), palette.Plan9)
	analyzer := domain.NewAnalyzer(site, domain.DefaultReflectivityTable(), domain.BackgroundFromImage(clearSky))

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2024, time.December, 1, 4, 0, 0, 0, time.UTC))
	p := pipeline.New(
		radar.NewFetcher(radarSrv.URL, 5*time.Second, discardLogger()),
		analyzer, nil, writer, discardLogger(), observability.NewMetricsForTesting(),
		pipeline.Options{
			Threshold:   domain.HeavyRainThreshold,
			Schedule:    cron.Every(10 * time.Minute),
			Clock:       clock,
			ScanOnStart: true,
		},
	)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	pm := readPublished(ctx, t, sinkConsumer(t, broker))
	pipelineCancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, "chennai", pm.Report.Site)
	assert.Equal(t, radarSrv.URL, pm.Report.ImageURL)
	assert.Equal(t, 1, pm.Report.PixelCount)
	require.Len(t, pm.Report.Coordinates, 1)
	assert.InDelta(t, site.Origin.Lat, pm.Report.Coordinates[0].Lat, 1e-9)
	assert.InDelta(t, site.Origin.Lon, pm.Report.Coordinates[0].Lon, 1e-9)
	assert.Empty(t, pm.Report.Places)
	assert.Equal(t, pm.Report.ID, pm.Key)

	latest, ok := p.Latest()
	require.True(t, ok)
	assert.Equal(t, pm.Report.ID, latest.ID)
}
