package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/radar-rainfall/internal/config"
	"github.com/couchcryptid/radar-rainfall/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces rainfall reports to a Kafka topic.
// It implements pipeline.ReportLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadReport serializes and publishes one rainfall report, keyed by report ID
// so repeated publications of the same scan land on the same partition.
func (w *Writer) LoadReport(ctx context.Context, report domain.RainfallReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write rainfall report: %w", err)
	}
	w.logger.Debug("rainfall report published",
		"id", report.ID,
		"topic", w.writer.Topic,
		"bytes", len(msg.Value),
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RainfallReport into a Kafka message.
func serializeToMessage(report domain.RainfallReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize rainfall report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "site", Value: []byte(report.Site)},
			{Key: "scanned_at", Value: []byte(report.ScannedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
