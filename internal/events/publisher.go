// Package events publishes per-run privacy events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"audio-privacy-filter/internal/models"
	"audio-privacy-filter/internal/observability/metrics"
)

// RunReport is the event emitted when a pipeline run reaches a terminal
// state. Consumers correlate it with the artifacts via RunID.
type RunReport struct {
	EventType    string       `json:"eventType"`
	RunID        string       `json:"runId"`
	SourceFile   string       `json:"sourceFile"`
	Language     string       `json:"language,omitempty"`
	State        string       `json:"state"`
	Topics       []string     `json:"topics"`
	SegmentCount int          `json:"segmentCount"`
	Tally        models.Tally `json:"tally"`
	Timestamp    int64        `json:"timestamp"`
}

// EventTypeRunReport identifies RunReport events on the wire.
const EventTypeRunReport = "privacy.run.report"

// Publisher publishes run reports to a Kafka topic. When disabled it only
// logs, so batch runs need no broker.
type Publisher struct {
	writer    *kafka.Writer
	principal string
	topic     string
	enabled   bool
	metrics   *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	Topic     string
	Principal string
	Enabled   bool
}

// New creates a run-report publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal: cfg.Principal,
			topic:     cfg.Topic,
			enabled:   false,
			metrics:   m,
		}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport: &kafka.Transport{
			Dial: dialer.DialFunc,
		},
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writer:    writer,
		principal: cfg.Principal,
		topic:     cfg.Topic,
		enabled:   true,
		metrics:   m,
	}
}

// PublishRunReport publishes a run report keyed by its run identifier.
func (p *Publisher) PublishRunReport(ctx context.Context, report RunReport) error {
	start := time.Now()

	report.EventType = EventTypeRunReport
	if report.Timestamp == 0 {
		report.Timestamp = time.Now().UnixMilli()
	}

	payload, err := json.Marshal(report)
	if err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal run report")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", p.topic).
		Str("runId", report.RunID).
		RawJSON("payload", payload).
		Msg("Publishing run report")

	if !p.enabled || p.writer == nil {
		p.metrics.RecordKafkaPublish(p.topic, EventTypeRunReport, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(report.RunID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(EventTypeRunReport)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("runId", report.RunID).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(p.topic, EventTypeRunReport, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(p.topic, EventTypeRunReport, nil, time.Since(start).Seconds())
	return nil
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Kafka writer")
		return err
	}
	return nil
}
