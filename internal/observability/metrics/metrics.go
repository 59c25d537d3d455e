// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "audio_privacy_filter"

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Segment metrics
	SegmentsProcessed *prometheus.CounterVec

	// Reasoner call metrics
	ReasonerCalls   *prometheus.CounterVec
	ReasonerErrors  *prometheus.CounterVec
	ReasonerLatency *prometheus.HistogramVec

	// Artifact metrics
	ArtifactWrites      *prometheus.CounterVec
	ArtifactWriteErrors *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by outcome",
		}, []string{"outcome"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}),

		SegmentsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_processed_total",
			Help:      "Total number of segments processed by sensitivity label",
		}, []string{"sensitivity"}),

		ReasonerCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reasoner_calls_total",
			Help:      "Total number of reasoner service calls by operation",
		}, []string{"operation"}),
		ReasonerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reasoner_errors_total",
			Help:      "Total number of failed reasoner service calls",
		}, []string{"operation"}),
		ReasonerLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reasoner_latency_seconds",
			Help:      "Reasoner service round-trip latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"operation"}),

		ArtifactWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_writes_total",
			Help:      "Total number of artifact write attempts by artifact name",
		}, []string{"artifact"}),
		ArtifactWriteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_write_errors_total",
			Help:      "Total number of failed artifact writes by artifact name",
		}, []string{"artifact"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordRun records a completed pipeline run.
func (m *Metrics) RecordRun(outcome string, durationSeconds float64) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(durationSeconds)
}

// RecordSegment records a classified segment by its sensitivity label.
func (m *Metrics) RecordSegment(sensitivity string) {
	m.SegmentsProcessed.WithLabelValues(sensitivity).Inc()
}

// RecordReasonerCall records a reasoner service round trip.
func (m *Metrics) RecordReasonerCall(operation string, err error, latencySeconds float64) {
	m.ReasonerCalls.WithLabelValues(operation).Inc()
	m.ReasonerLatency.WithLabelValues(operation).Observe(latencySeconds)
	if err != nil {
		m.ReasonerErrors.WithLabelValues(operation).Inc()
	}
}

// RecordArtifactWrite records an artifact write attempt.
func (m *Metrics) RecordArtifactWrite(artifact string, err error) {
	m.ArtifactWrites.WithLabelValues(artifact).Inc()
	if err != nil {
		m.ArtifactWriteErrors.WithLabelValues(artifact).Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
