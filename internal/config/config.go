// Package config loads pipeline configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configuration holds all settings for the privacy filter pipeline.
type Configuration struct {
	Service       ServiceConfig
	Reasoner      ReasonerConfig
	Pipeline      PipelineConfig
	PhraseBank    PhraseBankConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Principal string
}

// ReasonerConfig configures the external text-completion service.
type ReasonerConfig struct {
	Provider       string // ollama, mock
	URL            string
	ClassifyModel  string
	PhraseModel    string
	RequestTimeout time.Duration
}

// PipelineConfig configures pipeline execution and artifact output.
type PipelineConfig struct {
	OutputDir           string
	ClassifyConcurrency int
}

// PhraseBankConfig configures the topic expansion utility.
type PhraseBankConfig struct {
	Path        string
	MaxAttempts int
}

// KafkaConfig configures the run-report event publisher.
type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	TopicRunReport string
	Principal      string
}

// ObservabilityConfig configures logging and the metrics endpoint.
type ObservabilityConfig struct {
	LogLevel    string
	MetricsAddr string // empty disables the metrics HTTP server
}

// Load reads configuration from the environment, applying defaults for
// missing or invalid values. A .env file in the working directory is loaded
// first when present.
func Load() *Configuration {
	_ = godotenv.Load()

	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-privacy-filter")

	return &Configuration{
		Service: ServiceConfig{
			Principal: principal,
		},
		Reasoner: ReasonerConfig{
			Provider:       envOrDefault("REASONER_PROVIDER", "ollama"),
			URL:            envOrDefault("REASONER_URL", "http://localhost:11434/api/generate"),
			ClassifyModel:  envOrDefault("REASONER_CLASSIFY_MODEL", "mistral"),
			PhraseModel:    envOrDefault("REASONER_PHRASE_MODEL", "phi"),
			RequestTimeout: envOrDefaultDuration("REASONER_TIMEOUT", 60*time.Second),
		},
		Pipeline: PipelineConfig{
			OutputDir:           envOrDefault("OUTPUT_DIR", "output"),
			ClassifyConcurrency: envOrDefaultInt("CLASSIFY_CONCURRENCY", 4),
		},
		PhraseBank: PhraseBankConfig{
			Path:        envOrDefault("PHRASE_BANK_PATH", "output/phrase_bank.json"),
			MaxAttempts: envOrDefaultInt("PHRASE_MAX_ATTEMPTS", 3),
		},
		Kafka: KafkaConfig{
			Enabled:        envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:        envOrDefaultList("KAFKA_BROKERS", nil),
			TopicRunReport: envOrDefault("KAFKA_TOPIC_RUN_REPORT", "privacy.run-reports"),
			Principal:      envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ""),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
