// Package app wires configuration, logging, metrics and the event publisher
// into a running application.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"audio-privacy-filter/internal/config"
	"audio-privacy-filter/internal/events"
	"audio-privacy-filter/internal/observability"
	"audio-privacy-filter/internal/observability/logging"
	"audio-privacy-filter/internal/service/reason"
	"audio-privacy-filter/internal/service/reason/mock"
	"audio-privacy-filter/internal/service/reason/ollama"
)

// Application holds the shared dependencies of the command-line entry points.
type Application struct {
	Config    *config.Configuration
	Publisher *events.Publisher

	metricsServer *observability.Server
}

// New initializes logging, the optional metrics endpoint and the event
// publisher from cfg.
func New(cfg *config.Configuration) *Application {
	logging.Init(logging.Config{Level: cfg.Observability.LogLevel})

	a := &Application{
		Config: cfg,
		Publisher: events.New(&events.Config{
			Enabled:   cfg.Kafka.Enabled,
			Brokers:   cfg.Kafka.Brokers,
			Topic:     cfg.Kafka.TopicRunReport,
			Principal: cfg.Kafka.Principal,
		}),
	}

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		a.metricsServer = observability.NewServer(addr)
		a.metricsServer.Start()
	}

	log.Info().
		Str("principal", cfg.Service.Principal).
		Str("provider", cfg.Reasoner.Provider).
		Msg("Application initialized")

	return a
}

// Completer returns the text-completion client for the configured provider,
// bound to the given model.
func (a *Application) Completer(model string) (reason.Completer, error) {
	switch a.Config.Reasoner.Provider {
	case "ollama":
		return ollama.New(a.Config.Reasoner.URL, model, a.Config.Reasoner.RequestTimeout), nil
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown reasoner provider %q", a.Config.Reasoner.Provider)
	}
}

// Shutdown releases the application's long-lived resources.
func (a *Application) Shutdown(ctx context.Context) {
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown error")
		}
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Publisher close error")
		}
	}
	log.Info().Msg("Application shut down")
}
