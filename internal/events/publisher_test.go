package events

import (
	"context"
	"testing"

	"audio-privacy-filter/internal/models"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"nil brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.enabled {
				t.Error("expected publisher to be disabled")
			}
			if p.writer != nil {
				t.Error("expected nil writer when disabled")
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	cfg := &Config{
		Enabled:   false,
		Brokers:   []string{"localhost:9092"},
		Topic:     "privacy.run-reports",
		Principal: "test-principal",
	}

	p := New(cfg)

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topic != "privacy.run-reports" {
		t.Errorf("expected topic 'privacy.run-reports', got %s", p.topic)
	}
}

func TestPublisher_PublishRunReport_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false, Topic: "privacy.run-reports"})

	report := RunReport{
		RunID:        "meeting_20250114",
		SourceFile:   "meeting.wav",
		State:        "DONE",
		Topics:       []string{"salary"},
		SegmentCount: 3,
		Tally:        models.Tally{Safe: 2, Critical: 1},
	}

	if err := p.PublishRunReport(context.Background(), report); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_PublishRunReport_SetsEventType(t *testing.T) {
	p := New(&Config{Enabled: false})

	report := RunReport{RunID: "run-1"}
	if err := p.PublishRunReport(context.Background(), report); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// EventType and Timestamp are stamped inside PublishRunReport before
	// marshalling; the call succeeding without them preset is the contract.
}

func TestPublisher_Close_NoWriter(t *testing.T) {
	p := New(&Config{Enabled: false})

	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing disabled publisher, got %v", err)
	}
}

func TestPublisher_Close_NilWriter(t *testing.T) {
	p := &Publisher{writer: nil}

	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing publisher with nil writer, got %v", err)
	}
}
