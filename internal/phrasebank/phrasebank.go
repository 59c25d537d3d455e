// Package phrasebank builds per-topic example phrase sets used to seed
// synthetic transcripts and review material. Unlike classification, phrase
// generation has no fallback value that keeps a run useful, so malformed
// responses are retried a bounded number of times before giving up.
package phrasebank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"audio-privacy-filter/internal/observability/logging"
	"audio-privacy-filter/internal/observability/metrics"
	"audio-privacy-filter/internal/service/reason"
)

// PhraseSet holds example utterances for one topic, grouped by how a
// privacy reviewer would label them.
type PhraseSet struct {
	Safe     []string `json:"safe"`
	Warning  []string `json:"warning"`
	Critical []string `json:"critical"`
}

// Empty reports whether the set carries no phrases at all.
func (s PhraseSet) Empty() bool {
	return len(s.Safe) == 0 && len(s.Warning) == 0 && len(s.Critical) == 0
}

// Bank maps a topic to its phrase set.
type Bank map[string]PhraseSet

// Generator produces phrase sets via the reasoning service and caches them
// in a JSON file so repeated runs over the same topics cost nothing.
type Generator struct {
	completer   reason.Completer
	path        string
	maxAttempts uint64
	log         zerolog.Logger
	metrics     *metrics.Metrics
}

// NewGenerator creates a generator caching at path. maxAttempts bounds the
// calls per topic; values below 1 are raised to 1.
func NewGenerator(completer reason.Completer, path string, maxAttempts int) *Generator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Generator{
		completer:   completer,
		path:        path,
		maxAttempts: uint64(maxAttempts),
		log:         logging.WithComponent("phrasebank"),
		metrics:     metrics.DefaultMetrics,
	}
}

func phrasePrompt(topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate example workplace utterances about the topic %q.\n\n", topic)
	b.WriteString("Produce three groups:\n")
	b.WriteString("- \"safe\": 3 sentences that mention the topic in a harmless, compliant way.\n")
	b.WriteString("- \"warning\": 3 sentences that are borderline and would need rewording.\n")
	b.WriteString("- \"critical\": 3 sentences that clearly disclose sensitive information.\n\n")
	b.WriteString("Respond ONLY with a JSON object of this exact format:\n")
	b.WriteString(`{"safe": ["..."], "warning": ["..."], "critical": ["..."]}`)
	b.WriteString("\n")
	return b.String()
}

// Generate returns phrase sets for every topic, consulting the cache first.
// A topic whose generation exhausts all attempts gets an empty set; the
// remaining topics are still processed. The updated bank is saved back to
// the cache file before returning.
func (g *Generator) Generate(ctx context.Context, topics []string) (Bank, error) {
	bank := g.load()

	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if cached, ok := bank[topic]; ok && !cached.Empty() {
			g.log.Debug().Str("topic", topic).Msg("Phrase set cached, skipping")
			continue
		}

		set, err := g.generateTopic(ctx, topic)
		if err != nil {
			g.log.Warn().
				Err(err).
				Str("topic", topic).
				Uint64("attempts", g.maxAttempts).
				Msg("Phrase generation exhausted retries, storing empty set")
			set = PhraseSet{}
		}
		bank[topic] = set

		if ctx.Err() != nil {
			break
		}
	}

	if err := g.save(bank); err != nil {
		return bank, fmt.Errorf("save phrase bank: %w", err)
	}
	return bank, nil
}

// generateTopic asks the reasoning service for one topic's phrase set,
// retrying with exponential backoff while responses stay unusable.
func (g *Generator) generateTopic(ctx context.Context, topic string) (PhraseSet, error) {
	var set PhraseSet

	operation := func() error {
		start := time.Now()
		raw, err := g.completer.Complete(ctx, phrasePrompt(topic))
		g.metrics.RecordReasonerCall("phrasebank", err, time.Since(start).Seconds())
		if err != nil {
			return fmt.Errorf("phrase call for %q: %w", topic, err)
		}

		obj, err := reason.ExtractObject(raw)
		if err != nil {
			return fmt.Errorf("phrase response for %q: %w", topic, err)
		}

		var parsed PhraseSet
		if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
			return fmt.Errorf("decode phrase response for %q: %w", topic, err)
		}
		if len(parsed.Safe) == 0 || len(parsed.Warning) == 0 || len(parsed.Critical) == 0 {
			return fmt.Errorf("phrase response for %q missing a group", topic)
		}

		set = parsed
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), g.maxAttempts-1),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return PhraseSet{}, err
	}

	g.log.Info().
		Str("topic", topic).
		Int("safe", len(set.Safe)).
		Int("warning", len(set.Warning)).
		Int("critical", len(set.Critical)).
		Msg("Phrase set generated")
	return set, nil
}

// load reads the cache file. A missing or corrupt file yields an empty bank;
// the generator regenerates what it needs.
func (g *Generator) load() Bank {
	bank := Bank{}
	data, err := os.ReadFile(g.path)
	if err != nil {
		if !os.IsNotExist(err) {
			g.log.Warn().Err(err).Str("path", g.path).Msg("Phrase bank unreadable, starting empty")
		}
		return bank
	}
	if err := json.Unmarshal(data, &bank); err != nil {
		g.log.Warn().Err(err).Str("path", g.path).Msg("Phrase bank corrupt, starting empty")
		return Bank{}
	}
	return bank
}

// save writes the bank atomically next to its final path.
func (g *Generator) save(bank Bank) error {
	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".phrasebank-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bank); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, g.path)
}
