// Package redact applies the redaction policy to classified segments.
package redact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"audio-privacy-filter/internal/models"
	"audio-privacy-filter/internal/observability/logging"
	"audio-privacy-filter/internal/observability/metrics"
	"audio-privacy-filter/internal/service/reason"
)

// Sentinel replaces Critical text, and Warning text whose neutral rewrite
// could not be produced. Fail-safe: the original text must never leak.
const Sentinel = "[[REDACTED]]"

// TextRephraser produces a neutralized rewrite of a sentence.
type TextRephraser interface {
	Rephrase(ctx context.Context, text string) string
}

// Rephraser asks the reasoning service for a neutral rewrite. One call per
// segment, no retry; any failure falls back to the sentinel.
type Rephraser struct {
	completer reason.Completer
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

// NewRephraser creates a rephraser over the given completer.
func NewRephraser(completer reason.Completer) *Rephraser {
	return &Rephraser{
		completer: completer,
		log:       logging.WithComponent("rephraser"),
		metrics:   metrics.DefaultMetrics,
	}
}

func rephrasePrompt(text string) string {
	var b strings.Builder
	b.WriteString("Rephrase the following workplace sentence to be more neutral, professional, and compliant, without changing its meaning.\n\n")
	fmt.Fprintf(&b, "Original:\n%q\n\n", text)
	b.WriteString("Return ONLY the rewritten sentence.\n")
	return b.String()
}

// Rephrase returns the neutralized rewrite, or the sentinel if the service
// fails or returns nothing usable. The result is used verbatim as the new
// segment text.
func (r *Rephraser) Rephrase(ctx context.Context, text string) string {
	start := time.Now()
	raw, err := r.completer.Complete(ctx, rephrasePrompt(text))
	r.metrics.RecordReasonerCall("rephrase", err, time.Since(start).Seconds())

	if err != nil {
		r.log.Warn().Err(err).Msg("Rephrase call failed, redacting instead")
		return Sentinel
	}
	out := strings.TrimSpace(raw)
	if out == "" {
		r.log.Warn().Msg("Rephrase returned empty text, redacting instead")
		return Sentinel
	}
	return out
}

// Policy maps classified segments to their output text.
type Policy struct {
	rephraser TextRephraser
}

// NewPolicy creates the redaction policy backed by the given rephraser.
func NewPolicy(rephraser TextRephraser) *Policy {
	return &Policy{rephraser: rephraser}
}

// Apply folds the policy over segs in order and returns the policy-applied
// copy, the flat redacted lines (one per segment, trimmed), and the tally.
// The input slice is never mutated.
//
// Critical text becomes the sentinel; Warning text is rephrased; Safe text
// passes through. Unknown and unlabeled segments also pass through and count
// as safe: failed classification stays visible through the rationale field
// rather than being dropped. Treating Unknown conservatively instead is a
// stakeholder policy decision, not taken here.
func (p *Policy) Apply(ctx context.Context, segs []models.Segment) ([]models.Segment, []string, models.Tally) {
	out := make([]models.Segment, len(segs))
	copy(out, segs)

	lines := make([]string, 0, len(segs))
	var tally models.Tally

	for i := range out {
		switch out[i].Sensitivity {
		case models.SensitivityCritical:
			out[i].Text = Sentinel
		case models.SensitivityWarning:
			out[i].Text = p.rephraser.Rephrase(ctx, out[i].Text)
		}
		tally.Add(out[i].Sensitivity)
		lines = append(lines, strings.TrimSpace(out[i].Text))
	}
	return out, lines, tally
}
