package redact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"audio-privacy-filter/internal/models"
	"audio-privacy-filter/internal/service/reason/mock"
)

// stubRephraser returns a fixed rewrite without calling any service.
type stubRephraser struct {
	rewrite string
	calls   int
}

func (s *stubRephraser) Rephrase(ctx context.Context, text string) string {
	s.calls++
	if s.rewrite == "" {
		return Sentinel
	}
	return s.rewrite
}

func classified(label models.Sensitivity, text string) models.Segment {
	return models.Segment{Start: 0, End: 1, Text: text, Confidence: 0.9, Sensitivity: label}
}

func TestPolicy_Apply_Mapping(t *testing.T) {
	rephraser := &stubRephraser{rewrite: "neutral version"}
	policy := NewPolicy(rephraser)

	segs := []models.Segment{
		classified(models.SensitivityCritical, "my salary is 90k"),
		classified(models.SensitivityWarning, "the boss is useless"),
		classified(models.SensitivitySafe, "nice weather today"),
		classified(models.SensitivityUnknown, "could not classify this"),
	}

	out, lines, tally := policy.Apply(context.Background(), segs)

	if out[0].Text != Sentinel {
		t.Errorf("Critical: expected sentinel, got %q", out[0].Text)
	}
	if out[1].Text != "neutral version" {
		t.Errorf("Warning: expected rephrased text, got %q", out[1].Text)
	}
	if out[2].Text != "nice weather today" {
		t.Errorf("Safe: expected unchanged text, got %q", out[2].Text)
	}
	if out[3].Text != "could not classify this" {
		t.Errorf("Unknown: expected unchanged text, got %q", out[3].Text)
	}

	want := models.Tally{Safe: 2, Warning: 1, Critical: 1}
	if tally != want {
		t.Errorf("tally = %+v, want %+v", tally, want)
	}

	expectedLines := []string{Sentinel, "neutral version", "nice weather today", "could not classify this"}
	if len(lines) != len(expectedLines) {
		t.Fatalf("expected %d lines, got %d", len(expectedLines), len(lines))
	}
	for i, want := range expectedLines {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}

	if rephraser.calls != 1 {
		t.Errorf("expected rephraser invoked once (for the Warning segment), got %d calls", rephraser.calls)
	}
}

func TestPolicy_Apply_DoesNotMutateInput(t *testing.T) {
	policy := NewPolicy(&stubRephraser{rewrite: "x"})

	segs := []models.Segment{
		classified(models.SensitivityCritical, "original critical"),
		classified(models.SensitivityWarning, "original warning"),
	}

	policy.Apply(context.Background(), segs)

	if segs[0].Text != "original critical" || segs[1].Text != "original warning" {
		t.Errorf("input slice was mutated: %+v", segs)
	}
}

func TestPolicy_Apply_TallyInvariant(t *testing.T) {
	policy := NewPolicy(&stubRephraser{rewrite: "x"})

	segs := []models.Segment{
		classified(models.SensitivityUnknown, "a"),
		classified(models.SensitivityUnknown, "b"),
		classified("", "c"), // never classified
		classified(models.SensitivityCritical, "d"),
	}

	_, _, tally := policy.Apply(context.Background(), segs)

	if tally.Total() != len(segs) {
		t.Errorf("tally total %d != segment count %d", tally.Total(), len(segs))
	}
	if tally.Safe != 3 {
		t.Errorf("expected Unknown and unlabeled in the safe bucket, got %+v", tally)
	}
}

func TestPolicy_Apply_Deterministic(t *testing.T) {
	policy := NewPolicy(&stubRephraser{rewrite: "same"})

	a := classified(models.SensitivityCritical, "identical text")
	b := classified(models.SensitivityCritical, "identical text")

	outA, _, _ := policy.Apply(context.Background(), []models.Segment{a})
	outB, _, _ := policy.Apply(context.Background(), []models.Segment{b})

	if outA[0].Text != outB[0].Text {
		t.Errorf("same sensitivity and text must map to identical output, got %q vs %q", outA[0].Text, outB[0].Text)
	}
}

func TestRephraser_Fallbacks(t *testing.T) {
	t.Run("call failure", func(t *testing.T) {
		completer := mock.New()
		completer.Err = errors.New("timeout")
		r := NewRephraser(completer)

		if got := r.Rephrase(context.Background(), "some text"); got != Sentinel {
			t.Errorf("expected sentinel on call failure, got %q", got)
		}
	})

	t.Run("empty completion", func(t *testing.T) {
		r := NewRephraser(mock.New("   \n"))
		if got := r.Rephrase(context.Background(), "some text"); got != Sentinel {
			t.Errorf("expected sentinel on empty completion, got %q", got)
		}
	})

	t.Run("trims rewrite", func(t *testing.T) {
		r := NewRephraser(mock.New("  A neutral sentence.  \n"))
		if got := r.Rephrase(context.Background(), "some text"); got != "A neutral sentence." {
			t.Errorf("expected trimmed rewrite, got %q", got)
		}
	})
}

func TestRephrasePrompt_EmbedsTextSafely(t *testing.T) {
	prompt := rephrasePrompt(`he said "pay up"`)
	if !strings.Contains(prompt, `\"pay up\"`) {
		t.Errorf("expected quotes escaped in prompt, got:\n%s", prompt)
	}
}
