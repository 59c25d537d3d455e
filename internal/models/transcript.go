// Package models defines the transcript data structures shared by the pipeline.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Sensitivity is the classification label attached to a segment.
type Sensitivity string

const (
	// SensitivitySafe - harmless, compliant content.
	SensitivitySafe Sensitivity = "Safe"
	// SensitivityWarning - possibly sensitive, questionable content.
	SensitivityWarning Sensitivity = "Warning"
	// SensitivityCritical - private, policy-violating, or high-risk content.
	SensitivityCritical Sensitivity = "Critical"
	// SensitivityUnknown - classification failed or was unparseable.
	// A first-class terminal value, not an error state.
	SensitivityUnknown Sensitivity = "Unknown"
)

// ParseSensitivity normalizes a label from the reasoner. Anything outside the
// taxonomy maps to Unknown.
func ParseSensitivity(s string) Sensitivity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe":
		return SensitivitySafe
	case "warning":
		return SensitivityWarning
	case "critical":
		return SensitivityCritical
	default:
		return SensitivityUnknown
	}
}

// Flagged reports whether the label marks content for the report excerpt.
func (s Sensitivity) Flagged() bool {
	return s == SensitivityWarning || s == SensitivityCritical
}

// Timestamp is a time offset in seconds. It marshals to the transcription
// collaborator's MM:SS.mmm wire format, preserving millisecond precision.
type Timestamp float64

// Seconds returns the offset as a float64 second count.
func (t Timestamp) Seconds() float64 { return float64(t) }

// String formats the offset as MM:SS.mmm.
func (t Timestamp) String() string {
	total := float64(t)
	if total < 0 {
		total = 0
	}
	minutes := int(total) / 60
	secs := int(total) % 60
	millis := int(math.Round((total - math.Floor(total)) * 1000))
	if millis == 1000 {
		millis = 0
		secs++
		if secs == 60 {
			secs = 0
			minutes++
		}
	}
	return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, millis)
}

// MarshalJSON encodes the timestamp as a MM:SS.mmm string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either the MM:SS.mmm string format or a plain number
// of seconds.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := parseTimestamp(s)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*t = Timestamp(f)
	return nil
}

func parseTimestamp(s string) (Timestamp, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q: want MM:SS.mmm", s)
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("invalid timestamp minutes in %q", s)
	}
	secs, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || secs < 0 || secs >= 60 {
		return 0, fmt.Errorf("invalid timestamp seconds in %q", s)
	}
	return Timestamp(float64(minutes)*60 + secs), nil
}

// DefaultConfidence is used when per-word recognition probabilities are
// unavailable.
const DefaultConfidence = 0.75

// Segment is one timed span of transcribed speech.
//
// Sensitivity and Rationale are written exactly once by the classifier during
// pipeline execution. Text is overwritten by the redaction policy, but only
// on a cloned transcript; the classified snapshot keeps the original text.
type Segment struct {
	Start       Timestamp   `json:"start"`
	End         Timestamp   `json:"end"`
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	Sensitivity Sensitivity `json:"sensitivity,omitempty"`
	Rationale   string      `json:"rationale,omitempty"`
}

// LanguageWarning carries the transcription collaborator's low-confidence
// language detection hint.
type LanguageWarning struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message,omitempty"`
}

// Transcript is the unit of work for one audio source.
type Transcript struct {
	File            string           `json:"file"`
	Language        string           `json:"language"`
	LanguageWarning *LanguageWarning `json:"language_warning,omitempty"`
	Segments        []Segment        `json:"segments"`
	RawText         string           `json:"raw_text,omitempty"`
}

// Clone returns an independent deep copy. Mutating the clone's segments
// never touches the receiver.
func (t *Transcript) Clone() *Transcript {
	out := *t
	if t.LanguageWarning != nil {
		lw := *t.LanguageWarning
		out.LanguageWarning = &lw
	}
	out.Segments = make([]Segment, len(t.Segments))
	copy(out.Segments, t.Segments)
	return &out
}

// ErrNoSegments marks a transcript with no speech detected. Runs over such
// transcripts fail before any artifact is written.
var ErrNoSegments = errors.New("no speech detected")

// Validate checks the transcript invariants and normalizes segment
// confidence: values outside (0,1] are treated as unavailable and replaced
// with DefaultConfidence.
func (t *Transcript) Validate() error {
	if len(t.Segments) == 0 {
		return ErrNoSegments
	}
	for i := range t.Segments {
		seg := &t.Segments[i]
		if seg.Start < 0 {
			return fmt.Errorf("segment %d: negative start %s", i, seg.Start)
		}
		if seg.End <= seg.Start {
			return fmt.Errorf("segment %d: end %s not after start %s", i, seg.End, seg.Start)
		}
		if strings.TrimSpace(seg.Text) == "" {
			return fmt.Errorf("segment %d: empty text", i)
		}
		if seg.Confidence <= 0 || seg.Confidence > 1 {
			seg.Confidence = DefaultConfidence
		}
	}
	return nil
}

// Tally counts segments by sensitivity for one run. Counts are only ever
// incremented.
type Tally struct {
	Safe     int `json:"safe"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// Add folds one label into the tally. Unknown and unlabeled segments count
// as safe; the output policy treats them the same way.
func (c *Tally) Add(s Sensitivity) {
	switch s {
	case SensitivityWarning:
		c.Warning++
	case SensitivityCritical:
		c.Critical++
	default:
		c.Safe++
	}
}

// Total returns the number of segments counted.
func (c Tally) Total() int {
	return c.Safe + c.Warning + c.Critical
}

// LoadTranscript reads and validates a transcription document from disk.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
