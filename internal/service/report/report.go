// Package report builds the privacy summary for one pipeline run.
package report

import (
	"fmt"
	"strings"

	"audio-privacy-filter/internal/models"
)

// RationaleLimit caps the report's rationale excerpt. Presentation only: the
// full rationale set stays in the classified and redacted artifacts.
const RationaleLimit = 10

// Summarize formats the privacy report for a set of redacted segments.
// Per-label counts are recomputed here from the segments' sensitivity
// fields, independently of the redaction tally, so the two can be
// cross-checked. Rationales of Warning and Critical segments are listed in
// transcript order, truncated to the first RationaleLimit.
func Summarize(segments []models.Segment, topics []string, runID string) string {
	var tally models.Tally
	var rationales []string
	for _, s := range segments {
		tally.Add(s.Sensitivity)
		if s.Sensitivity.Flagged() && len(rationales) < RationaleLimit {
			rationales = append(rationales, "- "+s.Rationale)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Privacy Scan Summary - %s\n\n", runID)
	fmt.Fprintf(&b, "Monitored Topics: %s\n", strings.Join(topics, ", "))
	fmt.Fprintf(&b, "Total Segments: %d\n", len(segments))
	fmt.Fprintf(&b, "Safe: %d\n", tally.Safe)
	fmt.Fprintf(&b, "Rephrased (Warning): %d\n", tally.Warning)
	fmt.Fprintf(&b, "Redacted (Critical): %d\n\n", tally.Critical)

	b.WriteString("Top Flagged Rationales:\n")
	if len(rationales) == 0 {
		b.WriteString("None flagged.\n")
	} else {
		b.WriteString(strings.Join(rationales, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// Recount derives per-label counts from a redacted segment set. Used to
// verify a persisted artifact against the tally recorded during its run.
func Recount(segments []models.Segment) models.Tally {
	var tally models.Tally
	for _, s := range segments {
		tally.Add(s.Sensitivity)
	}
	return tally
}
