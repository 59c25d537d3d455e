// Package classify labels transcript segments against sensitive topics via
// the external reasoning service.
package classify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"audio-privacy-filter/internal/models"
	"audio-privacy-filter/internal/observability/logging"
	"audio-privacy-filter/internal/observability/metrics"
	"audio-privacy-filter/internal/service/reason"
)

// defaultRationale is attached when the reasoner omits its explanation.
const defaultRationale = "No rationale provided."

// Result is the outcome of classifying one segment. Failures are already
// collapsed: a Result always carries a usable label.
type Result struct {
	Sensitivity models.Sensitivity
	Rationale   string
}

// Classifier issues one reasoner call per segment. There is no retry at this
// layer; transport-level failures degrade to Unknown so a bad segment never
// aborts the batch.
type Classifier struct {
	completer reason.Completer
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

// New creates a classifier over the given completer.
func New(completer reason.Completer) *Classifier {
	return &Classifier{
		completer: completer,
		log:       logging.WithComponent("classifier"),
		metrics:   metrics.DefaultMetrics,
	}
}

// classifyResponse is the object the prompt demands from the reasoner.
type classifyResponse struct {
	Sensitivity string `json:"sensitivity"`
	Reason      string `json:"reason"`
}

// Classify labels one segment of text. It never returns an error: any
// network, status, or parse failure yields Unknown with a short failure
// description in the rationale.
func (c *Classifier) Classify(ctx context.Context, text string, topics []string) Result {
	prompt := classifyPrompt(text, topics)

	start := time.Now()
	raw, err := c.completer.Complete(ctx, prompt)
	c.metrics.RecordReasonerCall("classify", err, time.Since(start).Seconds())

	if err != nil {
		c.log.Warn().Err(err).Str("text", excerpt(text)).Msg("Classification call failed")
		return Result{
			Sensitivity: models.SensitivityUnknown,
			Rationale:   "classification failed: " + err.Error(),
		}
	}

	obj, err := reason.ExtractObject(raw)
	if err != nil {
		c.log.Warn().Err(err).Str("text", excerpt(text)).Msg("Classification response had no object")
		return Result{
			Sensitivity: models.SensitivityUnknown,
			Rationale:   "unparseable response: " + err.Error(),
		}
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		c.log.Warn().Err(err).Str("text", excerpt(text)).Msg("Classification response failed to decode")
		return Result{
			Sensitivity: models.SensitivityUnknown,
			Rationale:   "unparseable response: " + err.Error(),
		}
	}

	rationale := parsed.Reason
	if rationale == "" {
		rationale = defaultRationale
	}
	return Result{
		Sensitivity: models.ParseSensitivity(parsed.Sensitivity),
		Rationale:   rationale,
	}
}

// excerpt truncates segment text for log lines.
func excerpt(text string) string {
	const max = 40
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
