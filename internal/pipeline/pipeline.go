// Package pipeline orchestrates classification, redaction and reporting for
// one transcript run.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"audio-privacy-filter/internal/events"
	"audio-privacy-filter/internal/models"
	"audio-privacy-filter/internal/observability/logging"
	"audio-privacy-filter/internal/observability/metrics"
	"audio-privacy-filter/internal/service/classify"
	"audio-privacy-filter/internal/service/redact"
	"audio-privacy-filter/internal/service/report"
)

// Classifier labels one segment of text. Implementations never return an
// error; failures are collapsed into the Result.
type Classifier interface {
	Classify(ctx context.Context, text string, topics []string) classify.Result
}

// Config holds pipeline execution settings.
type Config struct {
	OutputDir   string
	Concurrency int // max in-flight classification calls, min 1
}

// Pipeline runs one transcript through Classifying, Redacting and Reporting.
// Concurrent runs over different transcripts share no mutable state.
type Pipeline struct {
	classifier  Classifier
	policy      *redact.Policy
	publisher   *events.Publisher
	outputDir   string
	concurrency int
	log         zerolog.Logger
	metrics     *metrics.Metrics
}

// New creates a pipeline. The publisher may be a disabled (log-only) one.
func New(classifier Classifier, policy *redact.Policy, publisher *events.Publisher, cfg Config) *Pipeline {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		classifier:  classifier,
		policy:      policy,
		publisher:   publisher,
		outputDir:   cfg.OutputDir,
		concurrency: concurrency,
		log:         logging.WithComponent("pipeline"),
		metrics:     metrics.DefaultMetrics,
	}
}

// Result is the outcome of one run. On a DONE run all fields are populated
// and Artifacts records the per-file write outcomes; on a FAILED run no
// artifacts were written.
type Result struct {
	RunID      string
	State      State
	Classified *models.Transcript
	Redacted   *models.Transcript
	Lines      []string
	Tally      models.Tally
	Report     string
	Artifacts  []Artifact
}

// DeriveRunID returns the shared artifact key for one run: the source file's
// name without its extension, or a generated identifier when there is no
// usable name. The key is used purely for output correlation.
func DeriveRunID(sourceFile string) string {
	base := filepath.Base(sourceFile)
	stem := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "run-" + uuid.NewString()
	}
	return stem
}

// Run processes the transcript at transcriptPath against the given topics.
// It returns an error only for fatal conditions (unreadable or empty
// transcript); per-segment classification failures degrade to Unknown and
// the run completes. Cancellation mid-classification also completes the run:
// already-classified segments keep their labels, the rest stay Unknown, and
// a full consistent artifact set is still written.
func (p *Pipeline) Run(ctx context.Context, transcriptPath string, topics []string, runID string) (*Result, error) {
	start := time.Now()
	lc := NewLifecycle()
	logr := logging.WithRun(runID)

	step := func(next State) {
		if err := lc.To(next); err != nil {
			logr.Error().Err(err).Msg("Run lifecycle violation")
			return
		}
		logr.Debug().Str("state", next.String()).Msg("Run state changed")
	}

	transcript, err := models.LoadTranscript(transcriptPath)
	if err != nil {
		step(StateFailed)
		p.metrics.RecordRun("failed", time.Since(start).Seconds())
		logr.Error().Err(err).Str("path", transcriptPath).Msg("Run failed, no artifacts written")
		return &Result{RunID: runID, State: StateFailed}, err
	}

	logr.Info().
		Str("file", transcript.File).
		Str("language", transcript.Language).
		Int("segments", len(transcript.Segments)).
		Strs("topics", topics).
		Msg("Transcript loaded")

	step(StateClassifying)
	p.classifySegments(ctx, transcript, topics)

	step(StateRedacting)
	redacted := transcript.Clone()
	segs, lines, tally := p.policy.Apply(ctx, redacted.Segments)
	redacted.Segments = segs

	step(StateReporting)
	reportText := report.Summarize(redacted.Segments, topics, runID)
	artifacts := p.persist(runID, transcript, redacted, lines, reportText)

	step(StateDone)
	p.metrics.RecordRun("done", time.Since(start).Seconds())
	logr.Info().
		Int("safe", tally.Safe).
		Int("warning", tally.Warning).
		Int("critical", tally.Critical).
		Dur("took", time.Since(start)).
		Msg("Run complete")

	p.publishRunReport(ctx, runID, transcript, topics, tally)

	return &Result{
		RunID:      runID,
		State:      lc.State(),
		Classified: transcript,
		Redacted:   redacted,
		Lines:      lines,
		Tally:      tally,
		Report:     reportText,
		Artifacts:  artifacts,
	}, nil
}

// classifySegments labels every segment, dispatching up to p.concurrency
// calls at a time. Segments are independent; results are written back by
// index so transcript order is preserved regardless of completion order.
func (p *Pipeline) classifySegments(ctx context.Context, transcript *models.Transcript, topics []string) {
	results := make([]classify.Result, len(transcript.Segments))

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i := range transcript.Segments {
		// Stop dispatching once the run is cancelled; the remaining
		// segments stay Unknown and the run degrades gracefully.
		if ctx.Err() != nil {
			results[i] = classify.Result{
				Sensitivity: models.SensitivityUnknown,
				Rationale:   "classification cancelled",
			}
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.classifier.Classify(ctx, text, topics)
		}(i, transcript.Segments[i].Text)
	}
	wg.Wait()

	for i := range transcript.Segments {
		transcript.Segments[i].Sensitivity = results[i].Sensitivity
		transcript.Segments[i].Rationale = results[i].Rationale
		p.metrics.RecordSegment(string(results[i].Sensitivity))
	}
}

// publishRunReport emits the run summary event. Publish failures are logged
// and never affect the run outcome.
func (p *Pipeline) publishRunReport(ctx context.Context, runID string, transcript *models.Transcript, topics []string, tally models.Tally) {
	if p.publisher == nil {
		return
	}

	// The run may have been cancelled; the report still goes out.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	err := p.publisher.PublishRunReport(pubCtx, events.RunReport{
		RunID:        runID,
		SourceFile:   transcript.File,
		Language:     transcript.Language,
		State:        StateDone.String(),
		Topics:       topics,
		SegmentCount: len(transcript.Segments),
		Tally:        tally,
	})
	if err != nil {
		logger := logging.WithRun(runID)
		logger.Warn().Err(err).Msg("Run report publish failed")
	}
}
