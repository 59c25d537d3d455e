// Command redactor runs a transcript through the privacy pipeline: every
// segment is classified against the monitored topics, the redaction policy
// is applied, and four artifacts are written under a shared run identifier.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"audio-privacy-filter/internal/app"
	"audio-privacy-filter/internal/config"
	"audio-privacy-filter/internal/pipeline"
	"audio-privacy-filter/internal/service/classify"
	"audio-privacy-filter/internal/service/redact"
)

func main() {
	topicsFlag := flag.String("topics", "", "comma-separated sensitive topics to monitor")
	topicsFile := flag.String("topics-file", "", "YAML file holding a list of sensitive topics")
	outDir := flag.String("out", "", "output directory override")
	runID := flag.String("run-id", "", "run identifier override (defaults to the transcript file name)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <transcript.json>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	transcriptPath := flag.Arg(0)

	topics, err := resolveTopics(*topicsFlag, *topicsFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(topics) == 0 {
		fmt.Fprintln(os.Stderr, "no topics given: use -topics or -topics-file")
		os.Exit(2)
	}

	cfg := config.Load()
	if *outDir != "" {
		cfg.Pipeline.OutputDir = *outDir
	}

	a := app.New(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	classifyCompleter, err := a.Completer(cfg.Reasoner.ClassifyModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Reasoner setup failed")
	}
	phraseCompleter, err := a.Completer(cfg.Reasoner.PhraseModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Reasoner setup failed")
	}

	p := pipeline.New(
		classify.New(classifyCompleter),
		redact.NewPolicy(redact.NewRephraser(phraseCompleter)),
		a.Publisher,
		pipeline.Config{
			OutputDir:   cfg.Pipeline.OutputDir,
			Concurrency: cfg.Pipeline.ClassifyConcurrency,
		},
	)

	id := *runID
	if id == "" {
		id = pipeline.DeriveRunID(transcriptPath)
	}

	res, err := p.Run(ctx, transcriptPath, topics, id)
	if err != nil {
		log.Error().Err(err).Str("runId", id).Msg("Run failed")
		os.Exit(1)
	}

	fmt.Print(res.Report)
}

// resolveTopics merges the flag and file sources, trimming blanks and
// dropping duplicates while preserving first-seen order.
func resolveTopics(flagValue, filePath string) ([]string, error) {
	var raw []string
	for _, t := range strings.Split(flagValue, ",") {
		raw = append(raw, t)
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read topics file: %w", err)
		}
		var fromFile []string
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("parse topics file: %w", err)
		}
		raw = append(raw, fromFile...)
	}

	seen := make(map[string]bool)
	var topics []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		topics = append(topics, t)
	}
	return topics, nil
}
