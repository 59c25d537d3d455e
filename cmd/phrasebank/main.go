// Command phrasebank expands sensitive topics into example phrase sets and
// caches them in a JSON file for reuse across runs.
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

	"audio-privacy-filter/internal/app"
	"audio-privacy-filter/internal/config"
	"audio-privacy-filter/internal/phrasebank"
)

func main() {
	topicsFlag := flag.String("topics", "", "comma-separated topics to expand")
	bankPath := flag.String("bank", "", "phrase bank file override")
	flag.Parse()

	var topics []string
	for _, t := range strings.Split(*topicsFlag, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	topics = append(topics, flag.Args()...)
	if len(topics) == 0 {
		fmt.Fprintln(os.Stderr, "no topics given: use -topics or positional arguments")
		os.Exit(2)
	}

	cfg := config.Load()
	if *bankPath != "" {
		cfg.PhraseBank.Path = *bankPath
	}

	a := app.New(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := a.Completer(cfg.Reasoner.PhraseModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Reasoner setup failed")
	}

	g := phrasebank.NewGenerator(completer, cfg.PhraseBank.Path, cfg.PhraseBank.MaxAttempts)
	bank, err := g.Generate(ctx, topics)
	if err != nil {
		log.Error().Err(err).Msg("Phrase bank generation failed")
		os.Exit(1)
	}

	var empty int
	for _, topic := range topics {
		if bank[topic].Empty() {
			empty++
		}
	}
	log.Info().
		Str("path", cfg.PhraseBank.Path).
		Int("topics", len(topics)).
		Int("empty", empty).
		Msg("Phrase bank updated")
}
