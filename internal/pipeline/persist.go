package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audio-privacy-filter/internal/models"
	"audio-privacy-filter/internal/observability/logging"
)

// Artifact names; the on-disk file is "<name>_<runID>.<ext>".
const (
	ArtifactClassified   = "classified_transcript"
	ArtifactRedacted     = "redacted_transcript"
	ArtifactRedactedText = "redacted_text"
	ArtifactReport       = "privacy_report"
)

// Artifact records the write outcome for one output file.
type Artifact struct {
	Name string
	Path string
	Err  error
}

// persist writes the four artifacts for one run. Writes are independent: a
// failure is logged and recorded on its Artifact, and the remaining files
// are still written.
func (p *Pipeline) persist(runID string, classified, redacted *models.Transcript, lines []string, reportText string) []Artifact {
	logr := logging.WithRun(runID)

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		logr.Error().Err(err).Str("dir", p.outputDir).Msg("Failed to create output directory")
		return []Artifact{
			{Name: ArtifactClassified, Err: err},
			{Name: ArtifactRedacted, Err: err},
			{Name: ArtifactRedactedText, Err: err},
			{Name: ArtifactReport, Err: err},
		}
	}

	text := strings.Join(lines, "\n")
	if len(lines) > 0 {
		text += "\n"
	}

	artifacts := []Artifact{
		p.writeArtifact(runID, ArtifactClassified, "json", func(path string) error {
			return writeJSON(path, classified)
		}),
		p.writeArtifact(runID, ArtifactRedacted, "json", func(path string) error {
			return writeJSON(path, redacted)
		}),
		p.writeArtifact(runID, ArtifactRedactedText, "txt", func(path string) error {
			return os.WriteFile(path, []byte(text), 0o644)
		}),
		p.writeArtifact(runID, ArtifactReport, "txt", func(path string) error {
			return os.WriteFile(path, []byte(reportText), 0o644)
		}),
	}
	return artifacts
}

func (p *Pipeline) writeArtifact(runID, name, ext string, write func(path string) error) Artifact {
	logr := logging.WithRun(runID)
	path := filepath.Join(p.outputDir, fmt.Sprintf("%s_%s.%s", name, runID, ext))

	err := write(path)
	p.metrics.RecordArtifactWrite(name, err)
	if err != nil {
		logr.Error().Err(err).Str("artifact", name).Str("path", path).Msg("Artifact write failed")
	} else {
		logr.Info().Str("artifact", name).Str("path", path).Msg("Artifact saved")
	}
	return Artifact{Name: name, Path: path, Err: err}
}

// writeJSON writes v atomically: encode to a temp file in the target
// directory, then rename over the final path. A reader never observes a
// half-assembled artifact.
func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
