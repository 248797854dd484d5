package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/mazinbersy/asicflow/internal/logging"
)

// Storage persists Run reports as JSON (optionally gzipped) files under
// a per-run-invocation directory (spec.md §6 "build/<design>/").
type Storage struct {
	outputDir string
	gzip      bool
	keepLastN int
	log       *logging.Logger
}

// NewStorage creates outputDir if needed and returns a Storage bound to
// it. keepLastN <= 0 disables pruning.
func NewStorage(outputDir string, gzipEnabled bool, keepLastN int, log *logging.Logger) (*Storage, error) {
	if log == nil {
		log = logging.Nop()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report output dir: %w", err)
	}
	return &Storage{outputDir: outputDir, gzip: gzipEnabled, keepLastN: keepLastN, log: log}, nil
}

// NewRun starts a Run with a fresh uuid RunID (the Go-native analogue of
// the teacher's generated TestID) for the given stage/design pair.
func NewRun(stage, design string) *Run {
	return &Run{
		RunID:  uuid.NewString(),
		Stage:  stage,
		Design: design,
	}
}

// Save writes r to <stage>-<runID>.json[.gz] under the storage directory.
func (s *Storage) Save(r *Run) (string, error) {
	name := fmt.Sprintf("%s-%s.json", r.Stage, r.RunID)
	if s.gzip {
		name += ".gz"
	}
	path := filepath.Join(s.outputDir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run report: %w", err)
	}

	if err := writeMaybeGzipped(path, data, s.gzip); err != nil {
		return "", err
	}

	s.log.Info("run report saved", "path", path, "stage", r.Stage, "status", r.Status)

	if s.keepLastN > 0 {
		if err := s.prune(); err != nil {
			s.log.Warn("prune old reports failed", "error", err)
		}
	}
	return path, nil
}

func writeMaybeGzipped(path string, data []byte, useGzip bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if !useGzip {
		_, err := f.Write(data)
		return err
	}
	gw := gzip.NewWriter(f)
	defer gw.Close()
	_, err = gw.Write(data)
	return err
}

// Load reads a Run report from path, transparently decompressing if the
// file is gzipped.
func (s *Storage) Load(path string) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip report: %w", err)
		}
		defer gr.Close()
		r = gr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &run, nil
}

// List returns every report in the storage directory, newest first.
func (s *Storage) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("read report output dir: %w", err)
	}

	var summaries []Summary
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".json.gz") {
			continue
		}
		path := filepath.Join(s.outputDir, name)
		run, err := s.Load(path)
		if err != nil {
			s.log.Warn("failed to load report", "path", path, "error", err)
			continue
		}
		summaries = append(summaries, Summary{
			RunID:     run.RunID,
			Stage:     run.Stage,
			Design:    run.Design,
			StartTime: run.StartTime,
			Status:    run.Status,
			Filepath:  path,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].StartTime.After(summaries[j].StartTime) })
	return summaries, nil
}

func (s *Storage) prune() error {
	summaries, err := s.List()
	if err != nil {
		return err
	}
	if len(summaries) <= s.keepLastN {
		return nil
	}
	for _, stale := range summaries[s.keepLastN:] {
		if err := os.Remove(stale.Filepath); err != nil {
			s.log.Warn("failed to delete old report", "path", stale.Filepath, "error", err)
		}
	}
	return nil
}
