package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/arkilian/readbench/internal/bench"
)

// CompressedSuffix is appended to snappy-encoded report files and objects.
const CompressedSuffix = ".sz"

// RunReport is the machine-readable record of one benchmark run.
type RunReport struct {
	RunID           string        `json:"run_id"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Engine          string        `json:"engine"`
	Path            string        `json:"path"`
	MaxConnections  int           `json:"max_connections"`
	Step            int           `json:"step"`
	DatasetChecksum uint32        `json:"dataset_checksum"`
	DatasetRows     int           `json:"dataset_rows"`
	Levels          []LevelReport `json:"levels"`
	Halted          bool          `json:"halted"`
	Interrupted     bool          `json:"interrupted"`
	MaxSustained    int           `json:"max_sustained"`
}

// LevelReport is the JSON form of bench.LevelResult.
type LevelReport struct {
	Attempted      int      `json:"attempted"`
	Successful     int      `json:"successful"`
	Failed         int      `json:"failed"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	FirstError     string   `json:"first_error,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

// Meta describes the run a report belongs to.
type Meta struct {
	Engine          string
	Path            string
	MaxConnections  int
	Step            int
	DatasetChecksum uint32
	DatasetRows     int
}

// NewRunReport starts a report with a fresh run ID.
func NewRunReport(meta Meta, startedAt time.Time) *RunReport {
	return &RunReport{
		RunID:           uuid.New().String(),
		StartedAt:       startedAt.UTC(),
		Engine:          meta.Engine,
		Path:            meta.Path,
		MaxConnections:  meta.MaxConnections,
		Step:            meta.Step,
		DatasetChecksum: meta.DatasetChecksum,
		DatasetRows:     meta.DatasetRows,
		Levels:          []LevelReport{},
	}
}

// Complete records the sweep outcome.
func (r *RunReport) Complete(sweep bench.SweepResult, finishedAt time.Time) {
	r.FinishedAt = finishedAt.UTC()
	r.Halted = sweep.Halted
	r.Interrupted = sweep.Interrupted
	r.MaxSustained = sweep.MaxSustained()

	r.Levels = make([]LevelReport, 0, len(sweep.Levels))
	for _, level := range sweep.Levels {
		r.Levels = append(r.Levels, LevelReport{
			Attempted:      level.Attempted,
			Successful:     level.Successful,
			Failed:         level.Failed(),
			ElapsedSeconds: level.Elapsed.Seconds(),
			FirstError:     level.FirstError(),
			Errors:         level.Errors,
		})
	}
}

// Encode marshals the report as indented JSON, snappy-encoded if compress.
func (r *RunReport) Encode(compress bool) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	if compress {
		return snappy.Encode(nil, data), nil
	}
	return data, nil
}

// Decode parses a report produced by Encode.
func Decode(data []byte, compressed bool) (*RunReport, error) {
	if compressed {
		raw, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress report: %w", err)
		}
		data = raw
	}

	var r RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}

// WriteFile writes the encoded report to path and returns the path actually
// written; compressed reports gain CompressedSuffix.
func (r *RunReport) WriteFile(filePath string, compress bool) (string, error) {
	data, err := r.Encode(compress)
	if err != nil {
		return "", err
	}

	if compress && !strings.HasSuffix(filePath, CompressedSuffix) {
		filePath += CompressedSuffix
	}

	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return filePath, nil
}

// ObjectPath returns the storage key the report is published under.
func (r *RunReport) ObjectPath(compress bool) string {
	name := r.RunID + ".json"
	if compress {
		name += CompressedSuffix
	}
	return path.Join("reports", name)
}
