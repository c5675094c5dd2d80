package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/readbench/internal/bench"
)

func TestTextReporter_CompleteLevel(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf)

	r.ReportLevel(bench.LevelResult{Attempted: 50, Successful: 50, Elapsed: 1234 * time.Millisecond})
	r.ReportSweep(bench.SweepResult{})

	expected := "Attempted concurrent connections: 50\n" +
		"Successful queries: 50\n" +
		"Time taken: 1.23 seconds\n" +
		"---\n"
	assert.Equal(t, expected, buf.String())
}

func TestTextReporter_FailedLevelAndHalt(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf)

	level := bench.LevelResult{
		Attempted:  100,
		Successful: 80,
		Elapsed:    2 * time.Second,
		Errors:     []string{"database is locked", "too many open files"},
	}
	r.ReportLevel(level)
	r.ReportSweep(bench.SweepResult{Levels: []bench.LevelResult{level}, Halted: true})

	expected := "Attempted concurrent connections: 100\n" +
		"Successful queries: 80\n" +
		"Time taken: 2.00 seconds\n" +
		"Errors encountered: 2\n" +
		"First error: database is locked\n" +
		"---\n" +
		"Failed to complete all concurrent queries. Stopping benchmark.\n"
	assert.Equal(t, expected, buf.String())
	assert.NotContains(t, buf.String(), "too many open files")
}

func sampleSweep() bench.SweepResult {
	return bench.SweepResult{
		Levels: []bench.LevelResult{
			{Attempted: 50, Successful: 50, Elapsed: 500 * time.Millisecond},
			{Attempted: 100, Successful: 97, Elapsed: time.Second, Errors: []string{"a", "b", "c"}},
		},
		Halted: true,
	}
}

func TestRunReport_Complete(t *testing.T) {
	started := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	r := NewRunReport(Meta{Engine: "sqlite3", Path: "benchmark.db", MaxConnections: 150, Step: 50, DatasetRows: 3}, started)
	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)

	r.Complete(sampleSweep(), started.Add(3*time.Second))

	require.Len(t, r.Levels, 2)
	assert.Equal(t, 3, r.Levels[1].Failed)
	assert.Equal(t, "a", r.Levels[1].FirstError)
	assert.Empty(t, r.Levels[0].FirstError)
	assert.True(t, r.Halted)
	assert.Equal(t, 50, r.MaxSustained)
	assert.Equal(t, started.Add(3*time.Second), r.FinishedAt)
}

func TestRunReport_EncodeDecode(t *testing.T) {
	for _, compress := range []bool{false, true} {
		r := NewRunReport(Meta{Engine: "sqlite", Path: "benchmark.db", DatasetChecksum: 0xdeadbeef}, time.Now())
		r.Complete(sampleSweep(), time.Now())

		data, err := r.Encode(compress)
		require.NoError(t, err)

		decoded, err := Decode(data, compress)
		require.NoError(t, err)
		assert.Equal(t, r.RunID, decoded.RunID)
		assert.Equal(t, uint32(0xdeadbeef), decoded.DatasetChecksum)
		assert.Equal(t, r.Levels, decoded.Levels)
	}
}

func TestRunReport_WriteFileAddsSuffixWhenCompressed(t *testing.T) {
	dir := t.TempDir()
	r := NewRunReport(Meta{Engine: "sqlite3"}, time.Now())
	r.Complete(sampleSweep(), time.Now())

	written, err := r.WriteFile(filepath.Join(dir, "out", "report.json"), true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "report.json"+CompressedSuffix), written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	decoded, err := Decode(data, true)
	require.NoError(t, err)
	assert.Equal(t, r.RunID, decoded.RunID)

	plain, err := r.WriteFile(filepath.Join(dir, "report.json"), false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.json"), plain)
}

func TestRunReport_ObjectPath(t *testing.T) {
	r := &RunReport{RunID: "0b6f4c1e-run"}
	assert.Equal(t, "reports/0b6f4c1e-run.json", r.ObjectPath(false))
	assert.Equal(t, "reports/0b6f4c1e-run.json.sz", r.ObjectPath(true))
}
