// Package engine adapts embedded SQL engines to the operations the benchmark
// driver needs: seeding a sample dataset and issuing one read-only scan per
// freshly opened connection.
package engine

import (
	"context"
	"fmt"
	"time"

	benchErrors "github.com/arkilian/readbench/internal/errors"
)

// SampleTable is the table created by PrepareDataset and scanned by AttemptQuery.
const SampleTable = "test"

// SampleRow is one row of the fixed sample dataset.
type SampleRow struct {
	ID    int64
	Value string
}

// SampleRows is the fixed dataset written by PrepareDataset.
var SampleRows = []SampleRow{
	{ID: 1, Value: "a"},
	{ID: 2, Value: "b"},
	{ID: 3, Value: "c"},
}

// Outcome is the result of a single attempt. Err is non-empty exactly when OK
// is false.
type Outcome struct {
	OK  bool
	Err string
}

// Success returns a successful outcome.
func Success() Outcome {
	return Outcome{OK: true}
}

// Failure returns a failed outcome carrying msg.
func Failure(msg string) Outcome {
	if msg == "" {
		msg = "unknown error"
	}
	return Outcome{Err: msg}
}

// Engine is an embedded database engine addressed by file path.
type Engine interface {
	// Name returns the engine name used in configuration and reports.
	Name() string

	// PrepareDataset creates the file if absent, drops any existing sample
	// table, recreates it and inserts SampleRows. Errors are setup failures.
	PrepareDataset(ctx context.Context, path string) error

	// AttemptQuery opens a new read-only connection, scans the sample table,
	// and closes the connection. It never returns an error or panics; engine
	// failures are reported through the Outcome.
	AttemptQuery(ctx context.Context, path string) Outcome

	// Checksum scans the sample table in id order and returns a murmur3 hash
	// of its contents together with the row count.
	Checksum(ctx context.Context, path string) (uint32, int, error)
}

// Options holds engine tuning shared by all adapters.
type Options struct {
	// BusyTimeout is how long the engine waits on a locked file; 0 keeps its default.
	BusyTimeout time.Duration
}

// New returns the engine registered under name.
func New(name string, opts Options) (Engine, error) {
	switch name {
	case "sqlite3":
		return newMattnEngine(opts), nil
	case "sqlite":
		return newModerncEngine(opts), nil
	default:
		return nil, benchErrors.NewConfigError(benchErrors.CodeUnknownEngine,
			fmt.Sprintf("unknown engine: %q", name))
	}
}
