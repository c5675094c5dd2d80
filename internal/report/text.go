// Package report renders sweep results as human-readable text and as a JSON
// run report.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/arkilian/readbench/internal/bench"
)

// TextReporter prints one summary block per level to w.
type TextReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextReporter creates a reporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// ReportLevel prints attempted, successful, elapsed and, if any attempt
// failed, the error count and the first error.
func (r *TextReporter) ReportLevel(result bench.LevelResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "Attempted concurrent connections: %d\n", result.Attempted)
	fmt.Fprintf(r.w, "Successful queries: %d\n", result.Successful)
	fmt.Fprintf(r.w, "Time taken: %.2f seconds\n", result.Elapsed.Seconds())
	if len(result.Errors) > 0 {
		fmt.Fprintf(r.w, "Errors encountered: %d\n", len(result.Errors))
		fmt.Fprintf(r.w, "First error: %s\n", result.FirstError())
	}
	fmt.Fprintln(r.w, "---")
}

// ReportSweep prints the stop notice when the sweep halted on a failure.
func (r *TextReporter) ReportSweep(result bench.SweepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if result.Halted {
		fmt.Fprintln(r.w, "Failed to complete all concurrent queries. Stopping benchmark.")
	}
}
