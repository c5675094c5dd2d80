package bench

import (
	"time"

	"github.com/arkilian/readbench/internal/engine"
)

// LevelResult aggregates every attempt made at one concurrency level.
type LevelResult struct {
	// Attempted is the number of attempts dispatched (the level itself)
	Attempted int

	// Successful is the number of attempts that scanned the table
	Successful int

	// Elapsed covers dispatch through completion of the last attempt
	Elapsed time.Duration

	// Errors holds failure messages in completion order
	Errors []string
}

// Failed returns the number of failed attempts.
func (r LevelResult) Failed() int {
	return r.Attempted - r.Successful
}

// Complete reports whether every attempt at the level succeeded.
func (r LevelResult) Complete() bool {
	return r.Successful >= r.Attempted
}

// FirstError returns the first recorded error message, or "" if none.
func (r LevelResult) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// add folds one outcome into the aggregate.
func (r *LevelResult) add(out engine.Outcome) {
	if out.OK {
		r.Successful++
		return
	}
	r.Errors = append(r.Errors, out.Err)
}

// SweepResult is the ordered record of one sweep.
type SweepResult struct {
	Levels []LevelResult

	// Halted is true when the sweep stopped on a level with failures
	Halted bool

	// Interrupted is true when the context was cancelled between levels
	Interrupted bool
}

// MaxSustained returns the largest level at which every attempt succeeded,
// or 0 if no level completed cleanly.
func (s SweepResult) MaxSustained() int {
	best := 0
	for _, level := range s.Levels {
		if level.Complete() && level.Attempted > best {
			best = level.Attempted
		}
	}
	return best
}

// Last returns the final level attempted and false if no level ran.
func (s SweepResult) Last() (LevelResult, bool) {
	if len(s.Levels) == 0 {
		return LevelResult{}, false
	}
	return s.Levels[len(s.Levels)-1], true
}
