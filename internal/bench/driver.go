// Package bench implements the concurrency sweep: for increasing levels it
// dispatches that many parallel read attempts, aggregates the outcomes and
// stops at the first level with any failure.
package bench

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arkilian/readbench/internal/engine"
	benchErrors "github.com/arkilian/readbench/internal/errors"
)

// Attempter performs one connect-scan-close attempt against path.
type Attempter interface {
	AttemptQuery(ctx context.Context, path string) engine.Outcome
}

// Reporter receives results as the sweep progresses.
type Reporter interface {
	// ReportLevel is called once per level, after all its attempts finished.
	ReportLevel(result LevelResult)

	// ReportSweep is called once when the sweep ends.
	ReportSweep(result SweepResult)
}

// Options configures a sweep.
type Options struct {
	// Path is the database file every attempt opens
	Path string

	// MaxConnections is the largest level that may be attempted
	MaxConnections int

	// Step is the first level and the increment between levels
	Step int
}

// Driver runs levels and sweeps against an Attempter.
type Driver struct {
	attempter Attempter
	reporter  Reporter
}

// NewDriver creates a driver. Reporters are called in the order given.
func NewDriver(attempter Attempter, reporters ...Reporter) *Driver {
	return &Driver{
		attempter: attempter,
		reporter:  multiReporter(reporters),
	}
}

// Levels returns step, 2·step, ... up to and including maxLevel.
func Levels(maxLevel, step int) []int {
	if step <= 0 || maxLevel < step {
		return nil
	}
	levels := make([]int, 0, maxLevel/step)
	for n := step; n <= maxLevel; n += step {
		levels = append(levels, n)
	}
	return levels
}

// RunLevel dispatches n concurrent attempts on a task group sized exactly n
// and blocks until all of them return. Attempts run on a context detached
// from ctx's cancellation: once dispatched they always run to completion.
func (d *Driver) RunLevel(ctx context.Context, path string, n int) LevelResult {
	result := LevelResult{Attempted: n}
	if n <= 0 {
		return result
	}

	attemptCtx := context.WithoutCancel(ctx)
	outcomes := make(chan engine.Outcome, n)

	var g errgroup.Group
	g.SetLimit(n)

	start := time.Now()
	for i := 0; i < n; i++ {
		g.Go(func() error {
			outcomes <- d.attempt(attemptCtx, path)
			return nil
		})
	}

	// Aggregate in completion order.
	for i := 0; i < n; i++ {
		result.add(<-outcomes)
	}
	_ = g.Wait()
	result.Elapsed = time.Since(start)

	return result
}

// attempt guards the Attempter boundary so a panic becomes a failure outcome.
func (d *Driver) attempt(ctx context.Context, path string) (out engine.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = engine.Failure(benchErrors.NewQueryError(benchErrors.CodeAttemptPanic,
				"attempt panicked", fmt.Errorf("%v", r)).Error())
		}
	}()
	return d.attempter.AttemptQuery(ctx, path)
}

// Sweep runs every level from Levels in order, reporting each one, and stops
// before the next level as soon as a level has fewer successes than attempts.
// A cancelled ctx prevents further levels from starting.
func (d *Driver) Sweep(ctx context.Context, opts Options) SweepResult {
	var sweep SweepResult

	for _, n := range Levels(opts.MaxConnections, opts.Step) {
		if ctx.Err() != nil {
			sweep.Interrupted = true
			break
		}

		level := d.RunLevel(ctx, opts.Path, n)
		sweep.Levels = append(sweep.Levels, level)
		d.reporter.ReportLevel(level)

		if !level.Complete() {
			sweep.Halted = true
			break
		}
	}

	d.reporter.ReportSweep(sweep)
	return sweep
}

// multiReporter fans results out to several reporters.
type multiReporter []Reporter

func (m multiReporter) ReportLevel(result LevelResult) {
	for _, r := range m {
		if r != nil {
			r.ReportLevel(result)
		}
	}
}

func (m multiReporter) ReportSweep(result SweepResult) {
	for _, r := range m {
		if r != nil {
			r.ReportSweep(result)
		}
	}
}
