package bench

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/arkilian/readbench/internal/engine"
)

// budgetAttempter succeeds for the first budget calls across the whole sweep
// and fails every call after that.
type budgetAttempter struct {
	budget int64
	calls  atomic.Int64
}

func (a *budgetAttempter) AttemptQuery(ctx context.Context, path string) engine.Outcome {
	if a.calls.Add(1) > a.budget {
		return engine.Failure("connection budget exhausted")
	}
	return engine.Success()
}

// TestProperty_LevelSequence validates that levels form the arithmetic
// sequence step, 2·step, ... and never exceed the maximum.
func TestProperty_LevelSequence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("levels are multiples of step bounded by max", prop.ForAll(
		func(maxLevel, step int) bool {
			levels := Levels(maxLevel, step)
			for i, n := range levels {
				if n != (i+1)*step || n > maxLevel {
					return false
				}
			}
			if len(levels) == 0 {
				return maxLevel < step
			}
			// No further full step fits under the bound
			return levels[len(levels)-1]+step > maxLevel
		},
		gen.IntRange(0, 5000),
		gen.IntRange(1, 250),
	))

	properties.TestingRun(t)
}

// TestProperty_SweepHaltsAtFirstPartialLevel validates the sweep control flow:
// every level accounts for all its attempts, levels are a prefix of Levels,
// only the last level may be incomplete, and whether the sweep halted matches
// whether that last level is incomplete.
func TestProperty_SweepHaltsAtFirstPartialLevel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("sweep stops after the first incomplete level", prop.ForAll(
		func(maxLevel, step, budget int) bool {
			d := NewDriver(&budgetAttempter{budget: int64(budget)})
			sweep := d.Sweep(context.Background(), Options{Path: "benchmark.db", MaxConnections: maxLevel, Step: step})

			expected := Levels(maxLevel, step)
			if len(sweep.Levels) > len(expected) {
				return false
			}

			for i, level := range sweep.Levels {
				if level.Attempted != expected[i] {
					return false
				}
				if level.Successful+len(level.Errors) != level.Attempted {
					return false
				}
				if i < len(sweep.Levels)-1 && !level.Complete() {
					return false
				}
			}

			last, ok := sweep.Last()
			if !ok {
				return len(expected) == 0
			}
			if sweep.Halted != !last.Complete() {
				return false
			}
			// A sweep that did not halt ran every level.
			return sweep.Halted || len(sweep.Levels) == len(expected)
		},
		gen.IntRange(1, 200),
		gen.IntRange(5, 50),
		gen.IntRange(0, 2000),
	))

	properties.TestingRun(t)
}
