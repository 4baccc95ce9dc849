// Package sweep runs many independent simulations in parallel, e.g. to
// scan a strategy parameter or a seed range. Simulations never share
// state; only their results are collected.
package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/enersim/intrasim/pkg/core"
	"golang.org/x/time/rate"
)

// BuildFunc constructs a fresh simulation for one sweep run. It must not
// share strategies, backends, or clearing mechanisms between runs.
type BuildFunc func(index int, seed int64) (*core.Simulation, error)

// RunResult is the outcome of one sweep run
type RunResult struct {
	Index    int
	RunID    string
	Events   int
	Duration time.Duration
	Err      error
}

// Run executes cfg.Runs simulations, at most cfg.Concurrency at a time,
// throttled by cfg.RatePerSec. Results are returned in run order.
func Run(ctx context.Context, cfg *Config, build BuildFunc) ([]RunResult, error) {
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	sem := make(chan struct{}, cfg.Concurrency)
	results := make([]RunResult, cfg.Runs)

	var wg sync.WaitGroup

	for i := 0; i < cfg.Runs; i++ {
		if err := limiter.Wait(ctx); err != nil {
			wg.Wait()
			return nil, err
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(index int) {
			defer wg.Done()
			defer func() { <-sem }()

			start := time.Now()
			result := RunResult{Index: index}

			sim, err := build(index, cfg.Seed+int64(index))
			if err != nil {
				result.Err = err
				results[index] = result
				return
			}

			res, err := sim.Run(ctx)
			result.Duration = time.Since(start)
			if err != nil {
				result.Err = err
			} else {
				result.RunID = res.RunID
				result.Events = len(res.History)
			}

			results[index] = result
		}(i)
	}

	wg.Wait()
	return results, nil
}
