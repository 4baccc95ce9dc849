package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/enersim/intrasim/pkg/backend/memory"
	"github.com/enersim/intrasim/pkg/clearing"
	"github.com/enersim/intrasim/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinySim(t *testing.T) BuildFunc {
	t.Helper()
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	return func(index int, seed int64) (*core.Simulation, error) {
		return core.NewSimulation(core.SimulationConfig{
			Start:    start,
			End:      start.Add(30 * time.Minute),
			Step:     15 * time.Minute,
			Clearing: clearing.NewFullFill(),
			Backend:  memory.NewMemoryBackend(),
		})
	}
}

func TestRunExecutesAllSimulations(t *testing.T) {
	cfg := &Config{Runs: 5, Concurrency: 2, RatePerSec: 1000, Seed: 42}

	results, err := Run(context.Background(), cfg, tinySim(t))
	require.NoError(t, err)
	require.Len(t, results, 5)

	seen := make(map[string]bool)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.NoError(t, r.Err)
		assert.NotEmpty(t, r.RunID)
		assert.False(t, seen[r.RunID], "run IDs must be unique")
		seen[r.RunID] = true
	}
}

func TestRunCapturesBuildFailures(t *testing.T) {
	buildErr := errors.New("bad parameters")
	cfg := &Config{Runs: 3, Concurrency: 1, RatePerSec: 1000, Seed: 42}

	build := func(index int, seed int64) (*core.Simulation, error) {
		if index == 1 {
			return nil, buildErr
		}
		return tinySim(t)(index, seed)
	}

	results, err := Run(context.Background(), cfg, build)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, buildErr)
	assert.NoError(t, results[2].Err)
}

func TestRunSeedsArePerRun(t *testing.T) {
	cfg := &Config{Runs: 4, Concurrency: 4, RatePerSec: 1000, Seed: 100}

	seedCh := make(chan int64, 4)
	build := func(index int, seed int64) (*core.Simulation, error) {
		seedCh <- seed
		return tinySim(t)(index, seed)
	}

	_, err := Run(context.Background(), cfg, build)
	require.NoError(t, err)
	close(seedCh)

	seeds := make(map[int64]bool)
	for s := range seedCh {
		seeds[s] = true
	}

	for s := int64(100); s < 104; s++ {
		assert.True(t, seeds[s], "expected seed %d to be used", s)
	}
}

func TestRunCanceledContext(t *testing.T) {
	cfg := &Config{Runs: 100, Concurrency: 1, RatePerSec: 1, Seed: 42}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, tinySim(t))
	assert.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Runs)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 10.0, cfg.RatePerSec)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Setenv("SWEEP_RUNS", "0")

	_, err := LoadConfig()
	assert.Error(t, err)
}
