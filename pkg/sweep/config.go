package sweep

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for a parameter sweep
type Config struct {
	// Runs is the number of independent simulations to execute
	Runs int
	// Concurrency bounds how many simulations run at once; each
	// simulation itself stays single-threaded
	Concurrency int
	// RatePerSec throttles simulation starts
	RatePerSec float64
	// Seed is the base seed; run i uses Seed+i
	Seed int64
}

// LoadConfig loads sweep configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SWEEP_RUNS", 10)
	v.SetDefault("SWEEP_CONCURRENCY", 4)
	v.SetDefault("SWEEP_RATE_PER_SEC", 10.0)
	v.SetDefault("SWEEP_SEED", 42)

	v.AutomaticEnv()

	cfg := &Config{
		Runs:        v.GetInt("SWEEP_RUNS"),
		Concurrency: v.GetInt("SWEEP_CONCURRENCY"),
		RatePerSec:  v.GetFloat64("SWEEP_RATE_PER_SEC"),
		Seed:        v.GetInt64("SWEEP_SEED"),
	}

	if cfg.Runs <= 0 {
		return nil, fmt.Errorf("SWEEP_RUNS must be positive, got %d", cfg.Runs)
	}
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("SWEEP_CONCURRENCY must be positive, got %d", cfg.Concurrency)
	}
	if cfg.RatePerSec <= 0 {
		return nil, fmt.Errorf("SWEEP_RATE_PER_SEC must be positive, got %f", cfg.RatePerSec)
	}

	return cfg, nil
}
