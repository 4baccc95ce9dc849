package main

import (
	"context"
	"fmt"
	"time"

	"github.com/enersim/intrasim/pkg/backend/memory"
	"github.com/enersim/intrasim/pkg/clearing"
	"github.com/enersim/intrasim/pkg/core"
	"github.com/enersim/intrasim/pkg/data"
	"github.com/enersim/intrasim/pkg/strategy"
)

// Minimal library usage: one buy strategy following a flat load profile,
// a trivial clearing mechanism that fills every resting order, and an
// in-memory order book.
func main() {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	load := data.ConstantProfile("flat-load", start, end.Add(6*time.Hour), time.Hour, 5.0, 0, 1)
	price := data.ConstantProfile("flat-price", start, end.Add(6*time.Hour), time.Hour, 50.0, 0, 1)

	buyer, err := strategy.NewLoadFollower(strategy.LoadFollowerConfig{
		ID:             "buyer",
		Load:           load,
		Price:          price,
		Window:         time.Hour,
		Lead:           2 * time.Hour,
		PremiumPercent: 0,
	})
	if err != nil {
		panic(err)
	}

	sim, err := core.NewSimulation(core.SimulationConfig{
		Start:      start,
		End:        end,
		Step:       15 * time.Minute,
		Strategies: []core.Strategy{buyer},
		Clearing:   clearing.NewFullFill(),
		Backend:    memory.NewMemoryBackend(),
	})
	if err != nil {
		panic(err)
	}

	result, err := sim.Run(context.Background())
	if err != nil {
		panic(err)
	}

	fmt.Printf("Run %s finished with %d events\n\n", result.RunID, len(result.History))

	for _, e := range result.History {
		fmt.Printf("%s  %-9s  %s\n", e.Time.Format("15:04"), e.Type, e.Order.String())
	}

	fmt.Printf("\nTotal bought: %s MW\n", buyer.Bought().String())
}
