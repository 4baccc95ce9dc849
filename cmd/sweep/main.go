package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/enersim/intrasim/pkg/backend/memory"
	"github.com/enersim/intrasim/pkg/clearing"
	"github.com/enersim/intrasim/pkg/core"
	"github.com/enersim/intrasim/pkg/data"
	"github.com/enersim/intrasim/pkg/strategy"
	"github.com/enersim/intrasim/pkg/sweep"
	"github.com/fatih/color"
	"github.com/nikolaydubina/fpdecimal"
)

func main() {
	cfg, err := sweep.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load sweep config: %v\n", err)
		os.Exit(1)
	}

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	build := func(index int, seed int64) (*core.Simulation, error) {
		trades := data.GenerateIntradayTrades(data.GeneratorConfig{
			StartDate:         day,
			Days:              2,
			TradesPerContract: 200,
			Seed:              seed,
		})
		vwap := data.NewVWAPSource("synthetic-vwap", trades)

		load := data.ResidentialProfile("residential", day, day.AddDate(0, 0, 2), time.Hour,
			5.0, 10.0, 15.0, 0.05, seed)

		buyer, err := strategy.NewLoadFollower(strategy.LoadFollowerConfig{
			ID:             "load-follower",
			Load:           load,
			Price:          vwap,
			Window:         time.Hour,
			Lead:           2 * time.Hour,
			PremiumPercent: 1.0,
		})
		if err != nil {
			return nil, err
		}

		seller, err := strategy.NewReprice(strategy.RepriceConfig{
			ID:            "repricing-seller",
			Side:          core.Sell,
			Quantity:      fpdecimal.FromFloat(5.0),
			Price:         vwap,
			Window:        time.Hour,
			Lead:          3 * time.Hour,
			CancelBefore:  30 * time.Minute,
			OffsetPercent: 2.0,
		})
		if err != nil {
			return nil, err
		}

		return core.NewSimulation(core.SimulationConfig{
			Start:      day,
			End:        day.Add(24 * time.Hour),
			Step:       15 * time.Minute,
			Strategies: []core.Strategy{buyer, seller},
			Clearing:   clearing.NewAuction(),
			Backend:    memory.NewMemoryBackend(),
		})
	}

	started := time.Now()
	results, err := sweep.Run(context.Background(), cfg, build)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep aborted: %v\n", err)
		os.Exit(1)
	}

	printResults(results, time.Since(started))
}

func printResults(results []sweep.RunResult, elapsed time.Duration) {
	color.NoColor = false
	cyan := color.New(color.FgCyan).SprintfFunc()
	green := color.New(color.FgGreen).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cyan("Run"), cyan("Run ID"), cyan("Events"), cyan("Duration"), cyan("Status"))

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				r.Index, "-", "-", "-", red("%v", r.Err))
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			r.Index, r.RunID, r.Events, r.Duration.Round(time.Millisecond), green("ok"))
	}
	w.Flush()

	fmt.Printf("\n%d runs in %s, %d failed\n", len(results), elapsed.Round(time.Millisecond), failures)

	if failures > 0 {
		os.Exit(1)
	}
}
