package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/enersim/intrasim/config"
	redisbackend "github.com/enersim/intrasim/pkg/backend/redis"

	"github.com/enersim/intrasim/pkg/backend/memory"
	"github.com/enersim/intrasim/pkg/clearing"
	"github.com/enersim/intrasim/pkg/core"
	"github.com/enersim/intrasim/pkg/data"
	"github.com/enersim/intrasim/pkg/db/queue"
	"github.com/enersim/intrasim/pkg/logging"
	"github.com/enersim/intrasim/pkg/messaging"
	kafkasender "github.com/enersim/intrasim/pkg/messaging/kafka"
	"github.com/enersim/intrasim/pkg/metrics"
	"github.com/enersim/intrasim/pkg/strategy"
	"github.com/fatih/color"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
)

var (
	clearingName = flag.String("clearing", "auction", "Clearing mechanism: auction, vwap, fullfill")
	hours        = flag.Int("hours", 24, "Length of the trading session in hours")
	stepMinutes  = flag.Int("step", 15, "Tick size in minutes")
	useRedis     = flag.Bool("redis", false, "Store the active-order set in Redis")
	startDate    = flag.String("start", "2025-06-02", "First delivery day (YYYY-MM-DD)")
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  cfg.Sim.LogLevel,
		Pretty: cfg.Sim.LogFormat == "pretty",
	})

	day, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid start date")
	}

	start := day
	end := day.Add(time.Duration(*hours) * time.Hour)
	step := time.Duration(*stepMinutes) * time.Minute

	// Reference prices from a synthetic intraday trade tape
	trades := data.GenerateIntradayTrades(data.GeneratorConfig{
		StartDate:         day,
		Days:              *hours/24 + 1,
		TradesPerContract: 500,
		Seed:              cfg.Sim.Seed,
	})
	vwap := data.NewVWAPSource("synthetic-vwap", trades)

	load := data.ResidentialProfile("residential", start, end.Add(24*time.Hour), time.Hour,
		5.0, 10.0, 15.0, 0.05, cfg.Sim.Seed)

	buyer, err := strategy.NewLoadFollower(strategy.LoadFollowerConfig{
		ID:             "load-follower",
		Load:           load,
		Price:          vwap,
		Window:         time.Hour,
		Lead:           2 * time.Hour,
		PremiumPercent: 1.0,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create buyer strategy")
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
		log.Fatal().Err(err).Msg("Failed to create seller strategy")
	}

	var mechanism core.ClearingMechanism
	switch *clearingName {
	case "auction":
		mechanism = clearing.NewAuction()
	case "vwap":
		mechanism = clearing.NewVWAPCross(vwap)
	case "fullfill":
		mechanism = clearing.NewFullFill()
	default:
		log.Fatal().Str("clearing", *clearingName).Msg("Unknown clearing mechanism")
	}

	var backend core.BookBackend
	if *useRedis {
		redisbackend.SetDefaultRedisOptions(&redisbackend.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		zapLogger, err := zap.NewProduction()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create zap logger")
		}
		defer zapLogger.Sync()
		backend = redisbackend.NewRedisBackend(redisbackend.GetRedisClient(), "intrasim", zapLogger)
	} else {
		backend = memory.NewMemoryBackend()
	}

	var sender messaging.EventSender
	if cfg.Kafka.Enabled {
		switch cfg.Kafka.Client {
		case "kafka-go":
			ks, err := kafkasender.NewKafkaEventSender(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create Kafka sender")
			}
			defer ks.Close()
			sender = ks
		default:
			qs, err := queue.NewQueueEventSender()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create Kafka sender")
			}
			defer qs.Close()
			sender = qs
		}
	}

	sim, err := core.NewSimulation(core.SimulationConfig{
		Start:      start,
		End:        end,
		Step:       step,
		Strategies: []core.Strategy{buyer, seller},
		Clearing:   mechanism,
		Backend:    backend,
		Sender:     sender,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create simulation")
	}

	result, err := sim.Run(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation failed")
	}

	printSummary(result)
}

func printSummary(result *core.Result) {
	color.NoColor = false
	cyan := color.New(color.FgCyan).SprintfFunc()
	green := color.New(color.FgGreen).SprintfFunc()

	calc := metrics.NewCalculator(result.History)
	summary := calc.RunAll()

	fmt.Printf("\nRun %s: %d events, %s -> %s\n\n",
		result.RunID, len(result.History),
		result.Start.Format(time.RFC3339), result.End.Format(time.RFC3339))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		cyan("Strategy"),
		cyan("Submitted"),
		cyan("Filled"),
		cyan("Fill Rate"),
		cyan("Volume"),
		cyan("VWAP"),
		cyan("TtF p50 (min)"))

	for _, id := range calc.Strategies() {
		fr := summary.FillRate[id]
		vol := summary.ContractVolume[id]
		px := summary.ExecutionPrices[id]
		ttf := summary.TimeToFill[id]

		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%.1f\t%.2f\t%.1f\n",
			id,
			fr.Submitted,
			fr.Filled,
			green("%.1f%%", fr.FillRate*100),
			vol.TotalVolume,
			px.VWAP,
			ttf.MedianMinutes)
	}

	w.Flush()
}
