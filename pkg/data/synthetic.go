package data

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Trade is one synthetic intraday transaction for a delivery window
type Trade struct {
	Delivery time.Time
	Time     time.Time
	Price    fpdecimal.Decimal
	Volume   fpdecimal.Decimal
}

// GeneratorConfig controls the synthetic trade generator
type GeneratorConfig struct {
	// StartDate is the first delivery day
	StartDate time.Time
	// Days is the number of delivery days to generate
	Days int
	// TradesPerContract is the approximate trade count per hourly contract
	TradesPerContract int
	// Seed makes the generated series reproducible
	Seed int64
}

// GenerateIntradayTrades produces a synthetic intraday electricity trade
// series. Each hourly delivery contract trades from 15:00 the previous day
// until delivery, with activity and volatility concentrated toward
// delivery and a day/night price pattern. The same seed yields the same
// series.
func GenerateIntradayTrades(cfg GeneratorConfig) []Trade {
	rng := rand.New(rand.NewSource(cfg.Seed))
	trades := make([]Trade, 0, cfg.Days*24*cfg.TradesPerContract)

	day := time.Date(cfg.StartDate.Year(), cfg.StartDate.Month(), cfg.StartDate.Day(), 0, 0, 0, 0, cfg.StartDate.Location())

	for d := 0; d < cfg.Days; d++ {
		deliveryDay := day.AddDate(0, 0, d)

		for hour := 0; hour < 24; hour++ {
			delivery := deliveryDay.Add(time.Duration(hour) * time.Hour)
			tradingStart := deliveryDay.AddDate(0, 0, -1).Add(15 * time.Hour)
			totalMinutes := delivery.Sub(tradingStart).Minutes()

			// Day/night price pattern: higher during the day
			hourFactor := 1.0 + 0.3*math.Sin(float64(hour-6)*math.Pi/12)
			basePrice := 45*hourFactor + rng.NormFloat64()*5

			// Sparse overnight trading, then increasing frequency
			// toward delivery
			minutes := make([]float64, 0, cfg.TradesPerContract)
			overnight := cfg.TradesPerContract / 5
			for i := 0; i < cfg.TradesPerContract; i++ {
				u := rng.Float64()
				var m float64
				if i < overnight {
					m = u * 0.7 * totalMinutes
				} else {
					m = totalMinutes * (0.7 + 0.3*math.Pow(u, 0.3))
				}
				minutes = append(minutes, math.Min(m, totalMinutes))
			}
			sort.Float64s(minutes)

			price := basePrice
			for _, m := range minutes {
				tradeTime := tradingStart.Add(time.Duration(m * float64(time.Minute)))
				hoursToDelivery := delivery.Sub(tradeTime).Hours()

				// Volatility increases toward delivery
				volatility := 0.5 + 1.5*math.Max(0, (24-hoursToDelivery)/24)
				price += rng.NormFloat64() * volatility
				price = math.Max(10, math.Min(price, basePrice*2))

				proximity := math.Max(0.1, math.Min(1.0, (24-hoursToDelivery)/24))
				volume := 0.1 + 9.9*proximity*rng.Float64()

				trades = append(trades, Trade{
					Delivery: delivery,
					Time:     tradeTime,
					Price:    fpdecimal.FromFloat(math.Round(price*100) / 100),
					Volume:   fpdecimal.FromFloat(math.Round(volume*10) / 10),
				})
			}
		}
	}

	return trades
}

// VWAPSource exposes a trade series as a Source returning the
// volume-weighted average price of all trades observed strictly before the
// current time.
type VWAPSource struct {
	name   string
	trades map[int64][]Trade
}

// NewVWAPSource groups trades by delivery window
func NewVWAPSource(name string, trades []Trade) *VWAPSource {
	grouped := make(map[int64][]Trade)
	for _, t := range trades {
		key := t.Delivery.Unix()
		grouped[key] = append(grouped[key], t)
	}

	for _, list := range grouped {
		sort.Slice(list, func(i, j int) bool {
			return list[i].Time.Before(list[j].Time)
		})
	}

	return &VWAPSource{name: name, trades: grouped}
}

// Name identifies the source
func (s *VWAPSource) Name() string {
	return s.name
}

// At returns the VWAP of the delivery window over trades before now
func (s *VWAPSource) At(delivery, now time.Time) (fpdecimal.Decimal, error) {
	list, ok := s.trades[delivery.Unix()]
	if !ok {
		return fpdecimal.Zero, ErrNoData
	}

	var priceVolume, volume float64
	for _, t := range list {
		if !t.Time.Before(now) {
			break
		}
		p := t.Price.Float64()
		v := t.Volume.Float64()
		priceVolume += p * v
		volume += v
	}

	if volume == 0 {
		return fpdecimal.Zero, ErrNoData
	}

	return fpdecimal.FromFloat(priceVolume / volume), nil
}

// Ensure VWAPSource implements Source
var _ Source = (*VWAPSource)(nil)
