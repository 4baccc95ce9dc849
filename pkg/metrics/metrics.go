// Package metrics computes post-hoc statistics over a completed run's
// order history, grouped by strategy. It is a read-only consumer: nothing
// here feeds back into a simulation.
package metrics

import (
	"sort"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/enersim/intrasim/pkg/core"
)

// Calculator pre-splits an order history by strategy
type Calculator struct {
	byStrategy map[string][]core.Event
	strategies []string
}

// NewCalculator creates a Calculator over a run's order history
func NewCalculator(history []core.Event) *Calculator {
	byStrategy := make(map[string][]core.Event)
	for _, e := range history {
		id := e.Order.StrategyID()
		byStrategy[id] = append(byStrategy[id], e)
	}

	strategies := make([]string, 0, len(byStrategy))
	for id := range byStrategy {
		strategies = append(strategies, id)
	}
	sort.Strings(strategies)

	return &Calculator{byStrategy: byStrategy, strategies: strategies}
}

// Strategies returns the strategy identifiers seen in the history, sorted
func (c *Calculator) Strategies() []string {
	return c.strategies
}

// FillRateStats reports submitted vs fully filled orders
type FillRateStats struct {
	Submitted int
	Filled    int
	FillRate  float64
}

// FillRate calculates the share of submitted orders that fully filled
func (c *Calculator) FillRate() map[string]FillRateStats {
	results := make(map[string]FillRateStats, len(c.strategies))

	for _, id := range c.strategies {
		var stats FillRateStats
		for _, e := range c.byStrategy[id] {
			switch {
			case e.Type == core.EventSubmitted:
				stats.Submitted++
			case e.Type == core.EventFilled && e.Order.Status() == core.StatusFilled:
				stats.Filled++
			}
		}
		if stats.Submitted > 0 {
			stats.FillRate = float64(stats.Filled) / float64(stats.Submitted)
		}
		results[id] = stats
	}

	return results
}

// TimeToFillStats summarizes how long orders rested before filling fully
type TimeToFillStats struct {
	MeanMinutes   float64
	MedianMinutes float64
	MinMinutes    float64
	MaxMinutes    float64
	P95Minutes    float64
	Count         int64
}

// one fill can rest up to a month in long sweeps
const maxRestMillis = int64(30 * 24 * time.Hour / time.Millisecond)

// TimeToFill calculates submission-to-full-fill latency distributions
func (c *Calculator) TimeToFill() map[string]TimeToFillStats {
	results := make(map[string]TimeToFillStats, len(c.strategies))

	for _, id := range c.strategies {
		hist := hdrhistogram.New(1, maxRestMillis, 3)

		for _, e := range c.byStrategy[id] {
			if e.Type != core.EventFilled || e.Order.Status() != core.StatusFilled {
				continue
			}

			millis := e.Time.Sub(e.Order.SubmittedAt()).Milliseconds()
			if millis < 1 {
				millis = 1
			}
			if millis > maxRestMillis {
				millis = maxRestMillis
			}
			_ = hist.RecordValue(millis)
		}

		if hist.TotalCount() == 0 {
			results[id] = TimeToFillStats{}
			continue
		}

		toMinutes := func(ms int64) float64 { return float64(ms) / 60000 }
		results[id] = TimeToFillStats{
			MeanMinutes:   hist.Mean() / 60000,
			MedianMinutes: toMinutes(hist.ValueAtQuantile(50)),
			MinMinutes:    toMinutes(hist.Min()),
			MaxMinutes:    toMinutes(hist.Max()),
			P95Minutes:    toMinutes(hist.ValueAtQuantile(95)),
			Count:         hist.TotalCount(),
		}
	}

	return results
}

// VolumeStats reports executed volume per delivery contract
type VolumeStats struct {
	TotalVolume float64
	ByContract  map[time.Time]float64
}

// ContractVolume sums filled quantity by strategy and delivery window
func (c *Calculator) ContractVolume() map[string]VolumeStats {
	results := make(map[string]VolumeStats, len(c.strategies))

	for _, id := range c.strategies {
		stats := VolumeStats{ByContract: make(map[time.Time]float64)}
		for _, e := range c.byStrategy[id] {
			if e.Type != core.EventFilled || e.Fill == nil {
				continue
			}
			qty := e.Fill.Quantity.Float64()
			stats.TotalVolume += qty
			stats.ByContract[e.Order.Delivery()] += qty
		}
		results[id] = stats
	}

	return results
}

// StatusCounts reports order counts by final status and event counts
type StatusCounts struct {
	ByStatus    map[core.Status]int
	ByEvent     map[core.EventType]int
	TotalOrders int
}

// OrderStatusCounts counts events by type and orders by final status
func (c *Calculator) OrderStatusCounts() map[string]StatusCounts {
	results := make(map[string]StatusCounts, len(c.strategies))

	for _, id := range c.strategies {
		stats := StatusCounts{
			ByStatus: make(map[core.Status]int),
			ByEvent:  make(map[core.EventType]int),
		}

		finalStatus := make(map[string]core.Status)
		for _, e := range c.byStrategy[id] {
			stats.ByEvent[e.Type]++
			finalStatus[e.Order.ID()] = e.Order.Status()
		}

		for _, status := range finalStatus {
			stats.ByStatus[status]++
		}
		stats.TotalOrders = len(finalStatus)

		results[id] = stats
	}

	return results
}

// SidePriceStats holds execution price statistics for one side
type SidePriceStats struct {
	VWAP   float64
	Volume float64
	Count  int
}

// PriceStats summarizes execution prices, including VWAP
type PriceStats struct {
	Mean  float64
	Min   float64
	Max   float64
	VWAP  float64
	Count int
	Buy   *SidePriceStats
	Sell  *SidePriceStats
}

// ExecutionPrices analyzes fill prices by strategy, including per-side VWAP
func (c *Calculator) ExecutionPrices() map[string]PriceStats {
	results := make(map[string]PriceStats, len(c.strategies))

	for _, id := range c.strategies {
		var (
			stats           PriceStats
			sum             float64
			priceVolume     float64
			volume          float64
			sidePriceVolume [2]float64
			sideVolume      [2]float64
			sideCount       [2]int
		)

		for _, e := range c.byStrategy[id] {
			if e.Type != core.EventFilled || e.Fill == nil {
				continue
			}

			price := e.Fill.Price.Float64()
			qty := e.Fill.Quantity.Float64()

			if stats.Count == 0 || price < stats.Min {
				stats.Min = price
			}
			if stats.Count == 0 || price > stats.Max {
				stats.Max = price
			}

			stats.Count++
			sum += price
			priceVolume += price * qty
			volume += qty

			side := e.Order.Side()
			sidePriceVolume[side] += price * qty
			sideVolume[side] += qty
			sideCount[side]++
		}

		if stats.Count == 0 {
			results[id] = stats
			continue
		}

		stats.Mean = sum / float64(stats.Count)
		if volume > 0 {
			stats.VWAP = priceVolume / volume
		}

		if sideVolume[core.Buy] > 0 {
			stats.Buy = &SidePriceStats{
				VWAP:   sidePriceVolume[core.Buy] / sideVolume[core.Buy],
				Volume: sideVolume[core.Buy],
				Count:  sideCount[core.Buy],
			}
		}
		if sideVolume[core.Sell] > 0 {
			stats.Sell = &SidePriceStats{
				VWAP:   sidePriceVolume[core.Sell] / sideVolume[core.Sell],
				Volume: sideVolume[core.Sell],
				Count:  sideCount[core.Sell],
			}
		}

		results[id] = stats
	}

	return results
}

// BuyCostStats reports the total cost of filled buy volume
type BuyCostStats struct {
	TotalCost   float64
	TotalVolume float64
	AvgPrice    float64
}

// BuyCost calculates total buy cost (price x quantity) by strategy
func (c *Calculator) BuyCost() map[string]BuyCostStats {
	results := make(map[string]BuyCostStats, len(c.strategies))

	for _, id := range c.strategies {
		var stats BuyCostStats
		for _, e := range c.byStrategy[id] {
			if e.Type != core.EventFilled || e.Fill == nil || e.Order.Side() != core.Buy {
				continue
			}
			price := e.Fill.Price.Float64()
			qty := e.Fill.Quantity.Float64()
			stats.TotalCost += price * qty
			stats.TotalVolume += qty
		}
		if stats.TotalVolume > 0 {
			stats.AvgPrice = stats.TotalCost / stats.TotalVolume
		}
		results[id] = stats
	}

	return results
}

// SideExecutionRate compares intended vs executed volume for one side
type SideExecutionRate struct {
	Intended float64
	Executed float64
	Rate     float64
}

// ExecutionRateStats compares intended trading volume vs executed volume
type ExecutionRateStats struct {
	Intended float64
	Executed float64
	Rate     float64
	Buy      *SideExecutionRate
	Sell     *SideExecutionRate
}

// VolumeExecutionRate compares submitted volume against filled volume
func (c *Calculator) VolumeExecutionRate() map[string]ExecutionRateStats {
	results := make(map[string]ExecutionRateStats, len(c.strategies))

	for _, id := range c.strategies {
		var (
			stats        ExecutionRateStats
			sideIntended [2]float64
			sideExecuted [2]float64
		)

		for _, e := range c.byStrategy[id] {
			side := e.Order.Side()
			switch {
			case e.Type == core.EventSubmitted:
				qty := e.Order.OriginalQty().Float64()
				stats.Intended += qty
				sideIntended[side] += qty
			case e.Type == core.EventFilled && e.Fill != nil:
				qty := e.Fill.Quantity.Float64()
				stats.Executed += qty
				sideExecuted[side] += qty
			}
		}

		if stats.Intended > 0 {
			stats.Rate = stats.Executed / stats.Intended
		}

		for _, side := range []core.Side{core.Buy, core.Sell} {
			if sideIntended[side] == 0 {
				continue
			}
			rate := &SideExecutionRate{
				Intended: sideIntended[side],
				Executed: sideExecuted[side],
				Rate:     sideExecuted[side] / sideIntended[side],
			}
			if side == core.Buy {
				stats.Buy = rate
			} else {
				stats.Sell = rate
			}
		}

		results[id] = stats
	}

	return results
}

// Summary bundles all metrics keyed by strategy
type Summary struct {
	FillRate            map[string]FillRateStats
	TimeToFill          map[string]TimeToFillStats
	ContractVolume      map[string]VolumeStats
	OrderStatusCounts   map[string]StatusCounts
	ExecutionPrices     map[string]PriceStats
	BuyCost             map[string]BuyCostStats
	VolumeExecutionRate map[string]ExecutionRateStats
}

// RunAll computes every metric
func (c *Calculator) RunAll() Summary {
	return Summary{
		FillRate:            c.FillRate(),
		TimeToFill:          c.TimeToFill(),
		ContractVolume:      c.ContractVolume(),
		OrderStatusCounts:   c.OrderStatusCounts(),
		ExecutionPrices:     c.ExecutionPrices(),
		BuyCost:             c.BuyCost(),
		VolumeExecutionRate: c.VolumeExecutionRate(),
	}
}
