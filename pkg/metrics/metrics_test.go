package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/enersim/intrasim/pkg/backend/memory"
	"github.com/enersim/intrasim/pkg/clearing"
	"github.com/enersim/intrasim/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start    = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	step     = 15 * time.Minute
	delivery = start.Add(4 * time.Hour)
)

// scripted replays a fixed batch per tick index
type scripted struct {
	id      string
	batches map[int]core.OrderBatch
	tick    int
}

func (s *scripted) ID() string { return s.id }

func (s *scripted) Initialize(start, end time.Time) {}

func (s *scripted) UpdateOrders(now time.Time) (core.OrderBatch, error) {
	batch := s.batches[s.tick]
	s.tick++
	return batch, nil
}

func (s *scripted) ProcessResults(fb core.Feedback) {}

func order(t *testing.T, id string, side core.Side, qty, price float64, strategyID string) *core.Order {
	t.Helper()
	o, err := core.NewLimitOrder(id, side, fpdecimal.FromFloat(qty), fpdecimal.FromFloat(price), delivery, strategyID)
	require.NoError(t, err)
	return o
}

// fullFillHistory runs buyer and seller against a perfectly liquid market:
// both orders submit at 10:00 and fill at 10:15.
func fullFillHistory(t *testing.T) []core.Event {
	t.Helper()

	buyer := &scripted{id: "buyer", batches: map[int]core.OrderBatch{
		0: {New: []*core.Order{order(t, "b1", core.Buy, 10, 50, "buyer")}},
	}}
	seller := &scripted{id: "seller", batches: map[int]core.OrderBatch{
		0: {New: []*core.Order{order(t, "a1", core.Sell, 5, 60, "seller")}},
	}}

	sim, err := core.NewSimulation(core.SimulationConfig{
		Start:      start,
		End:        start.Add(30 * time.Minute),
		Step:       step,
		Strategies: []core.Strategy{buyer, seller},
		Clearing:   clearing.NewFullFill(),
		Backend:    memory.NewMemoryBackend(),
	})
	require.NoError(t, err)

	result, err := sim.Run(context.Background())
	require.NoError(t, err)
	return result.History
}

func TestCalculatorStrategies(t *testing.T) {
	calc := NewCalculator(fullFillHistory(t))
	assert.Equal(t, []string{"buyer", "seller"}, calc.Strategies())
}

func TestFillRate(t *testing.T) {
	calc := NewCalculator(fullFillHistory(t))
	rates := calc.FillRate()

	assert.Equal(t, 1, rates["buyer"].Submitted)
	assert.Equal(t, 1, rates["buyer"].Filled)
	assert.Equal(t, 1.0, rates["buyer"].FillRate)
	assert.Equal(t, 1.0, rates["seller"].FillRate)
}

func TestFillRateUnfilledOrder(t *testing.T) {
	// The order enters at the final tick and never fills
	buyer := &scripted{id: "buyer", batches: map[int]core.OrderBatch{
		1: {New: []*core.Order{order(t, "b1", core.Buy, 10, 50, "buyer")}},
	}}

	sim, err := core.NewSimulation(core.SimulationConfig{
		Start:      start,
		End:        start.Add(15 * time.Minute),
		Step:       step,
		Strategies: []core.Strategy{buyer},
		Clearing:   clearing.NewFullFill(),
		Backend:    memory.NewMemoryBackend(),
	})
	require.NoError(t, err)

	result, err := sim.Run(context.Background())
	require.NoError(t, err)

	calc := NewCalculator(result.History)
	rates := calc.FillRate()

	assert.Equal(t, 1, rates["buyer"].Submitted)
	assert.Equal(t, 0, rates["buyer"].Filled)
	assert.Equal(t, 0.0, rates["buyer"].FillRate)

	ttf := calc.TimeToFill()
	assert.Equal(t, int64(0), ttf["buyer"].Count)
}

func TestTimeToFill(t *testing.T) {
	calc := NewCalculator(fullFillHistory(t))
	ttf := calc.TimeToFill()

	buyer := ttf["buyer"]
	assert.Equal(t, int64(1), buyer.Count)
	assert.InDelta(t, 15.0, buyer.MedianMinutes, 0.1)
	assert.InDelta(t, 15.0, buyer.MeanMinutes, 0.1)
	assert.LessOrEqual(t, buyer.MinMinutes, buyer.MaxMinutes)
}

func TestContractVolume(t *testing.T) {
	calc := NewCalculator(fullFillHistory(t))
	volumes := calc.ContractVolume()

	assert.InDelta(t, 10.0, volumes["buyer"].TotalVolume, 0.001)
	assert.InDelta(t, 5.0, volumes["seller"].TotalVolume, 0.001)
	assert.InDelta(t, 10.0, volumes["buyer"].ByContract[delivery], 0.001)
}

func TestOrderStatusCounts(t *testing.T) {
	calc := NewCalculator(fullFillHistory(t))
	counts := calc.OrderStatusCounts()

	buyer := counts["buyer"]
	assert.Equal(t, 1, buyer.TotalOrders)
	assert.Equal(t, 1, buyer.ByStatus[core.StatusFilled])
	assert.Equal(t, 1, buyer.ByEvent[core.EventSubmitted])
	assert.Equal(t, 1, buyer.ByEvent[core.EventFilled])
}

func TestExecutionPrices(t *testing.T) {
	calc := NewCalculator(fullFillHistory(t))
	prices := calc.ExecutionPrices()

	buyer := prices["buyer"]
	assert.Equal(t, 1, buyer.Count)
	assert.InDelta(t, 50.0, buyer.VWAP, 0.001)
	assert.InDelta(t, 50.0, buyer.Mean, 0.001)
	require.NotNil(t, buyer.Buy)
	assert.Nil(t, buyer.Sell)
	assert.InDelta(t, 50.0, buyer.Buy.VWAP, 0.001)

	seller := prices["seller"]
	require.NotNil(t, seller.Sell)
	assert.InDelta(t, 60.0, seller.Sell.VWAP, 0.001)
}

func TestBuyCost(t *testing.T) {
	calc := NewCalculator(fullFillHistory(t))
	costs := calc.BuyCost()

	assert.InDelta(t, 500.0, costs["buyer"].TotalCost, 0.001)
	assert.InDelta(t, 50.0, costs["buyer"].AvgPrice, 0.001)

	// The seller never bought anything
	assert.Equal(t, 0.0, costs["seller"].TotalCost)
}

func TestVolumeExecutionRate(t *testing.T) {
	calc := NewCalculator(fullFillHistory(t))
	rates := calc.VolumeExecutionRate()

	buyer := rates["buyer"]
	assert.InDelta(t, 10.0, buyer.Intended, 0.001)
	assert.InDelta(t, 10.0, buyer.Executed, 0.001)
	assert.InDelta(t, 1.0, buyer.Rate, 0.001)
	require.NotNil(t, buyer.Buy)
	assert.Nil(t, buyer.Sell)
}

func TestRunAll(t *testing.T) {
	calc := NewCalculator(fullFillHistory(t))
	summary := calc.RunAll()

	assert.Len(t, summary.FillRate, 2)
	assert.Len(t, summary.TimeToFill, 2)
	assert.Len(t, summary.ContractVolume, 2)
	assert.Len(t, summary.OrderStatusCounts, 2)
	assert.Len(t, summary.ExecutionPrices, 2)
	assert.Len(t, summary.BuyCost, 2)
	assert.Len(t, summary.VolumeExecutionRate, 2)
}

func TestEmptyHistory(t *testing.T) {
	calc := NewCalculator(nil)

	assert.Empty(t, calc.Strategies())
	assert.Empty(t, calc.FillRate())
	assert.Empty(t, calc.RunAll().ExecutionPrices)
}
