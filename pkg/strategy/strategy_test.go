package strategy

import (
	"testing"
	"time"

	"github.com/enersim/intrasim/pkg/core"
	"github.com/enersim/intrasim/pkg/data"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

// stubSource returns one fixed value per delivery window
type stubSource struct {
	values map[int64]float64
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) At(delivery, now time.Time) (fpdecimal.Decimal, error) {
	v, ok := s.values[delivery.Unix()]
	if !ok {
		return fpdecimal.Zero, data.ErrNoData
	}
	return fpdecimal.FromFloat(v), nil
}

func at(d time.Time, v float64) map[int64]float64 {
	return map[int64]float64{d.Unix(): v}
}

func TestNewLoadFollowerValidation(t *testing.T) {
	source := &stubSource{}

	tests := []struct {
		name string
		cfg  LoadFollowerConfig
	}{
		{"MissingID", LoadFollowerConfig{Load: source, Price: source, Window: time.Hour, Lead: time.Hour}},
		{"MissingSources", LoadFollowerConfig{ID: "x", Window: time.Hour, Lead: time.Hour}},
		{"ZeroWindow", LoadFollowerConfig{ID: "x", Load: source, Price: source, Lead: time.Hour}},
		{"ZeroLead", LoadFollowerConfig{ID: "x", Load: source, Price: source, Window: time.Hour}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoadFollower(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestLoadFollowerBuysOncePerWindow(t *testing.T) {
	delivery := start.Add(2 * time.Hour)

	strat, err := NewLoadFollower(LoadFollowerConfig{
		ID:             "lf",
		Load:           &stubSource{values: at(delivery, 7.5)},
		Price:          &stubSource{values: at(delivery, 50)},
		Window:         time.Hour,
		Lead:           2 * time.Hour,
		PremiumPercent: 2.0,
	})
	require.NoError(t, err)
	strat.Initialize(start, start.Add(6*time.Hour))

	batch, err := strat.UpdateOrders(start)
	require.NoError(t, err)
	require.Len(t, batch.New, 1)

	order := batch.New[0]
	assert.Equal(t, core.Buy, order.Side())
	assert.Equal(t, "lf", order.StrategyID())
	assert.True(t, order.Quantity().Equal(fpdecimal.FromFloat(7.5)))
	assert.True(t, order.Delivery().Equal(delivery))
	assert.True(t, order.Price().Equal(fpdecimal.FromFloat(51.0)), "limit is reference plus premium, got %v", order.Price())

	// The window is covered; a later tick in the same window buys nothing
	batch, err = strat.UpdateOrders(start.Add(15 * time.Minute))
	require.NoError(t, err)
	assert.Empty(t, batch.New)
}

func TestLoadFollowerRetriesWhenPriceMissing(t *testing.T) {
	delivery := start.Add(2 * time.Hour)

	price := &stubSource{values: map[int64]float64{}}
	strat, err := NewLoadFollower(LoadFollowerConfig{
		ID:     "lf",
		Load:   &stubSource{values: at(delivery, 5)},
		Price:  price,
		Window: time.Hour,
		Lead:   2 * time.Hour,
	})
	require.NoError(t, err)

	batch, err := strat.UpdateOrders(start)
	require.NoError(t, err)
	assert.Empty(t, batch.New, "no reference price yet")

	// Once a price shows up the same window gets bought
	price.values = at(delivery, 50)
	batch, err = strat.UpdateOrders(start.Add(15 * time.Minute))
	require.NoError(t, err)
	assert.Len(t, batch.New, 1)
}

func TestLoadFollowerSkipsZeroLoad(t *testing.T) {
	delivery := start.Add(2 * time.Hour)

	strat, err := NewLoadFollower(LoadFollowerConfig{
		ID:     "lf",
		Load:   &stubSource{values: at(delivery, 0)},
		Price:  &stubSource{values: at(delivery, 50)},
		Window: time.Hour,
		Lead:   2 * time.Hour,
	})
	require.NoError(t, err)

	batch, err := strat.UpdateOrders(start)
	require.NoError(t, err)
	assert.Empty(t, batch.New)

	// Zero load marks the window covered for good
	batch, err = strat.UpdateOrders(start.Add(15 * time.Minute))
	require.NoError(t, err)
	assert.Empty(t, batch.New)
}

func TestLoadFollowerTracksBoughtVolume(t *testing.T) {
	strat, err := NewLoadFollower(LoadFollowerConfig{
		ID:     "lf",
		Load:   &stubSource{},
		Price:  &stubSource{},
		Window: time.Hour,
		Lead:   2 * time.Hour,
	})
	require.NoError(t, err)

	strat.ProcessResults(core.Feedback{Filled: []core.Fill{
		{OrderID: "o1", Quantity: fpdecimal.FromFloat(3.0)},
		{OrderID: "o2", Quantity: fpdecimal.FromFloat(4.5)},
	}})

	assert.True(t, strat.Bought().Equal(fpdecimal.FromFloat(7.5)))
}

func TestNewRepriceValidation(t *testing.T) {
	source := &stubSource{}

	_, err := NewReprice(RepriceConfig{Side: core.Sell, Quantity: fpdecimal.FromInt(5), Price: source, Window: time.Hour, Lead: time.Hour})
	assert.Error(t, err, "missing id")

	_, err = NewReprice(RepriceConfig{ID: "x", Side: core.Sell, Quantity: fpdecimal.Zero, Price: source, Window: time.Hour, Lead: time.Hour})
	assert.ErrorIs(t, err, core.ErrInvalidQuantity)
}

func TestRepricePlacesPassiveOrder(t *testing.T) {
	delivery := start.Add(3 * time.Hour)

	strat, err := NewReprice(RepriceConfig{
		ID:            "rp",
		Side:          core.Sell,
		Quantity:      fpdecimal.FromInt(5),
		Price:         &stubSource{values: at(delivery, 50)},
		Window:        time.Hour,
		Lead:          3 * time.Hour,
		CancelBefore:  30 * time.Minute,
		OffsetPercent: 2.0,
	})
	require.NoError(t, err)
	strat.Initialize(start, start.Add(6*time.Hour))

	batch, err := strat.UpdateOrders(start)
	require.NoError(t, err)
	require.Len(t, batch.New, 1)

	// Sells start above the reference
	assert.True(t, batch.New[0].Price().Equal(fpdecimal.FromFloat(51.0)), "got %v", batch.New[0].Price())
	assert.Equal(t, core.Sell, batch.New[0].Side())
}

func TestRepriceWalksTowardReference(t *testing.T) {
	delivery := start.Add(3 * time.Hour)

	strat, err := NewReprice(RepriceConfig{
		ID:            "rp",
		Side:          core.Sell,
		Quantity:      fpdecimal.FromInt(5),
		Price:         &stubSource{values: at(delivery, 50)},
		Window:        time.Hour,
		Lead:          3 * time.Hour,
		CancelBefore:  30 * time.Minute,
		OffsetPercent: 2.0,
	})
	require.NoError(t, err)

	active, err := core.NewLimitOrder("o1", core.Sell, fpdecimal.FromInt(5), fpdecimal.FromFloat(52.0), delivery, "rp")
	require.NoError(t, err)
	strat.ProcessResults(core.Feedback{Active: []core.Order{active.Snapshot()}})

	batch, err := strat.UpdateOrders(start.Add(15 * time.Minute))
	require.NoError(t, err)
	require.Len(t, batch.Updates, 1)

	assert.Equal(t, "o1", batch.Updates[0].OrderID)
	require.NotNil(t, batch.Updates[0].Price)
	assert.True(t, batch.Updates[0].Price.Equal(fpdecimal.FromFloat(51.0)), "halfway from 52 to 50, got %v", batch.Updates[0].Price)
	assert.Nil(t, batch.Updates[0].Quantity)
}

func TestRepriceCancelsCloseToDelivery(t *testing.T) {
	delivery := start.Add(3 * time.Hour)

	strat, err := NewReprice(RepriceConfig{
		ID:            "rp",
		Side:          core.Sell,
		Quantity:      fpdecimal.FromInt(5),
		Price:         &stubSource{values: at(delivery, 50)},
		Window:        time.Hour,
		Lead:          3 * time.Hour,
		CancelBefore:  30 * time.Minute,
		OffsetPercent: 2.0,
	})
	require.NoError(t, err)

	active, err := core.NewLimitOrder("o1", core.Sell, fpdecimal.FromInt(5), fpdecimal.FromFloat(52.0), delivery, "rp")
	require.NoError(t, err)
	strat.ProcessResults(core.Feedback{Active: []core.Order{active.Snapshot()}})

	batch, err := strat.UpdateOrders(delivery.Add(-20 * time.Minute))
	require.NoError(t, err)

	assert.Equal(t, []string{"o1"}, batch.Cancels)
	assert.Empty(t, batch.Updates)
}
