package strategy

import (
	"errors"
	"fmt"
	"time"

	"github.com/enersim/intrasim/pkg/core"
	"github.com/enersim/intrasim/pkg/data"
	"github.com/nikolaydubina/fpdecimal"
)

// LoadFollowerConfig configures a LoadFollower strategy
type LoadFollowerConfig struct {
	// ID tags the strategy's orders
	ID string
	// Load supplies the quantity to procure per delivery window
	Load data.Source
	// Price supplies the reference price per delivery window
	Price data.Source
	// Window is the delivery window size, e.g. one hour
	Window time.Duration
	// Lead is how far ahead of delivery the strategy buys
	Lead time.Duration
	// PremiumPercent is added on top of the reference price to improve
	// the odds of filling
	PremiumPercent float64
}

// LoadFollower procures the energy demanded by a load profile: one buy
// order per upcoming delivery window, limit priced off a reference source.
type LoadFollower struct {
	cfg     LoadFollowerConfig
	start   time.Time
	end     time.Time
	covered map[int64]bool
	bought  fpdecimal.Decimal
}

// NewLoadFollower validates the configuration and creates the strategy
func NewLoadFollower(cfg LoadFollowerConfig) (*LoadFollower, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("%w: strategy id is required", core.ErrInvalidArgument)
	}
	if cfg.Load == nil || cfg.Price == nil {
		return nil, fmt.Errorf("%w: load and price sources are required", core.ErrInvalidArgument)
	}
	if cfg.Window <= 0 || cfg.Lead <= 0 {
		return nil, fmt.Errorf("%w: window and lead must be positive", core.ErrInvalidArgument)
	}

	return &LoadFollower{
		cfg:     cfg,
		covered: make(map[int64]bool),
		bought:  fpdecimal.Zero,
	}, nil
}

// ID returns the strategy identifier
func (l *LoadFollower) ID() string {
	return l.cfg.ID
}

// Initialize records the run window
func (l *LoadFollower) Initialize(start, end time.Time) {
	l.start = start
	l.end = end
}

// UpdateOrders places one buy order for the delivery window Lead ahead of
// now, sized from the load profile, once per window.
func (l *LoadFollower) UpdateOrders(now time.Time) (core.OrderBatch, error) {
	var batch core.OrderBatch

	delivery := now.Add(l.cfg.Lead).Truncate(l.cfg.Window)
	if !delivery.After(now) || l.covered[delivery.Unix()] {
		return batch, nil
	}

	qty, err := l.cfg.Load.At(delivery, now)
	if err != nil {
		if errors.Is(err, data.ErrNoData) {
			return batch, nil
		}
		return batch, err
	}

	if qty.LessThanOrEqual(fpdecimal.Zero) {
		l.covered[delivery.Unix()] = true
		return batch, nil
	}

	ref, err := l.cfg.Price.At(delivery, now)
	if err != nil {
		if errors.Is(err, data.ErrNoData) {
			// No reference price yet, retry next tick
			return batch, nil
		}
		return batch, err
	}

	limit := fpdecimal.FromFloat(ref.Float64() * (1 + l.cfg.PremiumPercent/100))

	order, err := core.NewLimitOrder("", core.Buy, qty, limit, delivery, l.cfg.ID)
	if err != nil {
		return batch, err
	}

	l.covered[delivery.Unix()] = true
	batch.New = append(batch.New, order)

	return batch, nil
}

// ProcessResults accumulates the filled volume
func (l *LoadFollower) ProcessResults(fb core.Feedback) {
	for _, fill := range fb.Filled {
		l.bought = l.bought.Add(fill.Quantity)
	}
}

// Bought returns the total volume filled so far
func (l *LoadFollower) Bought() fpdecimal.Decimal {
	return l.bought
}

// Ensure LoadFollower implements Strategy
var _ core.Strategy = (*LoadFollower)(nil)
