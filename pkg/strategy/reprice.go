package strategy

import (
	"errors"
	"fmt"
	"time"

	"github.com/enersim/intrasim/pkg/core"
	"github.com/enersim/intrasim/pkg/data"
	"github.com/nikolaydubina/fpdecimal"
)

// RepriceConfig configures a Reprice strategy
type RepriceConfig struct {
	// ID tags the strategy's orders
	ID string
	// Side is the side all orders are placed on
	Side core.Side
	// Quantity per delivery window
	Quantity fpdecimal.Decimal
	// Price supplies the reference price per delivery window
	Price data.Source
	// Window is the delivery window size
	Window time.Duration
	// Lead is how far ahead of delivery orders are placed
	Lead time.Duration
	// CancelBefore pulls orders this close to delivery
	CancelBefore time.Duration
	// OffsetPercent is the initial limit offset away from the reference
	// price (below for buys, above for sells)
	OffsetPercent float64
}

// Reprice places one order per delivery window at a passive offset from
// the reference price, then walks the limit toward the reference each tick
// and cancels orders that get too close to delivery unfilled.
type Reprice struct {
	cfg     RepriceConfig
	start   time.Time
	end     time.Time
	active  []core.Order
	covered map[int64]bool
}

// NewReprice validates the configuration and creates the strategy
func NewReprice(cfg RepriceConfig) (*Reprice, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("%w: strategy id is required", core.ErrInvalidArgument)
	}
	if cfg.Price == nil {
		return nil, fmt.Errorf("%w: price source is required", core.ErrInvalidArgument)
	}
	if cfg.Quantity.LessThanOrEqual(fpdecimal.Zero) {
		return nil, core.ErrInvalidQuantity
	}
	if cfg.Window <= 0 || cfg.Lead <= 0 {
		return nil, fmt.Errorf("%w: window and lead must be positive", core.ErrInvalidArgument)
	}

	return &Reprice{
		cfg:     cfg,
		covered: make(map[int64]bool),
	}, nil
}

// ID returns the strategy identifier
func (r *Reprice) ID() string {
	return r.cfg.ID
}

// Initialize records the run window
func (r *Reprice) Initialize(start, end time.Time) {
	r.start = start
	r.end = end
}

// UpdateOrders reprices or cancels outstanding orders, then places a new
// order for the next uncovered delivery window.
func (r *Reprice) UpdateOrders(now time.Time) (core.OrderBatch, error) {
	var batch core.OrderBatch

	for _, order := range r.active {
		if order.Delivery().Sub(now) <= r.cfg.CancelBefore {
			batch.Cancels = append(batch.Cancels, order.ID())
			continue
		}

		ref, err := r.cfg.Price.At(order.Delivery(), now)
		if err != nil {
			if errors.Is(err, data.ErrNoData) {
				continue
			}
			return batch, err
		}

		// Walk the limit halfway toward the reference price
		next := fpdecimal.FromFloat((order.Price().Float64() + ref.Float64()) / 2)
		if next.Equal(order.Price()) {
			continue
		}

		price := next
		batch.Updates = append(batch.Updates, core.OrderUpdate{
			OrderID: order.ID(),
			Price:   &price,
		})
	}

	delivery := now.Add(r.cfg.Lead).Truncate(r.cfg.Window)
	if !delivery.After(now) || r.covered[delivery.Unix()] {
		return batch, nil
	}

	ref, err := r.cfg.Price.At(delivery, now)
	if err != nil {
		if errors.Is(err, data.ErrNoData) {
			return batch, nil
		}
		return batch, err
	}

	offset := r.cfg.OffsetPercent / 100
	var limit fpdecimal.Decimal
	if r.cfg.Side == core.Buy {
		limit = fpdecimal.FromFloat(ref.Float64() * (1 - offset))
	} else {
		limit = fpdecimal.FromFloat(ref.Float64() * (1 + offset))
	}

	order, err := core.NewLimitOrder("", r.cfg.Side, r.cfg.Quantity, limit, delivery, r.cfg.ID)
	if err != nil {
		return batch, err
	}

	r.covered[delivery.Unix()] = true
	batch.New = append(batch.New, order)

	return batch, nil
}

// ProcessResults replaces the strategy's view of its active orders
func (r *Reprice) ProcessResults(fb core.Feedback) {
	r.active = fb.Active
}

// Ensure Reprice implements Strategy
var _ core.Strategy = (*Reprice)(nil)
