package clearing

import (
	"errors"
	"time"

	"github.com/enersim/intrasim/pkg/core"
	"github.com/enersim/intrasim/pkg/data"
)

// VWAPCross fills resting orders against a reference VWAP from a data
// source: a buy fills when the VWAP drops to its limit or below, a sell
// when the VWAP rises to its limit or above, both at the VWAP. Orders
// submitted at the current tick rest until the next one.
type VWAPCross struct {
	source data.Source
}

// NewVWAPCross creates a VWAPCross backed by the given reference source
func NewVWAPCross(source data.Source) *VWAPCross {
	return &VWAPCross{source: source}
}

// Name identifies the mechanism
func (v *VWAPCross) Name() string {
	return "vwap-cross"
}

// Clear fills every resting order whose limit the reference VWAP crossed
func (v *VWAPCross) Clear(now time.Time, book *core.Book) ([]core.Fill, error) {
	fills := make([]core.Fill, 0)

	for _, order := range book.Orders() {
		if !order.SubmittedAt().Before(now) {
			continue
		}

		ref, err := v.source.At(order.Delivery(), now)
		if err != nil {
			if errors.Is(err, data.ErrNoData) {
				// Nothing traded yet for this window
				continue
			}
			return nil, err
		}

		crossed := (order.Side() == core.Buy && ref.LessThanOrEqual(order.Price())) ||
			(order.Side() == core.Sell && ref.GreaterThanOrEqual(order.Price()))
		if !crossed {
			continue
		}

		fills = append(fills, core.Fill{
			OrderID:  order.ID(),
			Price:    ref,
			Quantity: order.Quantity(),
			Time:     now,
		})
	}

	return fills, nil
}

// Ensure VWAPCross implements ClearingMechanism
var _ core.ClearingMechanism = (*VWAPCross)(nil)
