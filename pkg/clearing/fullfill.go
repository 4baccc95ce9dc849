package clearing

import (
	"time"

	"github.com/enersim/intrasim/pkg/core"
)

// FullFill fills every order completely at its own limit price on the tick
// after submission. It models a perfectly liquid market and is the
// baseline mechanism for strategy experiments.
type FullFill struct{}

// NewFullFill creates a FullFill clearing mechanism
func NewFullFill() *FullFill {
	return &FullFill{}
}

// Name identifies the mechanism
func (f *FullFill) Name() string {
	return "full-fill"
}

// Clear fills all orders submitted before the current tick
func (f *FullFill) Clear(now time.Time, book *core.Book) ([]core.Fill, error) {
	fills := make([]core.Fill, 0)

	for _, order := range book.Orders() {
		if !order.SubmittedAt().Before(now) {
			continue
		}

		fills = append(fills, core.Fill{
			OrderID:  order.ID(),
			Price:    order.Price(),
			Quantity: order.Quantity(),
			Time:     now,
		})
	}

	return fills, nil
}

// Ensure FullFill implements ClearingMechanism
var _ core.ClearingMechanism = (*FullFill)(nil)
