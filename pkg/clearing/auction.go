package clearing

import (
	"time"

	"github.com/enersim/intrasim/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
)

// Auction is a periodic double auction per delivery window: crossing buy
// and sell limit orders match best price first with price-time priority.
// Execution happens at the resting (earlier-submitted) order's price, so
// the aggressor never trades worse than its own limit.
type Auction struct{}

// NewAuction creates an Auction clearing mechanism
func NewAuction() *Auction {
	return &Auction{}
}

// Name identifies the mechanism
func (a *Auction) Name() string {
	return "auction"
}

// Clear matches crossing orders within each delivery window
func (a *Auction) Clear(now time.Time, book *core.Book) ([]core.Fill, error) {
	fills := make([]core.Fill, 0)

	for _, delivery := range book.Deliveries() {
		bids, asks := book.OrdersFor(delivery)
		fills = append(fills, matchWindow(now, bids, asks)...)
	}

	return fills, nil
}

// matchWindow runs price-time priority matching over one delivery window.
// Remaining quantities are tracked locally; the driver applies the fills.
func matchWindow(now time.Time, bids, asks []*core.Order) []core.Fill {
	fills := make([]core.Fill, 0)

	remaining := make(map[string]fpdecimal.Decimal, len(bids)+len(asks))
	for _, o := range bids {
		remaining[o.ID()] = o.Quantity()
	}
	for _, o := range asks {
		remaining[o.ID()] = o.Quantity()
	}

	bi, ai := 0, 0
	for bi < len(bids) && ai < len(asks) {
		bid, ask := bids[bi], asks[ai]

		if remaining[bid.ID()].Equal(fpdecimal.Zero) {
			bi++
			continue
		}
		if remaining[ask.ID()].Equal(fpdecimal.Zero) {
			ai++
			continue
		}

		if bid.Price().LessThan(ask.Price()) {
			break
		}

		qty := min(remaining[bid.ID()], remaining[ask.ID()])
		price := restingPrice(bid, ask)

		fills = append(fills,
			core.Fill{OrderID: bid.ID(), Price: price, Quantity: qty, Time: now},
			core.Fill{OrderID: ask.ID(), Price: price, Quantity: qty, Time: now},
		)

		remaining[bid.ID()] = remaining[bid.ID()].Sub(qty)
		remaining[ask.ID()] = remaining[ask.ID()].Sub(qty)
	}

	return fills
}

// restingPrice returns the price of the earlier-submitted order. When both
// sides arrived at the same tick the ask price wins.
func restingPrice(bid, ask *core.Order) fpdecimal.Decimal {
	if bid.SubmittedAt().Before(ask.SubmittedAt()) {
		return bid.Price()
	}
	return ask.Price()
}

func min(a, b fpdecimal.Decimal) fpdecimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Ensure Auction implements ClearingMechanism
var _ core.ClearingMechanism = (*Auction)(nil)
