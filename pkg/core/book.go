package core

import (
	"sort"
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Book is the active-order set handed to the clearing mechanism each tick.
// It wraps a pluggable backend; every order it holds is active or
// partially filled.
type Book struct {
	backend BookBackend
}

// NewBook creates a Book on top of the given backend
func NewBook(backend BookBackend) *Book {
	return &Book{backend: backend}
}

// Get returns the order with the given identifier, or nil
func (b *Book) Get(orderID string) *Order {
	return b.backend.GetOrder(orderID)
}

// Len returns the number of active orders
func (b *Book) Len() int {
	return b.backend.Len()
}

// Orders returns all active orders in stable iteration order
func (b *Book) Orders() []*Order {
	return b.backend.Orders()
}

// OrdersFor returns the active orders of one delivery window, split into
// bids sorted best (highest) price first and asks sorted best (lowest)
// price first, each with price-time priority.
func (b *Book) OrdersFor(delivery time.Time) (bids, asks []*Order) {
	for _, order := range b.backend.Orders() {
		if !order.Delivery().Equal(delivery) {
			continue
		}
		if order.Side() == Buy {
			bids = append(bids, order)
		} else {
			asks = append(asks, order)
		}
	}

	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].Price().GreaterThan(bids[j].Price())
	})
	sort.SliceStable(asks, func(i, j int) bool {
		return asks[i].Price().LessThan(asks[j].Price())
	})

	return bids, asks
}

// Deliveries returns the distinct delivery windows with active orders,
// earliest first.
func (b *Book) Deliveries() []time.Time {
	seen := make(map[time.Time]bool)
	deliveries := make([]time.Time, 0)

	for _, order := range b.backend.Orders() {
		d := order.Delivery()
		if !seen[d] {
			seen[d] = true
			deliveries = append(deliveries, d)
		}
	}

	sort.Slice(deliveries, func(i, j int) bool {
		return deliveries[i].Before(deliveries[j])
	})

	return deliveries
}

// Volume returns the total remaining quantity on one side
func (b *Book) Volume(side Side) fpdecimal.Decimal {
	total := fpdecimal.Zero
	for _, order := range b.backend.Orders() {
		if order.Side() == side {
			total = total.Add(order.Quantity())
		}
	}
	return total
}

// store adds a new order, rejecting duplicate identifiers
func (b *Book) store(order *Order) error {
	return b.backend.StoreOrder(order)
}

// update persists changed order terms
func (b *Book) update(order *Order) error {
	return b.backend.UpdateOrder(order)
}

// remove deletes an order from the active set
func (b *Book) remove(orderID string) {
	b.backend.DeleteOrder(orderID)
}
