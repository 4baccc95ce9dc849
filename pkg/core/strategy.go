package core

import "time"

// Strategy decides which orders to create, change, or cancel at each tick.
// Implementations must be deterministic given their internal state and the
// current time, and must not mutate driver-owned state; the driver hands
// them snapshots only.
type Strategy interface {
	// ID returns the stable identifier that tags this strategy's orders
	ID() string

	// Initialize is called once before the first tick with the run window
	Initialize(start, end time.Time)

	// UpdateOrders returns the order instructions for the current tick.
	// An error aborts the run.
	UpdateOrders(now time.Time) (OrderBatch, error)

	// ProcessResults delivers the strategy's fills, expiries, and active
	// orders after each tick completes.
	ProcessResults(fb Feedback)
}

// ClearingMechanism decides which active orders trade at a tick. Fills must
// reference orders present in the book and must not exceed their remaining
// quantity. Clearing must be a pure function of (now, book) unless the
// mechanism explicitly models internal state of its own.
type ClearingMechanism interface {
	// Name identifies the mechanism in logs and results
	Name() string

	// Clear returns the fills for this tick. An error aborts the run.
	Clear(now time.Time, book *Book) ([]Fill, error)
}
