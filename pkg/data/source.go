package data

import (
	"errors"
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// ErrNoData is returned when a source has no value for the requested
// delivery window at the requested observation time.
var ErrNoData = errors.New("no data for delivery window")

// Source supplies a reference value (price, load, ...) for a delivery
// window as observable at the current simulation time. Strategies and
// clearing mechanisms consult sources; the simulation core never does.
type Source interface {
	// Name identifies the source in logs
	Name() string

	// At returns the value for the delivery window as known at now
	At(delivery, now time.Time) (fpdecimal.Decimal, error)
}
