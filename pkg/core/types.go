package core

import (
	"encoding/json"
	"time"

	"github.com/enersim/intrasim/pkg/messaging"
	"github.com/nikolaydubina/fpdecimal"
)

// EventType identifies an order lifecycle event
type EventType string

// Order lifecycle events
const (
	EventSubmitted EventType = "SUBMITTED"
	EventUpdated   EventType = "UPDATED"
	EventCanceled  EventType = "CANCELED"
	EventFilled    EventType = "FILLED"
	EventExpired   EventType = "EXPIRED"
)

// Fill is one clearing outcome. Quantity must not exceed the remaining
// quantity of the referenced order at clearing time.
type Fill struct {
	OrderID  string
	Price    fpdecimal.Decimal
	Quantity fpdecimal.Decimal
	Time     time.Time
}

// MarshalJSON implements Marshaler interface
func (f *Fill) MarshalJSON() ([]byte, error) {
	customStruct := struct {
		OrderID  string `json:"orderID"`
		Price    string `json:"price"`
		Quantity string `json:"quantity"`
		Time     string `json:"time"`
	}{
		OrderID:  f.OrderID,
		Price:    f.Price.String(),
		Quantity: f.Quantity.String(),
		Time:     f.Time.Format(time.RFC3339Nano),
	}
	return json.Marshal(customStruct)
}

// Event is one entry of the order history: an order snapshot taken when the
// lifecycle event happened. Fill is set for FILLED events only.
type Event struct {
	Type  EventType
	Time  time.Time
	Order Order
	Fill  *Fill
}

// MarshalJSON implements json.Marshaler interface for Event
func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  EventType `json:"type"`
		Time  string    `json:"time"`
		Order *Order    `json:"order"`
		Fill  *Fill     `json:"fill,omitempty"`
	}{
		Type:  e.Type,
		Time:  e.Time.Format(time.RFC3339Nano),
		Order: &e.Order,
		Fill:  e.Fill,
	})
}

// OrderUpdate changes the terms of an existing order. A nil price or
// quantity leaves that term unchanged.
type OrderUpdate struct {
	OrderID  string
	Price    *fpdecimal.Decimal
	Quantity *fpdecimal.Decimal
}

// OrderBatch is the set of order instructions one strategy emits for a tick.
// The three collections are disjoint.
type OrderBatch struct {
	// New orders to merge into the book
	New []*Order
	// Term changes for orders already in the book
	Updates []OrderUpdate
	// Identifiers of orders to remove from the book
	Cancels []string
}

// Feedback carries one strategy's view of the last tick: its fills, its
// expired orders, and snapshots of its still-active orders.
type Feedback struct {
	Filled  []Fill
	Expired []Order
	Active  []Order
}

// Result is the output of a completed run. History is append-only and
// ordered by occurrence.
type Result struct {
	RunID   string
	Start   time.Time
	End     time.Time
	Step    time.Duration
	History []Event
}

// Events returns the events for one strategy, in history order.
func (r *Result) Events(strategyID string) []Event {
	events := make([]Event, 0)
	for _, e := range r.History {
		if e.Order.StrategyID() == strategyID {
			events = append(events, e)
		}
	}
	return events
}

// ToMessagingEvent converts an Event to a messaging.EventMessage.
func (e *Event) ToMessagingEvent(runID string) *messaging.EventMessage {
	msg := &messaging.EventMessage{
		RunID:        runID,
		EventType:    string(e.Type),
		Time:         e.Time.Format(time.RFC3339Nano),
		OrderID:      e.Order.ID(),
		StrategyID:   e.Order.StrategyID(),
		Side:         e.Order.Side().String(),
		Price:        e.Order.Price().String(),
		RemainingQty: e.Order.Quantity().String(),
		OriginalQty:  e.Order.OriginalQty().String(),
		Delivery:     e.Order.Delivery().Format(time.RFC3339Nano),
		Status:       string(e.Order.Status()),
	}

	if e.Fill != nil {
		msg.FillPrice = e.Fill.Price.String()
		msg.FillQty = e.Fill.Quantity.String()
	}

	return msg
}
