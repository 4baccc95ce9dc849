package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nikolaydubina/fpdecimal"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Status represents the lifecycle state of an order
type Status string

// Order statuses
const (
	StatusActive          Status = "ACTIVE"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusFilled          Status = "FILLED"
	StatusCanceled        Status = "CANCELED"
	StatusExpired         Status = "EXPIRED"
)

// Order stores information about a limit order for one delivery window.
// Fields are mutated only by the simulation driver; strategies and clearing
// mechanisms observe orders through accessors and snapshots.
type Order struct {
	id          string
	side        Side
	price       fpdecimal.Decimal
	quantity    fpdecimal.Decimal
	originalQty fpdecimal.Decimal
	delivery    time.Time
	submittedAt time.Time
	strategyID  string
	status      Status
	updateCount int
}

// NewLimitOrder creates a new limit order. An empty orderID gets a generated
// UUID. Quantity and price must be strictly positive.
func NewLimitOrder(orderID string, side Side, quantity, price fpdecimal.Decimal, delivery time.Time, strategyID string) (*Order, error) {
	if side != Buy && side != Sell {
		return nil, ErrInvalidSide
	}

	if quantity.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidQuantity
	}

	if price.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidPrice
	}

	if orderID == "" {
		orderID = uuid.NewString()
	}

	return &Order{
		id:          orderID,
		side:        side,
		price:       price,
		quantity:    quantity,
		originalQty: quantity,
		delivery:    delivery,
		strategyID:  strategyID,
		status:      StatusActive,
	}, nil
}

// ID returns the order identifier
func (o *Order) ID() string {
	return o.id
}

// Side returns side of the Order
func (o *Order) Side() Side {
	return o.side
}

// Price returns the limit price
func (o *Order) Price() fpdecimal.Decimal {
	return o.price
}

// Quantity returns the remaining quantity
func (o *Order) Quantity() fpdecimal.Decimal {
	return o.quantity
}

// OriginalQty returns the quantity the order was created with
func (o *Order) OriginalQty() fpdecimal.Decimal {
	return o.originalQty
}

// Delivery returns the delivery time of the traded contract
func (o *Order) Delivery() time.Time {
	return o.delivery
}

// SubmittedAt returns the time the order entered the book
func (o *Order) SubmittedAt() time.Time {
	return o.submittedAt
}

// StrategyID returns the identifier of the owning strategy
func (o *Order) StrategyID() string {
	return o.strategyID
}

// Status returns the current order status
func (o *Order) Status() Status {
	return o.status
}

// UpdateCount returns how many times the order terms were changed
func (o *Order) UpdateCount() int {
	return o.updateCount
}

// IsActive reports whether the order can still trade
func (o *Order) IsActive() bool {
	return o.status == StatusActive || o.status == StatusPartiallyFilled
}

// Snapshot returns a value copy of the order
func (o *Order) Snapshot() Order {
	return *o
}

// markSubmitted stamps the submission time on entry into the book.
func (o *Order) markSubmitted(now time.Time) {
	if o.submittedAt.IsZero() {
		o.submittedAt = now
	}
}

// applyUpdate changes price and/or quantity. Nil means unchanged.
func (o *Order) applyUpdate(price, quantity *fpdecimal.Decimal) error {
	if price != nil {
		if price.LessThanOrEqual(fpdecimal.Zero) {
			return ErrInvalidPrice
		}
		o.price = *price
	}

	if quantity != nil {
		if quantity.LessThanOrEqual(fpdecimal.Zero) {
			return ErrInvalidQuantity
		}
		o.quantity = *quantity
		if quantity.GreaterThan(o.originalQty) {
			o.originalQty = *quantity
		}
	}

	o.updateCount++
	return nil
}

// applyFill reduces the remaining quantity and updates the status.
func (o *Order) applyFill(quantity fpdecimal.Decimal) error {
	if quantity.LessThanOrEqual(fpdecimal.Zero) {
		return ErrInvalidQuantity
	}

	if quantity.GreaterThan(o.quantity) {
		return ErrExcessiveFill
	}

	o.quantity = o.quantity.Sub(quantity)
	if o.quantity.Equal(fpdecimal.Zero) {
		o.status = StatusFilled
	} else {
		o.status = StatusPartiallyFilled
	}

	return nil
}

// markCanceled sets the terminal canceled status
func (o *Order) markCanceled() {
	o.status = StatusCanceled
}

// markExpired sets the terminal expired status
func (o *Order) markExpired() {
	o.status = StatusExpired
}

// orderJSON is the wire form of Order with decimals and times as strings
type orderJSON struct {
	ID          string `json:"id"`
	Side        string `json:"side"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	OriginalQty string `json:"originalQty"`
	Delivery    string `json:"delivery"`
	SubmittedAt string `json:"submittedAt"`
	StrategyID  string `json:"strategyId"`
	Status      Status `json:"status"`
	UpdateCount int    `json:"updateCount"`
}

// MarshalJSON implements custom JSON marshaling for Order
func (o *Order) MarshalJSON() ([]byte, error) {
	submitted := ""
	if !o.submittedAt.IsZero() {
		submitted = o.submittedAt.Format(time.RFC3339Nano)
	}

	return json.Marshal(orderJSON{
		ID:          o.id,
		Side:        o.side.String(),
		Price:       o.price.String(),
		Quantity:    o.quantity.String(),
		OriginalQty: o.originalQty.String(),
		Delivery:    o.delivery.Format(time.RFC3339Nano),
		SubmittedAt: submitted,
		StrategyID:  o.strategyID,
		Status:      o.status,
		UpdateCount: o.updateCount,
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Order
func (o *Order) UnmarshalJSON(data []byte) error {
	var oj orderJSON
	if err := json.Unmarshal(data, &oj); err != nil {
		return err
	}

	var err error

	o.id = oj.ID
	if oj.Side == "BUY" {
		o.side = Buy
	} else {
		o.side = Sell
	}

	o.price, err = fpdecimal.FromString(oj.Price)
	if err != nil {
		o.price = fpdecimal.Zero
	}

	o.quantity, err = fpdecimal.FromString(oj.Quantity)
	if err != nil {
		o.quantity = fpdecimal.Zero
	}

	o.originalQty, err = fpdecimal.FromString(oj.OriginalQty)
	if err != nil {
		o.originalQty = fpdecimal.Zero
	}

	o.delivery, err = time.Parse(time.RFC3339Nano, oj.Delivery)
	if err != nil {
		o.delivery = time.Time{}
	}

	if oj.SubmittedAt != "" {
		o.submittedAt, err = time.Parse(time.RFC3339Nano, oj.SubmittedAt)
		if err != nil {
			o.submittedAt = time.Time{}
		}
	}

	o.strategyID = oj.StrategyID
	o.status = oj.Status
	o.updateCount = oj.UpdateCount

	return nil
}

// String implements Stringer interface
func (o *Order) String() string {
	j, _ := o.MarshalJSON()
	return string(j)
}
