package messaging

// EventSender defines an interface for publishing order lifecycle events.
// This decouples the core package from specific transports like Kafka in
// the queue package.
type EventSender interface {
	SendEvent(event *EventMessage) error
}

// EventMessage is the wire representation of one order history event.
// Decimal and time fields are formatted strings.
type EventMessage struct {
	RunID        string `json:"runId"`
	EventType    string `json:"eventType"`
	Time         string `json:"time"`
	OrderID      string `json:"orderId"`
	StrategyID   string `json:"strategyId"`
	Side         string `json:"side"`
	Price        string `json:"price"`
	RemainingQty string `json:"remainingQty"`
	OriginalQty  string `json:"originalQty"`
	Delivery     string `json:"delivery"`
	Status       string `json:"status"`
	FillPrice    string `json:"fillPrice,omitempty"`
	FillQty      string `json:"fillQty,omitempty"`
}
