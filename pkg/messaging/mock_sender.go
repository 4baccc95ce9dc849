package messaging

// MockEventSender is an in-memory implementation of EventSender for testing.
type MockEventSender struct {
	Sent []*EventMessage
}

// NewMockEventSender creates a new MockEventSender.
func NewMockEventSender() *MockEventSender {
	return &MockEventSender{}
}

// SendEvent records the event.
func (m *MockEventSender) SendEvent(event *EventMessage) error {
	m.Sent = append(m.Sent, event)
	return nil
}

// Close does nothing.
func (m *MockEventSender) Close() error {
	return nil
}

// Ensure MockEventSender implements EventSender
var _ EventSender = (*MockEventSender)(nil)
