package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"github.com/enersim/intrasim/pkg/messaging"
)

var (
	mu         sync.RWMutex
	brokerList = "localhost:9092"
	topic      = "sim-events"

	// newProducer is swapped out by tests
	newProducer = func(brokers []string) (sarama.SyncProducer, error) {
		return sarama.NewSyncProducer(brokers, nil)
	}
)

// SetBrokerList overrides the Kafka broker address used by new senders
func SetBrokerList(brokers string) {
	mu.Lock()
	defer mu.Unlock()
	brokerList = brokers
}

// SetTopic overrides the Kafka topic used by new senders
func SetTopic(t string) {
	mu.Lock()
	defer mu.Unlock()
	topic = t
}

// QueueEventSender implements the EventSender interface for sending order
// events to Kafka through a sarama sync producer.
type QueueEventSender struct {
	producer sarama.SyncProducer
	topic    string
}

// NewQueueEventSender creates a sender connected to the configured broker
func NewQueueEventSender() (*QueueEventSender, error) {
	mu.RLock()
	brokers, t := brokerList, topic
	mu.RUnlock()

	producer, err := newProducer([]string{brokers})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueEventSender{producer: producer, topic: t}, nil
}

// SendEvent publishes the event message to the Kafka queue
func (q *QueueEventSender) SendEvent(event *messaging.EventMessage) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event message: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
	}

	_, _, err = q.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer
func (q *QueueEventSender) Close() error {
	return q.producer.Close()
}

// Ensure QueueEventSender implements EventSender
var _ messaging.EventSender = (*QueueEventSender)(nil)
