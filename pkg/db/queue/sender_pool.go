package queue

import (
	"fmt"
	"sync"

	"github.com/enersim/intrasim/pkg/messaging"
)

var (
	senderPool   chan messaging.EventSender
	poolInitOnce sync.Once
	maxPoolSize  = 8 // enough for parameter sweeps running sims in parallel
)

// initSenderPool initializes the sender pool
func initSenderPool() {
	poolInitOnce.Do(func() {
		senderPool = make(chan messaging.EventSender, maxPoolSize)
		for i := 0; i < maxPoolSize; i++ {
			sender, err := NewQueueEventSender()
			if err != nil {
				fmt.Printf("Error creating sender: %v\n", err)
				continue
			}
			if sender != nil {
				senderPool <- sender
			}
		}
	})
}

// GetSender gets a sender from the pool
func GetSender() messaging.EventSender {
	initSenderPool()

	select {
	case sender := <-senderPool:
		return sender
	default:
		fmt.Printf("Warning: sender pool is empty\n")
		return nil
	}
}

// ReturnSender returns a sender to the pool
func ReturnSender(sender messaging.EventSender) {
	if sender == nil {
		return
	}

	select {
	case senderPool <- sender:
	default:
		// Pool full, drop the sender
	}
}
