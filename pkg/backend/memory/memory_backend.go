package memory

import (
	"sort"
	"sync"

	"github.com/enersim/intrasim/pkg/core"
)

// MemoryBackend implements core.BookBackend with in-memory storage. It is
// the default backend for single-process research runs.
type MemoryBackend struct {
	sync.RWMutex
	orders  map[string]*core.Order
	seq     map[string]uint64
	nextSeq uint64
}

// NewMemoryBackend creates new instance of MemoryBackend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		orders: make(map[string]*core.Order),
		seq:    make(map[string]uint64),
	}
}

// GetOrder retrieves an order by ID
func (b *MemoryBackend) GetOrder(orderID string) *core.Order {
	b.RLock()
	defer b.RUnlock()
	return b.orders[orderID]
}

// StoreOrder stores an order, rejecting duplicate identifiers
func (b *MemoryBackend) StoreOrder(order *core.Order) error {
	b.Lock()
	defer b.Unlock()

	if _, exists := b.orders[order.ID()]; exists {
		return core.ErrOrderExists
	}

	b.orders[order.ID()] = order
	b.seq[order.ID()] = b.nextSeq
	b.nextSeq++

	return nil
}

// UpdateOrder updates an existing order
func (b *MemoryBackend) UpdateOrder(order *core.Order) error {
	b.Lock()
	defer b.Unlock()

	if _, exists := b.orders[order.ID()]; !exists {
		return core.ErrNonexistentOrder
	}

	b.orders[order.ID()] = order
	return nil
}

// DeleteOrder deletes an order
func (b *MemoryBackend) DeleteOrder(orderID string) {
	b.Lock()
	defer b.Unlock()

	delete(b.orders, orderID)
	delete(b.seq, orderID)
}

// Orders returns all stored orders in insertion order. Insertion order is
// what keeps replays of identical inputs byte-identical.
func (b *MemoryBackend) Orders() []*core.Order {
	b.RLock()
	defer b.RUnlock()

	orders := make([]*core.Order, 0, len(b.orders))
	for _, order := range b.orders {
		orders = append(orders, order)
	}

	sort.Slice(orders, func(i, j int) bool {
		return b.seq[orders[i].ID()] < b.seq[orders[j].ID()]
	})

	return orders
}

// Len returns the number of stored orders
func (b *MemoryBackend) Len() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.orders)
}

// Ensure MemoryBackend implements BookBackend
var _ core.BookBackend = (*MemoryBackend)(nil)
