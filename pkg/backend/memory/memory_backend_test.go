package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/enersim/intrasim/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var delivery = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newOrder(t *testing.T, id string) *core.Order {
	t.Helper()
	order, err := core.NewLimitOrder(id, core.Buy, fpdecimal.FromFloat(10.0), fpdecimal.FromFloat(50.0), delivery, "strat-a")
	require.NoError(t, err)
	return order
}

func TestNewMemoryBackend(t *testing.T) {
	backend := NewMemoryBackend()
	assert.NotNil(t, backend)
	assert.NotNil(t, backend.orders)
	assert.NotNil(t, backend.seq)
	assert.Equal(t, 0, backend.Len())
}

func TestMemoryBackend_OrderOperations(t *testing.T) {
	backend := NewMemoryBackend()
	order := newOrder(t, "test-123")

	require.NoError(t, backend.StoreOrder(order))
	assert.Equal(t, 1, backend.Len())

	retrieved := backend.GetOrder("test-123")
	require.NotNil(t, retrieved)
	assert.Equal(t, "test-123", retrieved.ID())

	// Storing the same identifier again is rejected
	err := backend.StoreOrder(newOrder(t, "test-123"))
	assert.ErrorIs(t, err, core.ErrOrderExists)

	require.NoError(t, backend.UpdateOrder(order))

	backend.DeleteOrder("test-123")
	assert.Nil(t, backend.GetOrder("test-123"))
	assert.Equal(t, 0, backend.Len())
}

func TestMemoryBackend_UpdateNonexistent(t *testing.T) {
	backend := NewMemoryBackend()

	err := backend.UpdateOrder(newOrder(t, "ghost"))
	assert.ErrorIs(t, err, core.ErrNonexistentOrder)
}

func TestMemoryBackend_GetNonexistent(t *testing.T) {
	backend := NewMemoryBackend()
	assert.Nil(t, backend.GetOrder("missing"))
}

func TestMemoryBackend_OrdersInsertionOrder(t *testing.T) {
	backend := NewMemoryBackend()

	ids := []string{"c", "a", "b", "z", "m"}
	for _, id := range ids {
		require.NoError(t, backend.StoreOrder(newOrder(t, id)))
	}

	orders := backend.Orders()
	require.Len(t, orders, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, orders[i].ID())
	}

	// Deleting and re-adding moves an order to the back
	backend.DeleteOrder("a")
	require.NoError(t, backend.StoreOrder(newOrder(t, "a")))

	orders = backend.Orders()
	assert.Equal(t, "a", orders[len(orders)-1].ID())
}

func BenchmarkMemoryBackend_StoreOrder(b *testing.B) {
	backend := NewMemoryBackend()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		orderID := fmt.Sprintf("order-%d", i)
		order, _ := core.NewLimitOrder(orderID, core.Buy, fpdecimal.FromFloat(10.0), fpdecimal.FromFloat(50.0), delivery, "strat-a")
		_ = backend.StoreOrder(order)
	}
}
