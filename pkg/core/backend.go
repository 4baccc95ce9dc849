package core

// BookBackend defines the storage interface for the active-order set.
// Implementations must keep identifiers unique and return orders from
// Orders in a stable iteration order (submission time, then identifier).
type BookBackend interface {
	// Order operations
	GetOrder(orderID string) *Order
	StoreOrder(order *Order) error
	UpdateOrder(order *Order) error
	DeleteOrder(orderID string)

	// Orders returns all stored orders in stable iteration order
	Orders() []*Order

	// Len returns the number of stored orders
	Len() int
}
