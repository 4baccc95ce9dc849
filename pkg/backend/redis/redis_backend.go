package redis

import (
	"context"
	"encoding/json"

	"github.com/enersim/intrasim/pkg/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions represents configuration options for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

var defaultOptions = &RedisOptions{
	Addr:     "localhost:6379",
	Password: "",
	DB:       0,
}

// SetDefaultRedisOptions sets the default options for Redis connections
func SetDefaultRedisOptions(options *RedisOptions) {
	defaultOptions = options
}

// GetRedisClient creates a new Redis client using the default options
func GetRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     defaultOptions.Addr,
		Password: defaultOptions.Password,
		DB:       defaultOptions.DB,
	})
}

// RedisBackend implements core.BookBackend with Redis storage. It keeps the
// active-order set of long sweeps out of process and lets the researcher
// inspect a running simulation with standard Redis tooling.
type RedisBackend struct {
	client    *redis.Client
	ctx       context.Context
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisBackend creates a new instance of RedisBackend. The key prefix
// isolates concurrent simulation runs sharing one Redis.
func NewRedisBackend(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisBackend {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisBackend{
		client:    client,
		ctx:       context.Background(),
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

func (b *RedisBackend) orderKey(orderID string) string {
	return b.keyPrefix + ":order:" + orderID
}

func (b *RedisBackend) indexKey() string {
	return b.keyPrefix + ":orders"
}

func (b *RedisBackend) seqKey() string {
	return b.keyPrefix + ":seq"
}

// GetOrder retrieves an order by ID
func (b *RedisBackend) GetOrder(orderID string) *core.Order {
	data, err := b.client.Get(b.ctx, b.orderKey(orderID)).Result()
	if err != nil {
		if err != redis.Nil {
			b.logger.Error("failed to get order", zap.String("order_id", orderID), zap.Error(err))
		}
		return nil
	}

	var order core.Order
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		b.logger.Error("failed to unmarshal order", zap.String("order_id", orderID), zap.Error(err))
		return nil
	}

	return &order
}

// StoreOrder stores an order, rejecting duplicate identifiers
func (b *RedisBackend) StoreOrder(order *core.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	ok, err := b.client.SetNX(b.ctx, b.orderKey(order.ID()), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrOrderExists
	}

	seq, err := b.client.Incr(b.ctx, b.seqKey()).Result()
	if err != nil {
		return err
	}

	return b.client.ZAdd(b.ctx, b.indexKey(), redis.Z{
		Score:  float64(seq),
		Member: order.ID(),
	}).Err()
}

// UpdateOrder updates an existing order
func (b *RedisBackend) UpdateOrder(order *core.Order) error {
	exists, err := b.client.Exists(b.ctx, b.orderKey(order.ID())).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return core.ErrNonexistentOrder
	}

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	return b.client.Set(b.ctx, b.orderKey(order.ID()), data, 0).Err()
}

// DeleteOrder deletes an order
func (b *RedisBackend) DeleteOrder(orderID string) {
	if err := b.client.Del(b.ctx, b.orderKey(orderID)).Err(); err != nil {
		b.logger.Error("failed to delete order", zap.String("order_id", orderID), zap.Error(err))
	}

	if err := b.client.ZRem(b.ctx, b.indexKey(), orderID).Err(); err != nil {
		b.logger.Error("failed to remove order from index", zap.String("order_id", orderID), zap.Error(err))
	}
}

// Orders returns all stored orders in insertion order
func (b *RedisBackend) Orders() []*core.Order {
	ids, err := b.client.ZRange(b.ctx, b.indexKey(), 0, -1).Result()
	if err != nil {
		b.logger.Error("failed to list orders", zap.Error(err))
		return nil
	}

	orders := make([]*core.Order, 0, len(ids))
	for _, id := range ids {
		if order := b.GetOrder(id); order != nil {
			orders = append(orders, order)
		}
	}

	return orders
}

// Len returns the number of stored orders
func (b *RedisBackend) Len() int {
	n, err := b.client.ZCard(b.ctx, b.indexKey()).Result()
	if err != nil {
		b.logger.Error("failed to count orders", zap.Error(err))
		return 0
	}
	return int(n)
}

// Cleanup removes all keys of this run from Redis
func (b *RedisBackend) Cleanup() error {
	ids, err := b.client.ZRange(b.ctx, b.indexKey(), 0, -1).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+2)
	for _, id := range ids {
		keys = append(keys, b.orderKey(id))
	}
	keys = append(keys, b.indexKey(), b.seqKey())

	return b.client.Del(b.ctx, keys...).Err()
}

// Ensure RedisBackend implements BookBackend
var _ core.BookBackend = (*RedisBackend)(nil)
