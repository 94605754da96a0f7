package orders

import (
	"context"
	"errors"
	"strconv"

	"github.com/ariefcatur/restaurant-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// StatusCache keeps the public tracking lookups off Postgres.
type StatusCache interface {
	Get(ctx context.Context, orderID int64) (StatusID, bool, error)
	Set(ctx context.Context, orderID int64, s StatusID) error
	Invalidate(ctx context.Context, orderID int64) error
}

type RedisStatusCache struct {
	Client *redis.Client
}

func (c *RedisStatusCache) Get(ctx context.Context, orderID int64) (StatusID, bool, error) {
	v, err := c.Client.Get(ctx, redisx.OrderStatusKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(v, 10, 16)
	if err != nil || !StatusID(n).Valid() {
		// unreadable entry, treat as a miss
		return 0, false, nil
	}
	return StatusID(n), true, nil
}

func (c *RedisStatusCache) Set(ctx context.Context, orderID int64, s StatusID) error {
	return c.Client.Set(ctx, redisx.OrderStatusKey(orderID), int(s), redisx.TTLStatusCache).Err()
}

func (c *RedisStatusCache) Invalidate(ctx context.Context, orderID int64) error {
	return c.Client.Del(ctx, redisx.OrderStatusKey(orderID)).Err()
}
