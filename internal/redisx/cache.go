package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EntityCache implements crm.Cache. Redis errors degrade to cache misses.
type EntityCache struct {
	Redis redis.Cmdable
	Log   *zap.Logger
}

var _ crm.Cache = (*EntityCache)(nil)

func (c *EntityCache) GetCustomer(ctx context.Context, id string) (*crm.Customer, bool) {
	var out crm.Customer
	if !c.get(ctx, fmt.Sprintf(KeyCustomer, id), &out) {
		return nil, false
	}
	return &out, true
}

func (c *EntityCache) SetCustomer(ctx context.Context, v crm.Customer) {
	c.set(ctx, fmt.Sprintf(KeyCustomer, v.ID), v)
}

func (c *EntityCache) get(ctx context.Context, key string, out any) bool {
	b, err := c.Redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn("cache get", key, err)
		}
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		c.warn("cache decode", key, err)
		return false
	}
	return true
}

func (c *EntityCache) set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.warn("cache encode", key, err)
		return
	}
	if err := c.Redis.Set(ctx, key, b, TTLEntityCache).Err(); err != nil {
		c.warn("cache set", key, err)
	}
}

func (c *EntityCache) warn(msg, key string, err error) {
	if c.Log != nil {
		c.Log.Warn(msg, zap.String("key", key), zap.Error(err))
	}
}
