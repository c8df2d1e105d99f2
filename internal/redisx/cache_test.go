package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestEntityCacheDegradesToMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := &EntityCache{Redis: rdb}
	ctx := context.Background()

	c.SetCustomer(ctx, crm.Customer{ID: "c1", Name: "Alice"})
	got, ok := c.GetCustomer(ctx, "c1")
	assert.False(t, ok)
	assert.Nil(t, got)
}
