package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	"github.com/ariefcatur/go-crm-graphql/internal/crm/crmtest"
	"github.com/ariefcatur/go-crm-graphql/internal/seed"
)

func TestSeederRun(t *testing.T) {
	ctx := context.Background()
	store := crmtest.New()
	svc := &crm.Service{Store: store}
	s := &seed.Seeder{Svc: svc}

	sum, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Customers: 5, Products: 5, Orders: 4}, sum)

	orders, err := svc.ListOrders(ctx, crm.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 4)

	// Laptop Pro + Wireless Mouse
	total, err := svc.OrderTotal(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "1225.50", total.StringFixed(2))
}

func TestSeederRerunReusesEntities(t *testing.T) {
	ctx := context.Background()
	store := crmtest.New()
	s := &seed.Seeder{Svc: &crm.Service{Store: store}}

	_, err := s.Run(ctx)
	require.NoError(t, err)
	sum, err := s.Run(ctx)
	require.NoError(t, err)

	assert.Zero(t, sum.Customers)
	assert.Zero(t, sum.Products)
	assert.Equal(t, 4, sum.Orders)
	assert.Len(t, store.Customers(), 5)
}
