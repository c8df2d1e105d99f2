package crm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	"github.com/ariefcatur/go-crm-graphql/internal/crm/crmtest"
)

type emitted struct {
	eventType string
	key       string
	payload   any
}

type mockEmitter struct {
	events []emitted
}

func (m *mockEmitter) Emit(_ context.Context, eventType, key string, payload any) {
	m.events = append(m.events, emitted{eventType, key, payload})
}

type mockCache struct {
	customers map[string]crm.Customer
}

func newMockCache() *mockCache {
	return &mockCache{customers: map[string]crm.Customer{}}
}

func (m *mockCache) GetCustomer(_ context.Context, id string) (*crm.Customer, bool) {
	c, ok := m.customers[id]
	return &c, ok
}
func (m *mockCache) SetCustomer(_ context.Context, c crm.Customer) { m.customers[c.ID] = c }

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func setup(t *testing.T) (*crm.Service, *crmtest.MemStore, *mockEmitter) {
	t.Helper()
	store := crmtest.New()
	events := &mockEmitter{}
	svc := &crm.Service{
		Store:  store,
		Events: events,
		Now:    func() time.Time { return fixedNow },
	}
	return svc, store, events
}

func strp(s string) *string { return &s }

func mustProduct(t *testing.T, svc *crm.Service, name, price string) *crm.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), crm.ProductInput{Name: name, Price: decimal.RequireFromString(price)})
	require.NoError(t, err)
	return p
}

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, store, events := setup(t)
		c, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com", Phone: strp("123-456-7890")})
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", c.Email)
		assert.Equal(t, fixedNow, c.CreatedAt)
		_, err = uuid.Parse(c.ID)
		assert.NoError(t, err)

		require.Len(t, store.Customers(), 1)
		require.Len(t, events.events, 1)
		assert.Equal(t, crm.EventCustomerCreated, events.events[0].eventType)
		assert.Equal(t, c.ID, events.events[0].key)
	})

	t.Run("Blank phone is stored as absent", func(t *testing.T) {
		svc, _, _ := setup(t)
		c, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Eve", Email: "eve@example.com", Phone: strp("  ")})
		require.NoError(t, err)
		assert.Nil(t, c.Phone)
	})

	t.Run("Invalid email persists nothing", func(t *testing.T) {
		svc, store, events := setup(t)
		_, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Bob", Email: "bob-at-example"})

		var ve *crm.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "email", ve.Field)
		assert.Equal(t, "bob-at-example", ve.Value)
		assert.ErrorIs(t, err, crm.ErrInvalidEmail)
		assert.Empty(t, store.Customers())
		assert.Empty(t, events.events)
	})

	t.Run("Invalid phone", func(t *testing.T) {
		svc, store, _ := setup(t)
		_, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Bob", Email: "bob@example.com", Phone: strp("call me")})
		assert.ErrorIs(t, err, crm.ErrInvalidPhone)
		assert.Empty(t, store.Customers())
	})

	t.Run("Duplicate email", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Bob", Email: "bob@example.com"})
		require.NoError(t, err)

		_, err = svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Bobby", Email: "bob@example.com"})
		var ve *crm.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.ErrorIs(t, err, crm.ErrDuplicateEmail)
	})

	t.Run("Store failure", func(t *testing.T) {
		svc, store, _ := setup(t)
		store.Fail = errors.New("connection reset")
		_, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Bob", Email: "bob@example.com"})

		var de *crm.DatabaseError
		require.True(t, errors.As(err, &de))
		assert.NotContains(t, err.Error(), "connection reset")
	})
}

func TestBulkCreateCustomers(t *testing.T) {
	ctx := context.Background()

	t.Run("Mixed batch", func(t *testing.T) {
		svc, store, events := setup(t)
		res := svc.BulkCreateCustomers(ctx, []crm.CustomerInput{
			{Name: "Alice", Email: "alice@example.com", Phone: strp("123-456-7890")},
			{Name: "Bad Email", Email: "nope"},
			{Name: "Bob", Email: "bob@example.com"},
			{Name: "Bad Phone", Email: "phone@example.com", Phone: strp("xyz")},
			{Name: "Alice Again", Email: "ALICE@example.com"},
		})

		assert.True(t, res.OK)
		assert.Equal(t, 2, res.CreatedCount)
		assert.Len(t, res.Customers, 2)
		require.Len(t, res.Errors, 3)
		assert.Equal(t, crm.BulkError{Index: 1, Field: "email", Message: crm.ErrInvalidEmail.Error(), Value: "nope"}, res.Errors[0])
		assert.Equal(t, 3, res.Errors[1].Index)
		assert.Equal(t, "phone", res.Errors[1].Field)
		assert.Equal(t, 4, res.Errors[2].Index)
		assert.Equal(t, crm.ErrDuplicateEmail.Error(), res.Errors[2].Message)

		assert.Len(t, store.Customers(), 2)
		require.Len(t, events.events, 1)
		assert.Equal(t, crm.EventCustomersBulkCreated, events.events[0].eventType)
	})

	t.Run("All invalid", func(t *testing.T) {
		svc, store, events := setup(t)
		res := svc.BulkCreateCustomers(ctx, []crm.CustomerInput{{Name: "X", Email: "x"}})
		assert.True(t, res.OK)
		assert.Zero(t, res.CreatedCount)
		assert.Len(t, res.Errors, 1)
		assert.Empty(t, store.Customers())
		assert.Empty(t, events.events)
	})

	t.Run("Insert failure overrides success", func(t *testing.T) {
		svc, store, events := setup(t)
		store.Fail = errors.New("disk full")
		res := svc.BulkCreateCustomers(ctx, []crm.CustomerInput{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "Bad", Email: "bad"},
		})

		assert.False(t, res.OK)
		assert.Zero(t, res.CreatedCount)
		assert.Empty(t, res.Customers)
		require.Len(t, res.Errors, 2)
		assert.Equal(t, -1, res.Errors[1].Index)
		assert.Contains(t, res.Errors[1].Message, "database error")
		assert.Empty(t, events.events)
	})
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	_, err := svc.CreateProduct(ctx, crm.ProductInput{Name: "Cable", Price: decimal.RequireFromString("-0.01")})
	assert.ErrorIs(t, err, crm.ErrNegativeValue)

	_, err = svc.CreateProduct(ctx, crm.ProductInput{Name: "Cable", Price: decimal.Zero, Stock: -1})
	var ve *crm.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "stock", ve.Field)

	_, err = svc.CreateProduct(ctx, crm.ProductInput{Name: "Cable", Price: decimal.RequireFromString("0.005")})
	assert.ErrorIs(t, err, crm.ErrPricePrecision)

	_, err = svc.CreateProduct(ctx, crm.ProductInput{Name: "Cable", Price: decimal.RequireFromString("123456789.00")})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "price", ve.Field)
	assert.ErrorIs(t, err, crm.ErrPriceRange)

	p, err := svc.CreateProduct(ctx, crm.ProductInput{Name: "Cable", Price: decimal.Zero, Stock: 0})
	require.NoError(t, err)
	assert.True(t, p.Price.IsZero())
	assert.Zero(t, p.Stock)
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success and live total", func(t *testing.T) {
		svc, store, events := setup(t)
		c, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
		require.NoError(t, err)
		a := mustProduct(t, svc, "Keyboard", "10.00")
		b := mustProduct(t, svc, "Mouse", "5.50")

		o, err := svc.CreateOrder(ctx, crm.OrderInput{CustomerID: c.ID, ProductIDs: []string{a.ID, b.ID, a.ID}})
		require.NoError(t, err)
		assert.Equal(t, c.ID, o.CustomerID)
		assert.Equal(t, fixedNow, o.OrderDate)

		ps, err := svc.OrderProducts(ctx, o.ID)
		require.NoError(t, err)
		assert.Len(t, ps, 2)

		total, err := svc.OrderTotal(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "15.50", total.StringFixed(2))

		store.SetPrice(b.ID, decimal.RequireFromString("7.25"))
		total, err = svc.OrderTotal(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "17.25", total.StringFixed(2))

		assert.Equal(t, crm.EventOrderCreated, events.events[len(events.events)-1].eventType)
	})

	t.Run("Explicit order date", func(t *testing.T) {
		svc, _, _ := setup(t)
		c, _ := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
		p := mustProduct(t, svc, "Hub", "30.00")
		when := time.Date(2024, 12, 24, 18, 0, 0, 0, time.FixedZone("WIB", 7*3600))

		o, err := svc.CreateOrder(ctx, crm.OrderInput{CustomerID: c.ID, ProductIDs: []string{p.ID}, OrderDate: &when})
		require.NoError(t, err)
		assert.True(t, when.Equal(o.OrderDate))
		assert.Equal(t, time.UTC, o.OrderDate.Location())
	})

	t.Run("Unknown customer", func(t *testing.T) {
		svc, _, _ := setup(t)
		p := mustProduct(t, svc, "Hub", "30.00")
		missing := uuid.NewString()

		_, err := svc.CreateOrder(ctx, crm.OrderInput{CustomerID: missing, ProductIDs: []string{p.ID}})
		var nf *crm.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "Customer", nf.Entity)
		assert.ErrorIs(t, err, crm.ErrNotFound)

		_, err = svc.CreateOrder(ctx, crm.OrderInput{CustomerID: "42", ProductIDs: []string{p.ID}})
		assert.ErrorIs(t, err, crm.ErrNotFound)
	})

	t.Run("Unknown product", func(t *testing.T) {
		svc, _, _ := setup(t)
		c, _ := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
		p := mustProduct(t, svc, "Hub", "30.00")
		missing := uuid.NewString()

		_, err := svc.CreateOrder(ctx, crm.OrderInput{CustomerID: c.ID, ProductIDs: []string{p.ID, missing}})
		var nf *crm.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "Product", nf.Entity)
		assert.Equal(t, missing, nf.ID)
	})

	t.Run("Empty selection", func(t *testing.T) {
		svc, _, events := setup(t)
		c, _ := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
		events.events = nil

		_, err := svc.CreateOrder(ctx, crm.OrderInput{CustomerID: c.ID})
		assert.ErrorIs(t, err, crm.ErrEmptySelection)
		assert.Empty(t, events.events)
	})
}

func TestQueriesReturnNilForMissing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		c, err := svc.GetCustomer(ctx, id)
		assert.NoError(t, err)
		assert.Nil(t, c)

		p, err := svc.GetProduct(ctx, id)
		assert.NoError(t, err)
		assert.Nil(t, p)

		o, err := svc.GetOrder(ctx, id)
		assert.NoError(t, err)
		assert.Nil(t, o)
	}
}

func TestCacheIsReadThrough(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)
	cache := newMockCache()
	svc.Cache = cache

	c, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Contains(t, cache.customers, c.ID)

	cached := cache.customers[c.ID]
	cached.Name = "from cache"
	cache.customers[c.ID] = cached

	got, err := svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "from cache", got.Name)
}

func TestProductPriceChangeVisibleWithCache(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t)
	svc.Cache = newMockCache()

	c, err := svc.CreateCustomer(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	keyboard := mustProduct(t, svc, "Keyboard", "10.00")
	mouse := mustProduct(t, svc, "Mouse", "5.50")
	o, err := svc.CreateOrder(ctx, crm.OrderInput{CustomerID: c.ID, ProductIDs: []string{keyboard.ID, mouse.ID}})
	require.NoError(t, err)

	_, err = svc.GetProduct(ctx, mouse.ID)
	require.NoError(t, err)
	store.SetPrice(mouse.ID, decimal.RequireFromString("7.25"))

	total, err := svc.OrderTotal(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "17.25", total.StringFixed(2))

	got, err := svc.GetProduct(ctx, mouse.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.25", got.Price.StringFixed(2))
}

func TestListRejectsUnknownOrdering(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.ListProducts(context.Background(), crm.ProductFilter{OrderBy: "colour"})
	assert.ErrorIs(t, err, crm.ErrInvalidOrdering)
}
