// Package crmtest provides an in-memory crm.Store for tests.
package crmtest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	"github.com/shopspring/decimal"
)

// MemStore keeps entities in maps. It ignores the SQL of a crm.Query and returns
// rows in insertion order; filtering is covered by the translation tests.
type MemStore struct {
	mu        sync.Mutex
	customers []crm.Customer
	products  []crm.Product
	orders    []crm.Order
	links     map[string][]string

	// Fail, when set, is returned by every write.
	Fail error
}

var _ crm.Store = (*MemStore)(nil)

func New() *MemStore {
	return &MemStore{links: map[string][]string{}}
}

func (m *MemStore) CreateCustomer(_ context.Context, c *crm.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if m.emailTaken(c.Email) {
		return crm.ErrDuplicateEmail
	}
	m.customers = append(m.customers, *c)
	return nil
}

func (m *MemStore) BulkCreateCustomers(_ context.Context, cs []crm.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	for _, c := range cs {
		if m.emailTaken(c.Email) {
			return crm.ErrDuplicateEmail
		}
	}
	m.customers = append(m.customers, cs...)
	return nil
}

func (m *MemStore) emailTaken(email string) bool {
	for _, c := range m.customers {
		if strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func (m *MemStore) GetCustomer(_ context.Context, id string) (*crm.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, crm.ErrNotFound
}

func (m *MemStore) ListCustomers(context.Context, crm.Query) ([]crm.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]crm.Customer{}, m.customers...), nil
}

func (m *MemStore) CustomerOrders(_ context.Context, customerID string) ([]crm.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []crm.Order{}
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemStore) CreateProduct(_ context.Context, p *crm.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.products = append(m.products, *p)
	return nil
}

func (m *MemStore) GetProduct(_ context.Context, id string) (*crm.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.product(id); ok {
		return &p, nil
	}
	return nil, crm.ErrNotFound
}

func (m *MemStore) product(id string) (crm.Product, bool) {
	for _, p := range m.products {
		if p.ID == id {
			return p, true
		}
	}
	return crm.Product{}, false
}

func (m *MemStore) ListProducts(context.Context, crm.Query) ([]crm.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]crm.Product{}, m.products...), nil
}

func (m *MemStore) ProductsByIDs(_ context.Context, ids []string) ([]crm.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []crm.Product{}
	for _, id := range ids {
		if p, ok := m.product(id); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SetPrice changes a stored product's price.
func (m *MemStore) SetPrice(id string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products[i].Price = price
		}
	}
}

func (m *MemStore) CreateOrder(_ context.Context, o *crm.Order, productIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.orders = append(m.orders, *o)
	m.links[o.ID] = append([]string{}, productIDs...)
	return nil
}

func (m *MemStore) GetOrder(_ context.Context, id string) (*crm.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, crm.ErrNotFound
}

func (m *MemStore) ListOrders(context.Context, crm.Query) ([]crm.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]crm.Order{}, m.orders...), nil
}

func (m *MemStore) OrderProducts(_ context.Context, orderID string) ([]crm.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []crm.Product{}
	for _, id := range m.links[orderID] {
		if p, ok := m.product(id); ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) OrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	ps, err := m.OrderProducts(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range ps {
		total = total.Add(p.Price)
	}
	return total, nil
}

// Customers returns a snapshot of every stored customer.
func (m *MemStore) Customers() []crm.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]crm.Customer{}, m.customers...)
}
