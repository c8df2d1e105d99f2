// Package seed loads a fixed set of sample customers, products and orders.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
)

var customers = []crm.CustomerInput{
	{Name: "Alice Wonderland", Email: "alice@example.com", Phone: strPtr("123-456-7890")},
	{Name: "Bob The Builder", Email: "bob@example.com", Phone: strPtr("987-654-3210")},
	{Name: "Charlie Chaplin", Email: "charlie@example.com", Phone: strPtr("555-123-4567")},
	{Name: "Diana Prince", Email: "diana@example.com", Phone: strPtr("111-222-3333")},
	{Name: "Eve Harrington", Email: "eve@example.com"},
}

var products = []crm.ProductInput{
	{Name: "Laptop Pro", Price: decimal.RequireFromString("1200.00"), Stock: 50},
	{Name: "Wireless Mouse", Price: decimal.RequireFromString("25.50"), Stock: 200},
	{Name: "Mechanical Keyboard", Price: decimal.RequireFromString("75.99"), Stock: 100},
	{Name: "USB-C Hub", Price: decimal.RequireFromString("30.00"), Stock: 150},
	{Name: "External SSD 1TB", Price: decimal.RequireFromString("99.99"), Stock: 75},
}

// orders pairs a customer index with product indexes.
var orders = []struct {
	customer int
	products []int
}{
	{0, []int{0, 1}},
	{1, []int{2, 3}},
	{2, []int{4}},
	{3, []int{1, 2, 3}},
}

type Summary struct {
	Customers int
	Products  int
	Orders    int
}

type Seeder struct {
	Svc *crm.Service
	Log *zap.Logger
}

// Run creates the sample data. Customers are matched by email and products by name,
// so running it twice reuses them; orders are always created.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	var sum Summary

	cs := make([]crm.Customer, 0, len(customers))
	for _, in := range customers {
		c, created, err := s.customer(ctx, in)
		if err != nil {
			return sum, fmt.Errorf("seed customer %s: %w", in.Email, err)
		}
		if created {
			sum.Customers++
			log.Info("customer created", zap.String("id", c.ID), zap.String("email", c.Email))
		} else {
			log.Info("customer exists", zap.String("id", c.ID), zap.String("email", c.Email))
		}
		cs = append(cs, *c)
	}

	ps := make([]crm.Product, 0, len(products))
	for _, in := range products {
		p, created, err := s.product(ctx, in)
		if err != nil {
			return sum, fmt.Errorf("seed product %s: %w", in.Name, err)
		}
		if created {
			sum.Products++
			log.Info("product created", zap.String("id", p.ID), zap.String("name", p.Name))
		}
		ps = append(ps, *p)
	}

	for _, o := range orders {
		ids := make([]string, 0, len(o.products))
		for _, i := range o.products {
			ids = append(ids, ps[i].ID)
		}
		order, err := s.Svc.CreateOrder(ctx, crm.OrderInput{CustomerID: cs[o.customer].ID, ProductIDs: ids})
		if err != nil {
			return sum, fmt.Errorf("seed order for %s: %w", cs[o.customer].Email, err)
		}
		sum.Orders++
		log.Info("order created", zap.String("id", order.ID), zap.String("customer", cs[o.customer].Name), zap.Int("products", len(ids)))
	}
	return sum, nil
}

func (s *Seeder) customer(ctx context.Context, in crm.CustomerInput) (*crm.Customer, bool, error) {
	c, err := s.Svc.CreateCustomer(ctx, in)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, crm.ErrDuplicateEmail) {
		return nil, false, err
	}
	existing, err := s.Svc.ListCustomers(ctx, crm.CustomerFilter{EmailContains: &in.Email})
	if err != nil {
		return nil, false, err
	}
	for i := range existing {
		if strings.EqualFold(existing[i].Email, in.Email) {
			return &existing[i], false, nil
		}
	}
	return nil, false, fmt.Errorf("customer %s reported as duplicate but not found", in.Email)
}

func (s *Seeder) product(ctx context.Context, in crm.ProductInput) (*crm.Product, bool, error) {
	existing, err := s.Svc.ListProducts(ctx, crm.ProductFilter{NameContains: &in.Name})
	if err != nil {
		return nil, false, err
	}
	for i := range existing {
		if existing[i].Name == in.Name {
			return &existing[i], false, nil
		}
	}
	p, err := s.Svc.CreateProduct(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func strPtr(s string) *string { return &s }
