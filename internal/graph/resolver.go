// Package graph exposes crm.Service over GraphQL using graph-gophers/graphql-go.
package graph

import (
	"context"
	_ "embed"
	"time"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	"github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var sdl string

const maxQueryDepth = 12

// NewSchema parses the SDL against a root resolver bound to svc.
func NewSchema(svc *crm.Service, opts ...graphql.SchemaOpt) (*graphql.Schema, error) {
	opts = append([]graphql.SchemaOpt{graphql.MaxDepth(maxQueryDepth)}, opts...)
	return graphql.ParseSchema(sdl, &Resolver{svc: svc}, opts...)
}

// Resolver is the root resolver for queries and mutations.
type Resolver struct {
	svc *crm.Service
}

func (r *Resolver) Hello() string { return "Hello, GraphQL!" }

// ---- inputs ----

type customerFilterInput struct {
	NameIcontains  *string
	EmailIcontains *string
	PhoneIcontains *string
	CreatedAtGte   *graphql.Time
	CreatedAtLte   *graphql.Time
	OrderBy        *string
}

type productFilterInput struct {
	NameIcontains *string
	PriceGte      *Decimal
	PriceLte      *Decimal
	StockGte      *int32
	StockLte      *int32
	OrderBy       *string
}

type orderFilterInput struct {
	CustomerName *string
	ProductName  *string
	OrderDateGte *graphql.Time
	OrderDateLte *graphql.Time
	OrderBy      *string
}

type customerInput struct {
	Name  string
	Email string
	Phone *string
}

func timePtr(t *graphql.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func intPtr(i *int32) *int {
	if i == nil {
		return nil
	}
	v := int(*i)
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (f *customerFilterInput) toFilter() crm.CustomerFilter {
	if f == nil {
		return crm.CustomerFilter{}
	}
	return crm.CustomerFilter{
		NameContains:  f.NameIcontains,
		EmailContains: f.EmailIcontains,
		PhoneContains: f.PhoneIcontains,
		CreatedAtGte:  timePtr(f.CreatedAtGte),
		CreatedAtLte:  timePtr(f.CreatedAtLte),
		OrderBy:       deref(f.OrderBy),
	}
}

func (f *productFilterInput) toFilter() crm.ProductFilter {
	if f == nil {
		return crm.ProductFilter{}
	}
	out := crm.ProductFilter{
		NameContains: f.NameIcontains,
		StockGte:     intPtr(f.StockGte),
		StockLte:     intPtr(f.StockLte),
		OrderBy:      deref(f.OrderBy),
	}
	if f.PriceGte != nil {
		out.PriceGte = &f.PriceGte.Decimal
	}
	if f.PriceLte != nil {
		out.PriceLte = &f.PriceLte.Decimal
	}
	return out
}

func (f *orderFilterInput) toFilter() crm.OrderFilter {
	if f == nil {
		return crm.OrderFilter{}
	}
	return crm.OrderFilter{
		CustomerName: f.CustomerName,
		ProductName:  f.ProductName,
		OrderDateGte: timePtr(f.OrderDateGte),
		OrderDateLte: timePtr(f.OrderDateLte),
		OrderBy:      deref(f.OrderBy),
	}
}

// ---- queries ----

func (r *Resolver) AllCustomers(ctx context.Context, args struct{ Filter *customerFilterInput }) ([]*customerResolver, error) {
	cs, err := r.svc.ListCustomers(ctx, args.Filter.toFilter())
	if err != nil {
		return nil, resolverError(err)
	}
	return toCustomers(r.svc, cs), nil
}

func (r *Resolver) CustomerByID(ctx context.Context, args struct{ ID graphql.ID }) (*customerResolver, error) {
	c, err := r.svc.GetCustomer(ctx, string(args.ID))
	if err != nil || c == nil {
		return nil, resolverError(err)
	}
	return toCustomer(r.svc, *c), nil
}

func (r *Resolver) AllProducts(ctx context.Context, args struct{ Filter *productFilterInput }) ([]*productResolver, error) {
	ps, err := r.svc.ListProducts(ctx, args.Filter.toFilter())
	if err != nil {
		return nil, resolverError(err)
	}
	return toProducts(ps), nil
}

func (r *Resolver) ProductByID(ctx context.Context, args struct{ ID graphql.ID }) (*productResolver, error) {
	p, err := r.svc.GetProduct(ctx, string(args.ID))
	if err != nil || p == nil {
		return nil, resolverError(err)
	}
	return toProduct(*p), nil
}

func (r *Resolver) AllOrders(ctx context.Context, args struct{ Filter *orderFilterInput }) ([]*orderResolver, error) {
	orders, err := r.svc.ListOrders(ctx, args.Filter.toFilter())
	if err != nil {
		return nil, resolverError(err)
	}
	return toOrders(r.svc, orders), nil
}

func (r *Resolver) OrderByID(ctx context.Context, args struct{ ID graphql.ID }) (*orderResolver, error) {
	o, err := r.svc.GetOrder(ctx, string(args.ID))
	if err != nil || o == nil {
		return nil, resolverError(err)
	}
	return toOrder(r.svc, *o), nil
}

// ---- mutations ----

func (r *Resolver) CreateCustomer(ctx context.Context, args struct {
	Name  string
	Email string
	Phone *string
}) (*createCustomerPayload, error) {
	c, err := r.svc.CreateCustomer(ctx, crm.CustomerInput{Name: args.Name, Email: args.Email, Phone: args.Phone})
	if err != nil {
		return nil, resolverError(err)
	}
	return &createCustomerPayload{customer: toCustomer(r.svc, *c)}, nil
}

func (r *Resolver) BulkCreateCustomers(ctx context.Context, args struct{ Customers []customerInput }) *bulkCreateCustomersPayload {
	ins := make([]crm.CustomerInput, 0, len(args.Customers))
	for _, c := range args.Customers {
		ins = append(ins, crm.CustomerInput{Name: c.Name, Email: c.Email, Phone: c.Phone})
	}
	return &bulkCreateCustomersPayload{svc: r.svc, res: r.svc.BulkCreateCustomers(ctx, ins)}
}

func (r *Resolver) CreateProduct(ctx context.Context, args struct {
	Name  string
	Price Decimal
	Stock *int32
}) (*createProductPayload, error) {
	in := crm.ProductInput{Name: args.Name, Price: args.Price.Decimal}
	if args.Stock != nil {
		in.Stock = int(*args.Stock)
	}
	p, err := r.svc.CreateProduct(ctx, in)
	if err != nil {
		return nil, resolverError(err)
	}
	return &createProductPayload{product: toProduct(*p)}, nil
}

func (r *Resolver) CreateOrder(ctx context.Context, args struct {
	CustomerID graphql.ID
	ProductIDs []graphql.ID
	OrderDate  *graphql.Time
}) (*createOrderPayload, error) {
	in := crm.OrderInput{
		CustomerID: string(args.CustomerID),
		ProductIDs: make([]string, 0, len(args.ProductIDs)),
		OrderDate:  timePtr(args.OrderDate),
	}
	for _, id := range args.ProductIDs {
		in.ProductIDs = append(in.ProductIDs, string(id))
	}
	o, err := r.svc.CreateOrder(ctx, in)
	if err != nil {
		return nil, resolverError(err)
	}
	return &createOrderPayload{order: toOrder(r.svc, *o)}, nil
}
