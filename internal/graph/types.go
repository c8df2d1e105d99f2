package graph

import (
	"context"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	"github.com/graph-gophers/graphql-go"
)

// ---- Customer ----

type customerResolver struct {
	svc *crm.Service
	c   crm.Customer
}

func toCustomer(svc *crm.Service, c crm.Customer) *customerResolver {
	return &customerResolver{svc: svc, c: c}
}

func toCustomers(svc *crm.Service, cs []crm.Customer) []*customerResolver {
	out := make([]*customerResolver, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCustomer(svc, c))
	}
	return out
}

func (r *customerResolver) ID() graphql.ID          { return graphql.ID(r.c.ID) }
func (r *customerResolver) Name() string            { return r.c.Name }
func (r *customerResolver) Email() string           { return r.c.Email }
func (r *customerResolver) Phone() *string          { return r.c.Phone }
func (r *customerResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.c.CreatedAt} }

func (r *customerResolver) Orders(ctx context.Context) ([]*orderResolver, error) {
	orders, err := r.svc.CustomerOrders(ctx, r.c.ID)
	if err != nil {
		return nil, resolverError(err)
	}
	return toOrders(r.svc, orders), nil
}

// ---- Product ----

type productResolver struct {
	p crm.Product
}

func toProduct(p crm.Product) *productResolver { return &productResolver{p: p} }

func toProducts(ps []crm.Product) []*productResolver {
	out := make([]*productResolver, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProduct(p))
	}
	return out
}

func (r *productResolver) ID() graphql.ID { return graphql.ID(r.p.ID) }
func (r *productResolver) Name() string   { return r.p.Name }
func (r *productResolver) Price() Decimal { return Decimal{r.p.Price} }
func (r *productResolver) Stock() int32   { return int32(r.p.Stock) }

// ---- Order ----

type orderResolver struct {
	svc *crm.Service
	o   crm.Order
}

func toOrder(svc *crm.Service, o crm.Order) *orderResolver {
	return &orderResolver{svc: svc, o: o}
}

func toOrders(svc *crm.Service, os []crm.Order) []*orderResolver {
	out := make([]*orderResolver, 0, len(os))
	for _, o := range os {
		out = append(out, toOrder(svc, o))
	}
	return out
}

func (r *orderResolver) ID() graphql.ID          { return graphql.ID(r.o.ID) }
func (r *orderResolver) OrderDate() graphql.Time { return graphql.Time{Time: r.o.OrderDate} }

func (r *orderResolver) Customer(ctx context.Context) (*customerResolver, error) {
	c, err := r.svc.GetCustomer(ctx, r.o.CustomerID)
	if err != nil || c == nil {
		return nil, resolverError(err)
	}
	return toCustomer(r.svc, *c), nil
}

func (r *orderResolver) Products(ctx context.Context) ([]*productResolver, error) {
	ps, err := r.svc.OrderProducts(ctx, r.o.ID)
	if err != nil {
		return nil, resolverError(err)
	}
	return toProducts(ps), nil
}

func (r *orderResolver) TotalAmount(ctx context.Context) (Decimal, error) {
	total, err := r.svc.OrderTotal(ctx, r.o.ID)
	if err != nil {
		return Decimal{}, resolverError(err)
	}
	return Decimal{total}, nil
}

// ---- mutation payloads ----

type createCustomerPayload struct {
	customer *customerResolver
}

func (p *createCustomerPayload) Customer() *customerResolver { return p.customer }
func (p *createCustomerPayload) Message() string             { return "Customer created successfully" }

type bulkCreateError struct {
	e crm.BulkError
}

func (r *bulkCreateError) Index() int32 { return int32(r.e.Index) }
func (r *bulkCreateError) Message() string {
	return r.e.Message
}
func (r *bulkCreateError) Field() *string { return optional(r.e.Field) }
func (r *bulkCreateError) Value() *string { return optional(r.e.Value) }

type bulkCreateCustomersPayload struct {
	svc *crm.Service
	res crm.BulkResult
}

func (p *bulkCreateCustomersPayload) OK() bool            { return p.res.OK }
func (p *bulkCreateCustomersPayload) CreatedCount() int32 { return int32(p.res.CreatedCount) }
func (p *bulkCreateCustomersPayload) Customers() []*customerResolver {
	return toCustomers(p.svc, p.res.Customers)
}

func (p *bulkCreateCustomersPayload) Errors() []*bulkCreateError {
	out := make([]*bulkCreateError, 0, len(p.res.Errors))
	for _, e := range p.res.Errors {
		out = append(out, &bulkCreateError{e: e})
	}
	return out
}

type createProductPayload struct {
	product *productResolver
}

func (p *createProductPayload) Product() *productResolver { return p.product }

type createOrderPayload struct {
	order *orderResolver
}

func (p *createOrderPayload) Order() *orderResolver { return p.order }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
