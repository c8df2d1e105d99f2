package crm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the entity store the service runs against. Lookups return ErrNotFound
// for missing rows.
type Store interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	BulkCreateCustomers(ctx context.Context, cs []Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context, q Query) ([]Customer, error)
	CustomerOrders(ctx context.Context, customerID string) ([]Order, error)

	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, q Query) ([]Product, error)
	ProductsByIDs(ctx context.Context, ids []string) ([]Product, error)

	CreateOrder(ctx context.Context, o *Order, productIDs []string) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, q Query) ([]Order, error)
	OrderProducts(ctx context.Context, orderID string) ([]Product, error)
	OrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error)
}

// Cache is an optional read-through cache of customers, which never change after
// creation. Products are always read from the store since prices move.
type Cache interface {
	GetCustomer(ctx context.Context, id string) (*Customer, bool)
	SetCustomer(ctx context.Context, c Customer)
}

// Service holds the query and mutation operations. Cache and Events may be nil.
type Service struct {
	Store  Store
	Cache  Cache
	Events Emitter
	Log    *zap.Logger
	Now    func() time.Time
}

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) emit(ctx context.Context, eventType, key string, payload any) {
	if s.Events != nil {
		s.Events.Emit(ctx, eventType, key, payload)
	}
}

// fail logs persistence failures and hides their cause from the caller.
func (s *Service) fail(op string, err error) error {
	s.log().Error("store failure", zap.String("op", op), zap.Error(err))
	return dbError(op, err)
}

// canonicalID returns id in the lowercase hyphenated form the store returns.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// ---- queries ----

// GetCustomer returns nil without error when id does not resolve.
func (s *Service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, nil
	}
	if s.Cache != nil {
		if c, ok := s.Cache.GetCustomer(ctx, id); ok {
			return c, nil
		}
	}
	c, err := s.Store.GetCustomer(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("get customer", err)
	}
	if s.Cache != nil {
		s.Cache.SetCustomer(ctx, *c)
	}
	return c, nil
}

func (s *Service) ListCustomers(ctx context.Context, f CustomerFilter) ([]Customer, error) {
	q, err := f.Customers()
	if err != nil {
		return nil, err
	}
	cs, err := s.Store.ListCustomers(ctx, q)
	if err != nil {
		return nil, s.fail("list customers", err)
	}
	return cs, nil
}

func (s *Service) CustomerOrders(ctx context.Context, customerID string) ([]Order, error) {
	orders, err := s.Store.CustomerOrders(ctx, customerID)
	if err != nil {
		return nil, s.fail("list customer orders", err)
	}
	return orders, nil
}

// GetProduct returns nil without error when id does not resolve.
func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, nil
	}
	p, err := s.Store.GetProduct(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("get product", err)
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	q, err := f.Products()
	if err != nil {
		return nil, err
	}
	ps, err := s.Store.ListProducts(ctx, q)
	if err != nil {
		return nil, s.fail("list products", err)
	}
	return ps, nil
}

// GetOrder returns nil without error when id does not resolve.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, nil
	}
	o, err := s.Store.GetOrder(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("get order", err)
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	q, err := f.Orders()
	if err != nil {
		return nil, err
	}
	orders, err := s.Store.ListOrders(ctx, q)
	if err != nil {
		return nil, s.fail("list orders", err)
	}
	return orders, nil
}

func (s *Service) OrderProducts(ctx context.Context, orderID string) ([]Product, error) {
	ps, err := s.Store.OrderProducts(ctx, orderID)
	if err != nil {
		return nil, s.fail("list order products", err)
	}
	return ps, nil
}

// OrderTotal is recomputed from current product prices on every call, so an old
// order's total follows later price changes.
func (s *Service) OrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	total, err := s.Store.OrderTotal(ctx, orderID)
	if err != nil {
		return decimal.Zero, s.fail("order total", err)
	}
	return total, nil
}

// ---- mutations ----

func normalizeCustomer(in CustomerInput) CustomerInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Phone != nil {
		p := strings.TrimSpace(*in.Phone)
		if p == "" {
			in.Phone = nil
		} else {
			in.Phone = &p
		}
	}
	return in
}

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	in = normalizeCustomer(in)
	if err := validateCustomer(in); err != nil {
		return nil, err
	}

	c := &Customer{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: s.now(),
	}
	if err := s.Store.CreateCustomer(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, newValidationError("email", in.Email, ErrDuplicateEmail)
		}
		return nil, s.fail("create customer", err)
	}

	if s.Cache != nil {
		s.Cache.SetCustomer(ctx, *c)
	}
	s.emit(ctx, EventCustomerCreated, c.ID, CustomerCreatedPayload{CustomerID: c.ID, Name: c.Name, Email: c.Email})
	return c, nil
}

// BulkCreateCustomers validates every record on its own. Rejected records are reported
// in the result and the rest are inserted in a single transaction. If that insert fails
// nothing is created and the failure is reported as one extra error.
func (s *Service) BulkCreateCustomers(ctx context.Context, ins []CustomerInput) BulkResult {
	res := BulkResult{Customers: []Customer{}, Errors: []BulkError{}}
	seen := make(map[string]bool, len(ins))
	valid := make([]Customer, 0, len(ins))

	for i, raw := range ins {
		in := normalizeCustomer(raw)
		if err := validateCustomer(in); err != nil {
			res.Errors = append(res.Errors, bulkError(i, err))
			continue
		}
		key := strings.ToLower(in.Email)
		if seen[key] {
			res.Errors = append(res.Errors, bulkError(i, newValidationError("email", in.Email, ErrDuplicateEmail)))
			continue
		}
		seen[key] = true
		valid = append(valid, Customer{
			ID:        uuid.NewString(),
			Name:      in.Name,
			Email:     in.Email,
			Phone:     in.Phone,
			CreatedAt: s.now(),
		})
	}

	if len(valid) > 0 {
		if err := s.Store.BulkCreateCustomers(ctx, valid); err != nil {
			res.OK = false
			res.CreatedCount = 0
			res.Customers = []Customer{}
			res.Errors = append(res.Errors, bulkError(-1, s.fail("bulk insert customers", err)))
			return res
		}
	}

	res.OK = true
	res.CreatedCount = len(valid)
	res.Customers = valid
	if len(valid) > 0 {
		ids := make([]string, 0, len(valid))
		for _, c := range valid {
			ids = append(ids, c.ID)
		}
		s.emit(ctx, EventCustomersBulkCreated, ids[0], CustomersBulkCreatedPayload{CustomerIDs: ids, Rejected: len(res.Errors)})
	}
	return res
}

func bulkError(index int, err error) BulkError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return BulkError{Index: index, Field: ve.Field, Message: ve.Message, Value: ve.Value}
	}
	return BulkError{Index: index, Message: err.Error()}
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, newValidationError("name", in.Name, ErrRequired)
	}
	if err := ValidatePrice(in.Price, "price"); err != nil {
		return nil, err
	}
	if err := ValidateNonNegativeInt(in.Stock, "stock"); err != nil {
		return nil, err
	}

	p := &Product{
		ID:    uuid.NewString(),
		Name:  in.Name,
		Price: in.Price.Round(2),
		Stock: in.Stock,
	}
	if err := s.Store.CreateProduct(ctx, p); err != nil {
		return nil, s.fail("create product", err)
	}

	s.emit(ctx, EventProductCreated, p.ID, ProductCreatedPayload{
		ProductID: p.ID, Name: p.Name, Price: p.Price.StringFixed(2), Stock: p.Stock,
	})
	return p, nil
}

// CreateOrder resolves the customer and every product before writing anything.
// Repeated product ids collapse into one association.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (*Order, error) {
	customer, err := s.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, &NotFoundError{Entity: "Customer", ID: in.CustomerID}
	}

	ids := make([]string, 0, len(in.ProductIDs))
	seen := make(map[string]bool, len(in.ProductIDs))
	for _, raw := range in.ProductIDs {
		id, ok := canonicalID(raw)
		if !ok {
			return nil, &NotFoundError{Entity: "Product", ID: raw}
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(ids) > 0 {
		found, err := s.Store.ProductsByIDs(ctx, ids)
		if err != nil {
			return nil, s.fail("resolve products", err)
		}
		byID := make(map[string]bool, len(found))
		for _, p := range found {
			byID[p.ID] = true
		}
		for _, id := range ids {
			if !byID[id] {
				return nil, &NotFoundError{Entity: "Product", ID: id}
			}
		}
	}
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}

	o := &Order{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		OrderDate:  s.now(),
	}
	if in.OrderDate != nil {
		o.OrderDate = in.OrderDate.UTC()
	}
	if err := s.Store.CreateOrder(ctx, o, ids); err != nil {
		return nil, s.fail("create order", err)
	}

	s.emit(ctx, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID: o.ID, CustomerID: o.CustomerID, ProductIDs: ids, OrderDate: o.OrderDate,
	})
	return o, nil
}
