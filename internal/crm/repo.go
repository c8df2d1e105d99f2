package crm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const pgUniqueViolation = "23505"

// DBTX is the subset of *pgxpool.Pool the Repo runs on.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo is the PostgreSQL Store. Money is read back as text so NUMERIC never
// passes through a float.
type Repo struct{ DB DBTX }

var _ Store = (*Repo)(nil)

const (
	selectCustomers = `SELECT c.id, c.name, c.email, c.phone, c.created_at FROM customers c`
	selectProducts  = `SELECT p.id, p.name, p.price::text, p.stock FROM products p`
	selectOrders    = `SELECT o.id, o.customer_id, o.order_date FROM orders o`
)

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	return c, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Stock); err != nil {
		return p, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return p, err
	}
	p.Price = d
	return p, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.OrderDate)
	return o, err
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ---- customers ----

func (r *Repo) CreateCustomer(ctx context.Context, c *Customer) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO customers(id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		c.ID, c.Name, c.Email, c.Phone, c.CreatedAt,
	).Scan(&c.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// BulkCreateCustomers copies all rows in one transaction: either every row lands or none.
// COPY encodes binary, so ids go over the wire as uuid.UUID.
func (r *Repo) BulkCreateCustomers(ctx context.Context, cs []Customer) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"customers"},
		[]string{"id", "name", "email", "phone", "created_at"},
		pgx.CopyFromSlice(len(cs), func(i int) ([]any, error) {
			c := cs[i]
			id, err := uuid.Parse(c.ID)
			if err != nil {
				return nil, err
			}
			return []any{id, c.Name, c.Email, c.Phone, c.CreatedAt}, nil
		}),
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	c, err := scanCustomer(r.DB.QueryRow(ctx, selectCustomers+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *Repo) ListCustomers(ctx context.Context, q Query) ([]Customer, error) {
	rows, err := r.DB.Query(ctx, q.SQL(selectCustomers), q.Args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCustomer)
}

func (r *Repo) CustomerOrders(ctx context.Context, customerID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, selectOrders+` WHERE o.customer_id = $1 ORDER BY o.order_date, o.id`, customerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrder)
}

// ---- products ----

func (r *Repo) CreateProduct(ctx context.Context, p *Product) error {
	var price string
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, price, stock)
		VALUES ($1, $2, $3::numeric, $4)
		RETURNING price::text`,
		p.ID, p.Name, p.Price.String(), p.Stock,
	).Scan(&price)
	if err != nil {
		return err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	p.Price = d
	return nil
}

func (r *Repo) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, selectProducts+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *Repo) ListProducts(ctx context.Context, q Query) ([]Product, error) {
	rows, err := r.DB.Query(ctx, q.SQL(selectProducts), q.Args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProduct)
}

// ProductsByIDs returns the products that exist among ids; missing ids are simply absent.
func (r *Repo) ProductsByIDs(ctx context.Context, ids []string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, selectProducts+` WHERE p.id = ANY($1::text[]::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProduct)
}

// ---- orders ----

// CreateOrder stores the order row and its product associations atomically.
func (r *Repo) CreateOrder(ctx context.Context, o *Order, productIDs []string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `
		INSERT INTO orders(id, customer_id, order_date)
		VALUES ($1, $2, $3)`,
		o.ID, o.CustomerID, o.OrderDate,
	); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO order_products(order_id, product_id)
		SELECT $1, unnest($2::text[]::uuid[])`,
		o.ID, productIDs,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, selectOrders+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *Repo) ListOrders(ctx context.Context, q Query) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q.SQL(selectOrders), q.Args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrder)
}

func (r *Repo) OrderProducts(ctx context.Context, orderID string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, selectProducts+`
		JOIN order_products op ON op.product_id = p.id
		WHERE op.order_id = $1
		ORDER BY p.name, p.id`, orderID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProduct)
}

// OrderTotal sums the current price of every associated product.
func (r *Repo) OrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	var total string
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(p.price), 0)::text
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1`, orderID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}
