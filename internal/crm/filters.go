package crm

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CustomerFilter struct {
	NameContains  *string
	EmailContains *string
	PhoneContains *string
	CreatedAtGte  *time.Time
	CreatedAtLte  *time.Time
	OrderBy       string
}

type ProductFilter struct {
	NameContains *string
	PriceGte     *decimal.Decimal
	PriceLte     *decimal.Decimal
	StockGte     *int
	StockLte     *int
	OrderBy      string
}

type OrderFilter struct {
	CustomerName *string
	ProductName  *string
	OrderDateGte *time.Time
	OrderDateLte *time.Time
	OrderBy      string
}

// Query is a translated filter: a WHERE/ORDER BY suffix plus its positional args.
type Query struct {
	Where   string
	OrderBy string
	Args    []any
}

// SQL appends the translated clauses to a base SELECT.
func (q Query) SQL(base string) string {
	var b strings.Builder
	b.WriteString(base)
	if q.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(q.Where)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(q.OrderBy)
	return b.String()
}

type predicates struct {
	conds []string
	args  []any
}

// add binds v to the next positional parameter; every "?" in cond is replaced by it.
func (p *predicates) add(cond string, v any) {
	p.args = append(p.args, v)
	p.conds = append(p.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(p.args))))
}

func (p *predicates) contains(column string, v *string) {
	if v == nil || *v == "" {
		return
	}
	p.add(column+` ILIKE '%' || ? || '%'`, escapeLike(*v))
}

func (p *predicates) query(order string) Query {
	return Query{Where: strings.Join(p.conds, " AND "), OrderBy: order, Args: p.args}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// orderings maps accepted ordering names (snake_case and camelCase) to columns.
type orderings map[string]string

func (o orderings) clause(field, fallback, tiebreak string) (string, error) {
	if field == "" {
		return fallback, nil
	}
	dir := "ASC"
	name := field
	if strings.HasPrefix(name, "-") {
		dir = "DESC"
		name = name[1:]
	}
	col, ok := o[name]
	if !ok {
		return "", newValidationError("orderBy", field, ErrInvalidOrdering)
	}
	return fmt.Sprintf("%s %s, %s", col, dir, tiebreak), nil
}

var (
	customerOrderings = orderings{
		"id": "c.id", "name": "c.name", "email": "c.email",
		"created_at": "c.created_at", "createdAt": "c.created_at",
	}
	productOrderings = orderings{
		"id": "p.id", "name": "p.name", "price": "p.price", "stock": "p.stock",
	}
	orderOrderings = orderings{
		"id": "o.id", "order_date": "o.order_date", "orderDate": "o.order_date",
	}
)

// Customers translates f against the customers table aliased as c.
func (f CustomerFilter) Customers() (Query, error) {
	var p predicates
	p.contains("c.name", f.NameContains)
	p.contains("c.email", f.EmailContains)
	p.contains("c.phone", f.PhoneContains)
	if f.CreatedAtGte != nil {
		p.add("c.created_at >= ?", *f.CreatedAtGte)
	}
	if f.CreatedAtLte != nil {
		p.add("c.created_at <= ?", *f.CreatedAtLte)
	}
	order, err := customerOrderings.clause(f.OrderBy, "c.created_at ASC, c.id ASC", "c.id ASC")
	if err != nil {
		return Query{}, err
	}
	return p.query(order), nil
}

// Products translates f against the products table aliased as p.
func (f ProductFilter) Products() (Query, error) {
	var p predicates
	p.contains("p.name", f.NameContains)
	if f.PriceGte != nil {
		p.add("p.price >= ?::numeric", f.PriceGte.String())
	}
	if f.PriceLte != nil {
		p.add("p.price <= ?::numeric", f.PriceLte.String())
	}
	if f.StockGte != nil {
		p.add("p.stock >= ?", *f.StockGte)
	}
	if f.StockLte != nil {
		p.add("p.stock <= ?", *f.StockLte)
	}
	order, err := productOrderings.clause(f.OrderBy, "p.name ASC, p.id ASC", "p.id ASC")
	if err != nil {
		return Query{}, err
	}
	return p.query(order), nil
}

// Orders translates f against the orders table aliased as o. Relation filters use
// subqueries so an order matching several products is still returned once.
func (f OrderFilter) Orders() (Query, error) {
	var p predicates
	if f.CustomerName != nil && *f.CustomerName != "" {
		p.add(`o.customer_id IN (SELECT id FROM customers WHERE name ILIKE '%' || ? || '%')`, escapeLike(*f.CustomerName))
	}
	if f.ProductName != nil && *f.ProductName != "" {
		p.add(`EXISTS (SELECT 1 FROM order_products op JOIN products pp ON pp.id = op.product_id
			WHERE op.order_id = o.id AND pp.name ILIKE '%' || ? || '%')`, escapeLike(*f.ProductName))
	}
	if f.OrderDateGte != nil {
		p.add("o.order_date >= ?", *f.OrderDateGte)
	}
	if f.OrderDateLte != nil {
		p.add("o.order_date <= ?", *f.OrderDateLte)
	}
	order, err := orderOrderings.clause(f.OrderBy, "o.order_date ASC, o.id ASC", "o.id ASC")
	if err != nil {
		return Query{}, err
	}
	return p.query(order), nil
}
