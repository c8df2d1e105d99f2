package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// Order carries no total: the amount is summed from the live product prices on read.
type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	OrderDate  time.Time `json:"order_date"`
}

type CustomerInput struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type ProductInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type OrderInput struct {
	CustomerID string     `json:"customer_id"`
	ProductIDs []string   `json:"product_ids"`
	OrderDate  *time.Time `json:"order_date,omitempty"`
}

// BulkError describes one rejected record of a bulk customer import.
// Index is -1 for errors not tied to a single record.
type BulkError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

type BulkResult struct {
	OK           bool        `json:"ok"`
	CreatedCount int         `json:"created_count"`
	Customers    []Customer  `json:"customers"`
	Errors       []BulkError `json:"errors"`
}
