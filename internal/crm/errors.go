package crm

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidPhone    = errors.New("invalid phone number format")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrInvalidOrdering = errors.New("unsupported ordering field")
	ErrRequired        = errors.New("value is required")
	ErrPricePrecision  = errors.New("price allows at most 2 decimal places")
	ErrPriceRange      = errors.New("price exceeds 99999999.99")

	// ErrEmptySelection is returned when an order resolves to no products.
	ErrEmptySelection = errors.New("no valid products provided for the order")

	// ErrNotFound is returned by a Store when a row does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError ties a rejected input value to the field it came from.
type ValidationError struct {
	Field   string
	Message string
	Value   string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func newValidationError(field, value string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error(), Value: value, Err: err}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s does not exist", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DatabaseError marks a persistence failure. Its message is safe to show to clients,
// the cause is kept for logging.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s", e.Op)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func dbError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DatabaseError{Op: op, Err: err}
}
