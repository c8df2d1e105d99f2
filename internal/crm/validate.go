package crm

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Accepts "+1 555 123 4567", "123-456-7890", "(021) 555.0134", "+2348012345678".
var phonePattern = regexp.MustCompile(`^(\+\d{1,3}[ .-]?)?(\(\d{1,4}\)|\d{1,4})([ .-]?\d{2,4}){1,4}$`)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// maxPrice is the largest value NUMERIC(10,2) holds.
var maxPrice = decimal.RequireFromString("99999999.99")

func ValidateEmail(value string) error {
	if strings.TrimSpace(value) == "" {
		return newValidationError("email", value, ErrRequired)
	}
	if err := validate.Var(value, "email"); err != nil {
		return newValidationError("email", value, ErrInvalidEmail)
	}
	return nil
}

// ValidatePhone treats an empty value as "no phone".
func ValidatePhone(value string) error {
	if value == "" {
		return nil
	}
	if !phonePattern.MatchString(value) {
		return newValidationError("phone", value, ErrInvalidPhone)
	}
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return newValidationError("phone", value, ErrInvalidPhone)
	}
	return nil
}

func ValidateNonNegative(value decimal.Decimal, field string) error {
	if value.IsNegative() {
		return newValidationError(field, value.String(), ErrNegativeValue)
	}
	return nil
}

// ValidatePrice checks a money amount against the products.price column: non-negative,
// at most two fraction digits, at most maxPrice.
func ValidatePrice(value decimal.Decimal, field string) error {
	if err := ValidateNonNegative(value, field); err != nil {
		return err
	}
	if !value.Equal(value.Truncate(2)) {
		return newValidationError(field, value.String(), ErrPricePrecision)
	}
	if value.GreaterThan(maxPrice) {
		return newValidationError(field, value.String(), ErrPriceRange)
	}
	return nil
}

func ValidateNonNegativeInt(value int, field string) error {
	return ValidateNonNegative(decimal.NewFromInt(int64(value)), field)
}

func validateCustomer(in CustomerInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return newValidationError("name", in.Name, ErrRequired)
	}
	if err := ValidateEmail(in.Email); err != nil {
		return err
	}
	if in.Phone != nil {
		return ValidatePhone(*in.Phone)
	}
	return nil
}
