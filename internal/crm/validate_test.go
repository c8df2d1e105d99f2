package crm

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	for _, email := range []string{"alice@example.com", "bob.builder+crm@mail.example.org"} {
		assert.NoError(t, ValidateEmail(email), email)
	}

	for _, email := range []string{"", "plainaddress", "@example.com", "alice@", "alice@@example.com"} {
		err := ValidateEmail(email)
		require.Error(t, err, email)

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "email", ve.Field)
		assert.Equal(t, email, ve.Value)
	}
	assert.ErrorIs(t, ValidateEmail("not-an-email"), ErrInvalidEmail)
}

func TestValidatePhone(t *testing.T) {
	valid := []string{
		"",
		"123-456-7890",
		"+1 555 123 4567",
		"+1234567890",
		"(021) 555.0134",
		"+234-801-234-5678",
	}
	for _, phone := range valid {
		assert.NoError(t, ValidatePhone(phone), phone)
	}

	invalid := []string{
		"abc",
		"12345",
		"123--456-7890",
		"+12 34 56 78 90 12 34 56",
		"phone: 123-456-7890",
		"123\t456\n7890",
		"123\n456-7890",
	}
	for _, phone := range invalid {
		assert.ErrorIs(t, ValidatePhone(phone), ErrInvalidPhone, phone)
	}
}

func TestValidateNonNegative(t *testing.T) {
	assert.NoError(t, ValidateNonNegative(decimal.Zero, "price"))
	assert.NoError(t, ValidateNonNegativeInt(0, "stock"))

	err := ValidateNonNegative(decimal.RequireFromString("-0.01"), "price")
	assert.ErrorIs(t, err, ErrNegativeValue)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "price", ve.Field)
	assert.Equal(t, "-0.01", ve.Value)

	assert.ErrorIs(t, ValidateNonNegativeInt(-1, "stock"), ErrNegativeValue)
}

func TestValidatePrice(t *testing.T) {
	for _, s := range []string{"0", "0.01", "10.5", "10.500", "99999999.99"} {
		assert.NoError(t, ValidatePrice(decimal.RequireFromString(s), "price"), s)
	}

	assert.ErrorIs(t, ValidatePrice(decimal.RequireFromString("-1"), "price"), ErrNegativeValue)
	assert.ErrorIs(t, ValidatePrice(decimal.RequireFromString("0.005"), "price"), ErrPricePrecision)
	assert.ErrorIs(t, ValidatePrice(decimal.RequireFromString("100000000"), "price"), ErrPriceRange)

	var ve *ValidationError
	require.True(t, errors.As(ValidatePrice(decimal.RequireFromString("1.999"), "price"), &ve))
	assert.Equal(t, "price", ve.Field)
	assert.Equal(t, "1.999", ve.Value)
}
