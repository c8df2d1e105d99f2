package graph

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal is the GraphQL Decimal scalar. Output always carries two fraction digits.
type Decimal struct {
	decimal.Decimal
}

func (Decimal) ImplementsGraphQLType(name string) bool { return name == "Decimal" }

func (d *Decimal) UnmarshalGraphQL(input interface{}) error {
	var (
		v   decimal.Decimal
		err error
	)
	switch in := input.(type) {
	case string:
		v, err = decimal.NewFromString(in)
	case int32:
		v = decimal.NewFromInt32(in)
	case int:
		v = decimal.NewFromInt(int64(in))
	case int64:
		v = decimal.NewFromInt(in)
	case float64:
		v = decimal.NewFromFloat(in)
	default:
		err = fmt.Errorf("wrong type for Decimal: %T", input)
	}
	if err != nil {
		return err
	}
	d.Decimal = v
	return nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.StringFixed(2))
}
