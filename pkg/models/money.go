package models

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Money is a monetary amount in the home currency (BRL), kept as an exact decimal.
// It is stored in DynamoDB as a number and serialized to JSON as a string.
type Money struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{decimal.Zero}

// ParseMoney parses a decimal amount. A comma is accepted as the decimal separator.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{d}, nil
}

// MustMoney is like ParseMoney but panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromFloat builds an amount rounded to cents.
func NewMoneyFromFloat(f float64) Money {
	return Money{decimal.NewFromFloat(f).Round(2)}
}

func (m Money) Plus(o Money) Money  { return Money{m.Add(o.Decimal)} }
func (m Money) Minus(o Money) Money { return Money{m.Sub(o.Decimal)} }

// EqualTo reports whether both amounts have the same value, regardless of scale.
func (m Money) EqualTo(o Money) bool { return m.Equal(o.Decimal) }

// Below reports whether m < o.
func (m Money) Below(o Money) bool { return m.LessThan(o.Decimal) }

// String renders the amount with two decimal places.
func (m Money) String() string { return m.StringFixed(2) }

// MarshalDynamoDBAttributeValue stores the amount as a DynamoDB number so that
// update expressions can do arithmetic on it.
func (m Money) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: m.StringFixed(2)}, nil
}

// UnmarshalDynamoDBAttributeValue reads a DynamoDB number (or a numeric string).
func (m *Money) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	case *types.AttributeValueMemberNULL:
		m.Decimal = decimal.Zero
		return nil
	default:
		return fmt.Errorf("unsupported attribute value %T for money", av)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid money attribute %q: %w", raw, err)
	}
	m.Decimal = d
	return nil
}

// MarshalJSON renders the amount as a string with two decimal places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
