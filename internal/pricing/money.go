package pricing

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places kept for currency amounts.
const Scale = 2

// Money is a currency amount with two decimal places.
// The zero value is 0.00.
type Money struct {
	value decimal.Decimal
}

// Zero is 0.00.
var Zero = Money{}

// NewMoney creates a Money from a decimal, rounding half-up to two places.
func NewMoney(d decimal.Decimal) Money {
	return Money{value: d.Round(Scale)}
}

// ParseMoney parses a decimal literal such as "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("cannot parse %q as money: %w", s, err)
	}
	return NewMoney(d), nil
}

// MustMoney is like ParseMoney but panics on error. Intended for literals in seeds and tests.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.value
}

// Mul returns m × qty.
func (m Money) Mul(qty int) Money {
	return NewMoney(m.value.Mul(decimal.NewFromInt(int64(qty))))
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return NewMoney(m.value.Add(other.value))
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m.value.IsNegative()
}

// Equal reports whether both amounts are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.value.Equal(other.value)
}

// String formats the amount with exactly two decimals.
func (m Money) String() string {
	return m.value.StringFixed(Scale)
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.value.StringFixed(Scale), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return err
	}
	m.value = d.Round(Scale)
	return nil
}

// MarshalJSON writes the amount as a JSON number with two decimals, e.g. 41.00.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.value = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.value = d.Round(Scale)
	return nil
}
