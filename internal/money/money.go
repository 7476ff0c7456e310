// Package money provides the exact decimal amount type used for every ledger
// and split value. Amounts are never represented as binary floating point.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits amounts are rounded to.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Money is an immutable decimal amount in a single currency.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero is 0.00.
var Zero = Money{}

// Cent is the smallest representable unit, 0.01.
var Cent = Money{d: decimal.New(1, -Places)}

// Parse reads a decimal string such as "12.50".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MustParse is Parse for constants and tests. It panics on malformed input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal wraps d.
func FromDecimal(d decimal.Decimal) Money { return Money{d: d} }

// FromCents builds an amount from an integer number of cents.
func FromCents(cents int64) Money { return Money{d: decimal.New(cents, -Places)} }

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money        { return Money{d: m.d.Abs()} }

// Mul scales the amount by ratio. The result is not rounded.
func (m Money) Mul(ratio decimal.Decimal) Money { return Money{d: m.d.Mul(ratio)} }

// MulInt scales the amount by an integer factor.
func (m Money) MulInt(n int64) Money { return Money{d: m.d.Mul(decimal.NewFromInt(n))} }

// Percent returns m × pct / 100, unrounded.
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money{d: m.d.Mul(pct).Div(hundred)}
}

// Div divides by n. The result is not rounded; callers round explicitly.
// It panics if n is zero.
func (m Money) Div(n int64) Money {
	if n == 0 {
		panic("money: division by zero")
	}
	return Money{d: m.d.Div(decimal.NewFromInt(n))}
}

// Round rounds half away from zero to two places, which is half-up for the
// non-negative amounts the ledger stores.
func (m Money) Round() Money { return Money{d: m.d.Round(Places)} }

// Truncate drops digits beyond two places, which rounds the non-negative
// amounts the ledger stores down.
func (m Money) Truncate() Money { return Money{d: m.d.Truncate(Places)} }

// IsRounded reports whether m has no digits beyond two places.
func (m Money) IsRounded() bool { return m.d.Equal(m.d.Round(Places)) }

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) IsPositive() bool         { return m.d.IsPositive() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }

// Max returns the larger of a and b.
func Max(a, b Money) Money {
	if a.d.GreaterThanOrEqual(b.d) {
		return a
	}
	return b
}

// Sum adds all amounts.
func Sum(ms ...Money) Money {
	total := Zero
	for _, m := range ms {
		total = total.Add(m)
	}
	return total
}

// String formats with exactly two places, e.g. "33.40". Amounts with more
// precision are rounded for display only; use Exact for lossless output.
func (m Money) String() string { return m.d.StringFixed(Places) }

// Exact returns the full-precision decimal string with at least two places.
func (m Money) Exact() string {
	if m.IsRounded() {
		return m.String()
	}
	return m.d.String()
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Exact() + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("money: amount must be a decimal string, got %s", data)
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount as TEXT.
func (m Money) Value() (driver.Value, error) {
	return m.Exact(), nil
}

// Scan reads an amount stored by Value.
func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("money: scan: %w", err)
	}
	m.d = d
	return nil
}
