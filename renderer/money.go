package renderer

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount in a currency, formatted with the currency conventions.
type Money struct {
	value decimal.Decimal // major unit
	cur   string
}

// M returns value in currency.
func M[T float64 | decimal.Decimal](value T, currency string) Money {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return Money{value: v, cur: currency}
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Money{cur: currency}
		}
		return Money{value: decimal.NewFromFloat(v), cur: currency}
	}
	return Money{cur: currency}
}

// currency returns the money's currency, never nil.
func (m Money) currency() *money.Currency {
	return money.New(0, m.cur).Currency()
}

// String returns the amount rounded to the currency fraction, with its symbol.
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// SignedString returns the amount with a sign, "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.value.IsZero() }

// Percent is a ratio displayed in percent. NaN is a missing value.
type Percent float64

// String returns p in percent, "n/a" when missing.
func (p Percent) String() string {
	if math.IsNaN(float64(p)) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", float64(p)*100)
}

// SignedString returns p in percent with a sign, "-" for zero.
func (p Percent) SignedString() string {
	if math.IsNaN(float64(p)) {
		return "n/a"
	}
	res := fmt.Sprintf("%+.2f%%", float64(p)*100)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}

// Number is a plain statistic. NaN is a missing value.
type Number float64

func (n Number) String() string {
	if math.IsNaN(float64(n)) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", float64(n))
}
