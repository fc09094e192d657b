package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in integer centavos. All cart and order math
// stays in this representation so repeated add/remove cycles cannot
// accumulate binary-float drift.
type Cents int64

// Zero is the additive identity.
const Zero Cents = 0

// FromDecimal converts a decimal currency amount (e.g. "11.99") to cents,
// rounding half-up at the second decimal place.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Shift(2).Round(0).IntPart())
}

// FromFloat converts a float currency amount to cents via decimal to avoid
// binary representation artifacts.
func FromFloat(f float64) Cents {
	return FromDecimal(decimal.NewFromFloat(f))
}

// Parse converts a decimal string ("149.90") to cents.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing money %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// Decimal returns the amount as a two-place decimal currency value.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount as a plain decimal ("111.99").
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Percent returns pct% of the amount, rounded half-up to whole cents.
func (c Cents) Percent(pct decimal.Decimal) Cents {
	return FromDecimal(c.Decimal().Mul(pct).Div(decimal.NewFromInt(100)))
}

// Mul multiplies the amount by an integer quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// ClampFloor returns the amount, floored at zero.
func (c Cents) ClampFloor() Cents {
	if c < 0 {
		return 0
	}
	return c
}

// WholeUnits returns the number of whole currency units, discarding cents.
func (c Cents) WholeUnits() int64 {
	if c < 0 {
		return 0
	}
	return int64(c) / 100
}
