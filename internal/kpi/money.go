package kpi

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Money is a currency value in minor units (hundredths). Aggregation over
// int64 is exact and order-insensitive, which is what makes the two
// engines agree without float compensation tricks.
type Money int64

// String formats the value with two decimal places, e.g. 12345 -> "123.45".
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits the value as a plain JSON number with two decimals.
// Both engines serialize through this method, so golden files and output
// writers see identical bytes.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON parses a plain JSON number back into minor units, so
// written reports round-trip.
func (m *Money) UnmarshalJSON(b []byte) error {
	d, _, err := apd.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("parse money %q: %w", b, err)
	}
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfEven
	var minor apd.Decimal
	if _, err := ctx.Mul(&minor, d, apd.New(100, 0)); err != nil {
		return fmt.Errorf("scale money %q: %w", b, err)
	}
	if _, err := ctx.RoundToIntegralValue(&minor, &minor); err != nil {
		return fmt.Errorf("round money %q: %w", b, err)
	}
	v, err := minor.Int64()
	if err != nil {
		return fmt.Errorf("money %q out of range: %w", b, err)
	}
	*m = Money(v)
	return nil
}

// Avg divides a minor-unit total by a count, rounding half-even to minor
// units. Zero count yields zero per the empty-group policy.
func Avg(total Money, count int64) Money {
	if count == 0 {
		return 0
	}
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfEven

	var q apd.Decimal
	if _, err := ctx.Quo(&q, apd.New(int64(total), 0), apd.New(count, 0)); err != nil {
		return 0
	}
	if _, err := ctx.RoundToIntegralValue(&q, &q); err != nil {
		return 0
	}
	v, err := q.Int64()
	if err != nil {
		return 0
	}
	return Money(v)
}
