// Package projection formats domain values for presentation layers.
package projection

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money renders an amount with two decimal places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Percent renders a percentage rounded to two decimal places.
func Percent(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// Timestamp renders t in UTC as RFC 3339, or "" for the zero time.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// OptionalTimestamp renders a nil pointer as nil.
func OptionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Timestamp(*t)
	return &s
}
