package domain

import "github.com/shopspring/decimal"

func init() {
	// amounts are exchanged as bare JSON numbers, never as quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Money parses a literal amount such as "18.99". It panics on malformed
// input and is meant for constants and fixtures.
func Money(amount string) decimal.Decimal {
	return decimal.RequireFromString(amount)
}

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
