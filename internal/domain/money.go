package domain

import "math"

// Round2 rounds a monetary amount to 2 decimals, half up.
// All currency-facing values in a quote pass through this before storage
// or comparison, so totals stay consistent regardless of where they were
// computed.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
