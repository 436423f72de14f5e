package money

import "math"

// ToMinorUnits converts a decimal currency amount to integer minor units
// (cents), rounding half away from zero. Payment gateways only accept
// integer minor-unit amounts.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts integer minor units back to a decimal amount.
func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
