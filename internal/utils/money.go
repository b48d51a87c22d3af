package utils

import "github.com/shopspring/decimal"

// Money amounts are float64 in the models; arithmetic goes through decimal
// and is rounded to two places so repeated credits do not drift.

// Amount limits, both well inside the decimal(15,2) money columns
const (
	MaxAmount  = 1_000_000_000     // Largest single deposit, withdrawal, bet or adjustment
	MaxBalance = 1_000_000_000_000 // Largest wallet balance
)

// Round2 rounds an amount to two decimal places
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// AddMoney returns a + b rounded to two places
func AddMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// SubMoney returns a - b rounded to two places
func SubMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// SumMoney adds all amounts exactly and rounds once
func SumMoney(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return sum.Round(2).InexactFloat64()
}

// HasCents reports whether v has more than two decimal places
func HasCents(v float64) bool {
	d := decimal.NewFromFloat(v)
	return !d.Equal(d.Round(2))
}
