package stats

import "github.com/shopspring/decimal"

// RoundToCent rounds to two decimal places with decimal arithmetic, avoiding
// binary-float drift on amounts that should be exact dollars and cents.
func RoundToCent(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// RoundUpToNearest rounds x up to the next multiple of step (e.g. step=10 for
// budget suggestions rounded to the nearest $10). A non-positive step returns
// x unchanged.
func RoundUpToNearest(x, step float64) float64 {
	if step <= 0 {
		return x
	}
	d := decimal.NewFromFloat(x)
	s := decimal.NewFromFloat(step)
	return d.Div(s).Ceil().Mul(s).InexactFloat64()
}
