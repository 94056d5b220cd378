// Package stats is the numeric kernel shared by every feature module:
// descriptive statistics, z-scores, regression, merchant identity, month
// bucketing and money rounding. All functions are total and side-effect-free.
package stats

import (
	"math"
	"sort"
)

// minStdDev is the floor below which a standard deviation is treated as zero
// variance. Guards z-score and CV computations against divide-by-near-zero.
const minStdDev = 0.01

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StandardDeviation returns the sample standard deviation (n-1 denominator).
// Fewer than two points yields 0.
func StandardDeviation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

// CoefficientOfVariation returns stddev/|mean|. The second return is false
// when the series has fewer than two points or a zero mean.
func CoefficientOfVariation(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	mean := Mean(xs)
	if mean == 0 {
		return 0, false
	}
	return StandardDeviation(xs) / math.Abs(mean), true
}

// ZScore returns how many standard deviations value sits from mean.
// A near-zero stddev (below 0.01) yields 0 rather than a blown-up ratio.
func ZScore(value, mean, stdDev float64) float64 {
	if stdDev < minStdDev {
		return 0
	}
	return (value - mean) / stdDev
}

// ZScoreUsable reports whether a z-score against the given history would be
// statistically meaningful: at least three points and non-degenerate spread.
func ZScoreUsable(history []float64) bool {
	return len(history) >= 3 && StandardDeviation(history) >= minStdDev
}

// Median returns the middle value (mean of the middle two for even lengths).
func Median(xs []float64) float64 {
	return Percentile(xs, 50)
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between closest ranks. Returns 0 for an empty slice. The input is not
// modified.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// TrailingAverage returns the mean of the last window values. The second
// return is false when the series is shorter than the window.
func TrailingAverage(xs []float64, window int) (float64, bool) {
	if window <= 0 || len(xs) < window {
		return 0, false
	}
	return Mean(xs[len(xs)-window:]), true
}

// LinearRegression fits y = slope*x + intercept over x = 0, 1, 2, ... and
// returns the slope and R². Fewer than two points yields (0, 0).
func LinearRegression(points []float64) (slope, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range points {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	meanY := sumY / n
	var ssRes, ssTot float64
	for i, y := range points {
		predicted := slope*float64(i) + intercept
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}
	if ssTot == 0 {
		return slope, 1
	}
	return slope, 1 - ssRes/ssTot
}

// SafeDivide returns num/den, or 0 when den is 0.
func SafeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// NormalCDF returns P(X <= x) for X ~ N(mean, stdDev). A degenerate stdDev
// collapses to a step function at the mean.
func NormalCDF(x, mean, stdDev float64) float64 {
	if stdDev < minStdDev {
		if x < mean {
			return 0
		}
		return 1
	}
	return 0.5 * (1 + math.Erf((x-mean)/(stdDev*math.Sqrt2)))
}
