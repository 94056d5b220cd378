// Package analyze implements the feature modules of the analytics engine:
// trend classification, budget variance, recurring-charge detection, expense
// forecasting, cash-flow stability, anomaly detection, runway, savings goals,
// debt strategy, adherence, budget optimization, investment simulation and
// emergency-fund planning. Every function is a pure computation over
// caller-owned slices; results are freshly allocated on each call.
package analyze

import (
	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// TrendDirection classifies the shape of a monthly series.
type TrendDirection string

const (
	TrendIncreasing   TrendDirection = "increasing"
	TrendDecreasing   TrendDirection = "decreasing"
	TrendStable       TrendDirection = "stable"
	TrendVolatile     TrendDirection = "volatile"
	TrendInsufficient TrendDirection = "insufficient"
)

const (
	// volatileCV is the coefficient-of-variation cutoff above which a series
	// is classified volatile regardless of its direction.
	volatileCV = 0.3
	// trendChangePercent is the half-over-half change beyond which a series
	// counts as increasing or decreasing.
	trendChangePercent = 10.0
)

// MonthlyPoint is one month of an ordered series handed to AnalyzeTrend.
type MonthlyPoint struct {
	Month model.MonthKey
	Value float64
}

// TrendResult is the classification of a monthly series.
type TrendResult struct {
	Direction     TrendDirection
	Confidence    model.Confidence
	PercentChange float64
	CV            float64
	Slope         float64
	RSquared      float64
	Rolling3      *float64
	Rolling6      *float64
}

// AnalyzeTrend classifies an ordered monthly series. Fewer than three points
// yields direction and confidence "insufficient". High relative variance
// (CV > 0.3) overrides the directional classification with "volatile".
func AnalyzeTrend(series []MonthlyPoint) TrendResult {
	if len(series) < 3 {
		return TrendResult{Direction: TrendInsufficient, Confidence: model.ConfidenceInsufficient}
	}

	values := make([]float64, len(series))
	for i, pt := range series {
		values[i] = pt.Value
	}

	result := TrendResult{Confidence: model.ConfidenceMedium}
	if len(series) >= 6 {
		result.Confidence = model.ConfidenceHigh
	}
	result.Slope, result.RSquared = stats.LinearRegression(values)
	if avg, ok := stats.TrailingAverage(values, 3); ok {
		result.Rolling3 = &avg
	}
	if avg, ok := stats.TrailingAverage(values, 6); ok {
		result.Rolling6 = &avg
	}

	firstHalf := stats.Mean(values[:len(values)/2])
	secondHalf := stats.Mean(values[len(values)/2:])
	result.PercentChange = percentChange(firstHalf, secondHalf)

	cv, ok := stats.CoefficientOfVariation(values)
	if ok {
		result.CV = cv
	}
	switch {
	case ok && cv > volatileCV:
		result.Direction = TrendVolatile
	case result.PercentChange > trendChangePercent:
		result.Direction = TrendIncreasing
	case result.PercentChange < -trendChangePercent:
		result.Direction = TrendDecreasing
	default:
		result.Direction = TrendStable
	}
	return result
}

// AnalyzeCategoryTrend runs AnalyzeTrend over one category's monthly expense
// totals.
func AnalyzeCategoryTrend(txs []model.Transaction, category string) TrendResult {
	months := stats.MonthlyCategoryExpenses(txs, category)
	series := make([]MonthlyPoint, len(months))
	for i, m := range months {
		series[i] = MonthlyPoint{Month: m.Month, Value: m.Total}
	}
	return AnalyzeTrend(series)
}

func percentChange(from, to float64) float64 {
	if from == 0 {
		if to == 0 {
			return 0
		}
		if to > 0 {
			return 100
		}
		return -100
	}
	return (to - from) / from * 100
}
