package analyze

import (
	"math"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// StabilityRating bands the 0-100 stability index.
type StabilityRating string

const (
	RatingVeryStable StabilityRating = "very_stable"
	RatingStable     StabilityRating = "stable"
	RatingModerate   StabilityRating = "moderate"
	RatingVolatile   StabilityRating = "volatile"
)

// Stability index rating bands.
const (
	veryStableMin = 80.0
	stableMin     = 60.0
	moderateMin   = 40.0
)

// CashFlowOptions configures the stability analysis. Zero values mean
// defaults.
type CashFlowOptions struct {
	LookbackMonths int // default 12
}

func (o CashFlowOptions) normalized() CashFlowOptions {
	if o.LookbackMonths <= 0 {
		o.LookbackMonths = 12
	}
	return o
}

// CashFlowStability reports how predictable net cash flow has been.
type CashFlowStability struct {
	StabilityIndex    float64 // 100 − min(100, CV×100)
	Rating            StabilityRating
	CV                *float64
	MeanNet           float64
	StdDevNet         float64
	ProbNegativeMonth *float64 // chance of at least one negative month in the next three
	RecurringRatio    *float64 // confirmed recurring monthly total / avg monthly expenses
	MonthsAnalyzed    int
	Confidence        model.Confidence
}

// AnalyzeCashFlowStability grades the predictability of monthly net cash
// flow over the lookback window. Recurring patterns come from the recurring
// detector; passing them in keeps the composition caller-orchestrated.
func AnalyzeCashFlowStability(txs []model.Transaction, patterns []RecurringPattern, opts CashFlowOptions) CashFlowStability {
	opts = opts.normalized()
	series := stats.MonthlySeries(txs)
	if len(series) > opts.LookbackMonths {
		series = series[len(series)-opts.LookbackMonths:]
	}

	result := CashFlowStability{
		MonthsAnalyzed: len(series),
		Rating:         RatingVolatile,
		Confidence:     model.ConfidenceInsufficient,
	}

	nets := make([]float64, len(series))
	var totalExpenses float64
	for i, m := range series {
		nets[i] = m.Net
		totalExpenses += m.Expenses
	}

	if avgExpenses := stats.SafeDivide(totalExpenses, float64(len(series))); avgExpenses > 0 {
		ratio := CalculateRecurringTotal(patterns).Monthly / avgExpenses
		result.RecurringRatio = &ratio
	}

	if len(series) < 3 {
		return result
	}

	result.MeanNet = stats.Mean(nets)
	result.StdDevNet = stats.StandardDeviation(nets)

	if cv, ok := stats.CoefficientOfVariation(nets); ok {
		result.CV = &cv
		result.StabilityIndex = 100 - math.Min(100, cv*100)
	}
	switch {
	case result.StabilityIndex >= veryStableMin:
		result.Rating = RatingVeryStable
	case result.StabilityIndex >= stableMin:
		result.Rating = RatingStable
	case result.StabilityIndex >= moderateMin:
		result.Rating = RatingModerate
	default:
		result.Rating = RatingVolatile
	}

	// Normal approximation: chance any of the next three months goes negative.
	pNegative := stats.NormalCDF(0, result.MeanNet, result.StdDevNet)
	pAny := 1 - math.Pow(1-pNegative, 3)
	result.ProbNegativeMonth = &pAny

	switch {
	case len(series) >= 12:
		result.Confidence = model.ConfidenceHigh
	case len(series) >= 6:
		result.Confidence = model.ConfidenceMedium
	default:
		result.Confidence = model.ConfidenceLow
	}
	return result
}
