package analyze

import (
	"testing"
	"time"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCashFlowStabilitySteadySurplus(t *testing.T) {
	var txs []model.Transaction
	expenses := []float64{3000, 2990, 3010, 3005, 2995, 3000}
	for i, e := range expenses {
		txs = append(txs, monthOf(2024, time.Month(i+1), 5000, e)...)
	}

	result := AnalyzeCashFlowStability(txs, nil, CashFlowOptions{})

	assert.Equal(t, 6, result.MonthsAnalyzed)
	assert.Equal(t, RatingVeryStable, result.Rating)
	assert.Greater(t, result.StabilityIndex, 95.0)
	assert.InDelta(t, 2000.0, result.MeanNet, 20)
	assert.Equal(t, model.ConfidenceMedium, result.Confidence)

	require.NotNil(t, result.ProbNegativeMonth)
	assert.Less(t, *result.ProbNegativeMonth, 0.01)
}

func TestAnalyzeCashFlowStabilityVolatile(t *testing.T) {
	var txs []model.Transaction
	nets := []struct{ income, expenses float64 }{
		{5000, 2000}, {3000, 5500}, {5000, 1500}, {2500, 6000}, {5000, 4800}, {4000, 4100},
	}
	for i, m := range nets {
		txs = append(txs, monthOf(2024, time.Month(i+1), m.income, m.expenses)...)
	}

	result := AnalyzeCashFlowStability(txs, nil, CashFlowOptions{})

	assert.Equal(t, RatingVolatile, result.Rating)
	assert.Zero(t, result.StabilityIndex)
	require.NotNil(t, result.ProbNegativeMonth)
	assert.Greater(t, *result.ProbNegativeMonth, 0.5)
}

func TestAnalyzeCashFlowStabilityInsufficientHistory(t *testing.T) {
	txs := monthOf(2024, time.January, 5000, 3000)
	txs = append(txs, monthOf(2024, time.February, 5000, 3000)...)

	result := AnalyzeCashFlowStability(txs, nil, CashFlowOptions{})

	assert.Equal(t, 2, result.MonthsAnalyzed)
	assert.Equal(t, model.ConfidenceInsufficient, result.Confidence)
	assert.Nil(t, result.CV)
	assert.Nil(t, result.ProbNegativeMonth)
	// Recurring ratio is still computable from average expenses.
	require.NotNil(t, result.RecurringRatio)
	assert.Zero(t, *result.RecurringRatio)
}

func TestAnalyzeCashFlowStabilityRecurringRatio(t *testing.T) {
	var txs []model.Transaction
	for m := time.January; m <= time.June; m++ {
		txs = append(txs, monthOf(2024, m, 5000, 2000)...)
	}
	patterns := []RecurringPattern{
		{AverageAmount: 500, Period: PeriodMonthly, Status: PatternConfirmed},
	}

	result := AnalyzeCashFlowStability(txs, patterns, CashFlowOptions{})
	require.NotNil(t, result.RecurringRatio)
	assert.InDelta(t, 0.25, *result.RecurringRatio, 1e-9)
}

func TestAnalyzeCashFlowStabilityLookbackWindow(t *testing.T) {
	var txs []model.Transaction
	// Old volatile year followed by three steady months.
	for m := time.January; m <= time.December; m++ {
		txs = append(txs, monthOf(2023, m, 5000, float64(1000+400*int(m)))...)
	}
	for m := time.January; m <= time.March; m++ {
		txs = append(txs, monthOf(2024, m, 5000, 3000)...)
	}

	result := AnalyzeCashFlowStability(txs, nil, CashFlowOptions{LookbackMonths: 3})
	assert.Equal(t, 3, result.MonthsAnalyzed)
	assert.Equal(t, RatingVeryStable, result.Rating)
	assert.Equal(t, model.ConfidenceLow, result.Confidence)
}
