package analyze

import (
	"math"
	"testing"
	"time"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryVariance(t *testing.T) {
	tests := []struct {
		name     string
		budget   float64
		actual   float64
		variance float64
		status   BudgetStatus
		redFlag  bool
	}{
		{"exactly on budget", 500, 500, 0, BudgetOnTrack, false},
		{"at tolerance edge", 500, 600, 20, BudgetOnTrack, false},
		{"just over tolerance", 500, 601, 20.2, BudgetOver, true},
		{"well under", 500, 350, -30, BudgetUnder, false},
		{"zero budget zero spend", 0, 0, 0, BudgetOnTrack, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategoryVariance("dining", tt.budget, tt.actual)
			assert.InDelta(t, tt.variance, result.Variance, 0.01)
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.redFlag, result.RedFlag)
		})
	}
}

func TestCategoryVarianceZeroBudgetWithSpend(t *testing.T) {
	result := CategoryVariance("dining", 0, 50)
	assert.True(t, math.IsInf(result.Variance, 1))
	assert.Equal(t, BudgetOver, result.Status)
	assert.True(t, result.RedFlag)
	assert.Equal(t, FlaggedVarianceSentinel, VarianceForReport(result.Variance))
}

func TestVarianceForReportFinite(t *testing.T) {
	assert.InDelta(t, 20.2, VarianceForReport(20.2), 1e-9)
	assert.InDelta(t, -30.0, VarianceForReport(-30.0), 1e-9)
}

func TestAnalyzeBudgetVariances(t *testing.T) {
	budgets := []model.Budget{
		{Category: "groceries", Amount: 500, Period: model.BudgetPeriodMonthly},
		{Category: "insurance", Amount: 1200, Period: model.BudgetPeriodAnnual},
	}
	txs := []model.Transaction{
		tx(day(2024, time.March, 5), "Whole Foods", "groceries", 420),
		tx(day(2024, time.March, 20), "Allstate", "insurance", 100),
		// A different month must not count.
		tx(day(2024, time.February, 5), "Whole Foods", "groceries", 900),
	}

	results := AnalyzeBudgetVariances(budgets, txs, model.MonthKey{Year: 2024, Month: time.March})
	require.Len(t, results, 2)

	assert.Equal(t, "groceries", results[0].Category)
	assert.InDelta(t, 420.0, results[0].Actual, 1e-9)
	assert.Equal(t, BudgetOnTrack, results[0].Status)

	// Annual budget pro-rated to $100/month.
	assert.Equal(t, "insurance", results[1].Category)
	assert.InDelta(t, 100.0, results[1].Budget, 1e-9)
	assert.Equal(t, BudgetOnTrack, results[1].Status)
}

func TestTrackYTD(t *testing.T) {
	budgets := []model.Budget{{Category: "groceries", Amount: 100, Period: model.BudgetPeriodMonthly}}
	txs := []model.Transaction{
		tx(day(2024, time.January, 10), "Safeway", "groceries", 120),
		tx(day(2024, time.February, 10), "Safeway", "groceries", 110),
		tx(day(2024, time.March, 10), "Safeway", "groceries", 120),
		// After asOf: excluded.
		tx(day(2024, time.April, 10), "Safeway", "groceries", 500),
		// Prior year: excluded.
		tx(day(2023, time.March, 10), "Safeway", "groceries", 500),
	}

	results := TrackYTD(budgets, txs, day(2024, time.March, 31))
	require.Len(t, results, 1)

	ytd := results[0]
	assert.InDelta(t, 1200.0, ytd.AnnualBudget, 1e-9)
	assert.InDelta(t, 300.0, ytd.BudgetYTD, 1e-9)
	assert.InDelta(t, 350.0, ytd.ActualYTD, 1e-9)
	assert.InDelta(t, 16.67, ytd.VariancePercent, 0.01)
	assert.InDelta(t, 1400.0, ytd.ProjectedYearEnd, 1e-9)
	assert.False(t, ytd.OnPace)
}

func TestDetectSeasonalityInsufficientHistory(t *testing.T) {
	txs := []model.Transaction{
		tx(day(2024, time.January, 10), "PG&E", "utilities", 100),
		tx(day(2024, time.February, 10), "PG&E", "utilities", 100),
	}
	result := DetectSeasonality(txs, "utilities")
	assert.False(t, result.Seasonal)
	assert.Equal(t, model.ConfidenceInsufficient, result.Confidence)
	assert.Nil(t, result.Factors)
}

func TestDetectSeasonalityDecemberSpike(t *testing.T) {
	var txs []model.Transaction
	for m := time.January; m <= time.December; m++ {
		amount := 100.0
		if m == time.December {
			amount = 200.0
		}
		txs = append(txs, tx(day(2024, m, 10), "Amazon", "shopping", amount))
	}

	result := DetectSeasonality(txs, "shopping")
	assert.True(t, result.Seasonal)
	assert.Equal(t, model.ConfidenceMedium, result.Confidence)
	assert.Greater(t, result.Factors[time.December], result.Factors[time.June])
	assert.InDelta(t, 200.0/(1300.0/12), result.Factors[time.December], 1e-9)

	// December budget gets scaled up, an unknown month passes through.
	assert.Greater(t, result.AdjustBudget(100, time.December), 100.0)
	noFactor := SeasonalityResult{Factors: map[time.Month]float64{}}
	assert.Equal(t, 100.0, noFactor.AdjustBudget(100, time.December))
}

func TestSuggestInitialBudget(t *testing.T) {
	txs := []model.Transaction{
		tx(day(2024, time.January, 10), "Shell", "gas", 82),
		tx(day(2024, time.February, 10), "Shell", "gas", 95),
		tx(day(2024, time.March, 10), "Shell", "gas", 101),
	}

	suggestion := SuggestInitialBudget(txs, "gas")
	// Mean 92.67 rounds up to the next $10.
	assert.InDelta(t, 100.0, suggestion.Suggested, 1e-9)
	assert.Equal(t, 3, suggestion.MonthsOfHistory)
	assert.Equal(t, model.ConfidenceHigh, suggestion.Confidence)

	empty := SuggestInitialBudget(nil, "gas")
	assert.Equal(t, model.ConfidenceInsufficient, empty.Confidence)
	assert.Zero(t, empty.Suggested)
}

func TestCompareCategorySpending(t *testing.T) {
	current := []model.Transaction{
		tx(day(2024, time.March, 5), "Whole Foods", "groceries", 450),
		tx(day(2024, time.March, 8), "Chipotle", "dining", 120),
	}
	previous := []model.Transaction{
		tx(day(2024, time.February, 5), "Whole Foods", "groceries", 400),
		tx(day(2024, time.February, 20), "Chevron", "gas", 60),
	}

	comparisons := CompareCategorySpending(current, previous)
	require.Len(t, comparisons, 3)

	assert.Equal(t, "groceries", comparisons[0].Category)
	assert.InDelta(t, 12.5, comparisons[0].ChangePercent, 1e-9)
	assert.Equal(t, "dining", comparisons[1].Category)
	assert.Zero(t, comparisons[1].ChangePercent)
	assert.Equal(t, "gas", comparisons[2].Category)
	assert.InDelta(t, 60.0, comparisons[2].Previous, 1e-9)
}
