package analyze

import (
	"math"
	"sort"
	"time"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// BudgetStatus classifies a single category's spend against its budget.
type BudgetStatus string

const (
	BudgetOnTrack BudgetStatus = "on_track"
	BudgetOver    BudgetStatus = "over_budget"
	BudgetUnder   BudgetStatus = "under_budget"
)

const (
	// varianceTolerancePercent is the band within which spend counts as on
	// track. Only overspend beyond it raises a red flag; underspend never does.
	varianceTolerancePercent = 20.0

	// FlaggedVarianceSentinel is the serialized stand-in for the infinite
	// variance of a zero budget with actual spend. It marks "needs review",
	// not a computed ratio.
	FlaggedVarianceSentinel = 999.0

	// seasonalSpreadThreshold is the max-min factor spread beyond which a
	// category counts as seasonal.
	seasonalSpreadThreshold = 0.4
)

// CategoryVarianceResult is one category's budget-vs-actual outcome for a
// month. Variance is a percentage; it is +Inf when the budget is zero but
// money was spent.
type CategoryVarianceResult struct {
	Category string
	Budget   float64
	Actual   float64
	Variance float64
	Status   BudgetStatus
	RedFlag  bool
}

// CategoryVariance computes (actual-budget)/budget as a percentage and
// classifies it. A zero budget with nonzero spend is the documented infinite
// sentinel: over budget, red-flagged, serialized as 999 in reports.
func CategoryVariance(category string, budget, actual float64) CategoryVarianceResult {
	result := CategoryVarianceResult{Category: category, Budget: budget, Actual: actual}
	if budget == 0 {
		if actual > 0 {
			result.Variance = math.Inf(1)
			result.Status = BudgetOver
			result.RedFlag = true
			return result
		}
		result.Status = BudgetOnTrack
		return result
	}
	result.Variance = (actual - budget) / budget * 100
	switch {
	case math.Abs(result.Variance) <= varianceTolerancePercent:
		result.Status = BudgetOnTrack
	case result.Variance > 0:
		result.Status = BudgetOver
	default:
		result.Status = BudgetUnder
	}
	result.RedFlag = result.Variance > varianceTolerancePercent
	return result
}

// VarianceForReport converts a variance into its display form, replacing the
// infinite sentinel with 999.
func VarianceForReport(variance float64) float64 {
	if math.IsInf(variance, 1) {
		return FlaggedVarianceSentinel
	}
	return stats.RoundToCent(variance)
}

// AnalyzeBudgetVariances computes per-category variance for one calendar
// month. Annual budgets are normalized to monthly. Results are ordered by
// category name.
func AnalyzeBudgetVariances(budgets []model.Budget, txs []model.Transaction, month model.MonthKey) []CategoryVarianceResult {
	actuals := monthCategoryActuals(txs, month)
	results := make([]CategoryVarianceResult, 0, len(budgets))
	for _, b := range budgets {
		results = append(results, CategoryVariance(b.Category, b.MonthlyAmount(), actuals[b.Category]))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Category < results[j].Category })
	return results
}

// YTDStatus tracks one category's year-to-date position against a pro-rated
// annual budget, with a run-rate projection for year end.
type YTDStatus struct {
	Category         string
	AnnualBudget     float64
	BudgetYTD        float64
	ActualYTD        float64
	VariancePercent  float64
	ProjectedYearEnd float64
	OnPace           bool
}

// TrackYTD pro-rates each annual budget by the months elapsed in asOf's year
// and projects year-end spend from the current monthly run rate.
func TrackYTD(budgets []model.Budget, txs []model.Transaction, asOf time.Time) []YTDStatus {
	elapsedMonths := float64(asOf.Month())
	year := asOf.Year()

	actuals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != model.TransactionExpense || tx.Date.Year() != year || tx.Date.After(asOf) {
			continue
		}
		actuals[tx.Category] += math.Abs(tx.Amount)
	}

	results := make([]YTDStatus, 0, len(budgets))
	for _, b := range budgets {
		annual := b.AnnualAmount()
		budgetYTD := annual * elapsedMonths / 12
		actualYTD := actuals[b.Category]
		monthlyRunRate := actualYTD / elapsedMonths
		status := YTDStatus{
			Category:         b.Category,
			AnnualBudget:     annual,
			BudgetYTD:        stats.RoundToCent(budgetYTD),
			ActualYTD:        stats.RoundToCent(actualYTD),
			ProjectedYearEnd: stats.RoundToCent(monthlyRunRate * 12),
			OnPace:           actualYTD <= budgetYTD,
		}
		if budgetYTD > 0 {
			status.VariancePercent = stats.RoundToCent((actualYTD - budgetYTD) / budgetYTD * 100)
		}
		results = append(results, status)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Category < results[j].Category })
	return results
}

// SeasonalityResult reports per-calendar-month spending factors for one
// category. A factor of 1.2 for December means December runs 20% above the
// category's overall monthly mean.
type SeasonalityResult struct {
	Category   string
	Seasonal   bool
	Factors    map[time.Month]float64
	Spread     float64
	Confidence model.Confidence
}

// DetectSeasonality needs at least twelve months of history for a category;
// with less it reports insufficient confidence and no factors.
func DetectSeasonality(txs []model.Transaction, category string) SeasonalityResult {
	result := SeasonalityResult{Category: category, Confidence: model.ConfidenceInsufficient}
	months := stats.MonthlyCategoryExpenses(txs, category)
	if len(months) < 12 {
		return result
	}

	var overall []float64
	byCalendarMonth := make(map[time.Month][]float64)
	for _, m := range months {
		overall = append(overall, m.Total)
		byCalendarMonth[m.Month.Month] = append(byCalendarMonth[m.Month.Month], m.Total)
	}
	overallMean := stats.Mean(overall)
	if overallMean == 0 {
		return result
	}

	result.Factors = make(map[time.Month]float64, len(byCalendarMonth))
	minFactor, maxFactor := math.Inf(1), math.Inf(-1)
	for calMonth, totals := range byCalendarMonth {
		factor := stats.Mean(totals) / overallMean
		result.Factors[calMonth] = factor
		minFactor = math.Min(minFactor, factor)
		maxFactor = math.Max(maxFactor, factor)
	}
	result.Spread = maxFactor - minFactor
	result.Seasonal = result.Spread > seasonalSpreadThreshold
	result.Confidence = model.ConfidenceMedium
	if len(months) >= 24 {
		result.Confidence = model.ConfidenceHigh
	}
	return result
}

// AdjustBudget scales a base monthly budget by the seasonal factor for the
// given calendar month. Months without a factor return the base unchanged.
func (s SeasonalityResult) AdjustBudget(base float64, month time.Month) float64 {
	factor, ok := s.Factors[month]
	if !ok {
		return base
	}
	return stats.RoundToCent(base * factor)
}

// BudgetSuggestion is a first-month budget proposal for a category with no
// budget yet.
type BudgetSuggestion struct {
	Category        string
	Suggested       float64
	MonthsOfHistory int
	Confidence      model.Confidence
}

// SuggestInitialBudget proposes the historical monthly average rounded up to
// the nearest $10, with confidence keyed to how much history backs it.
func SuggestInitialBudget(txs []model.Transaction, category string) BudgetSuggestion {
	months := stats.MonthlyCategoryExpenses(txs, category)
	suggestion := BudgetSuggestion{Category: category, MonthsOfHistory: len(months)}
	if len(months) == 0 {
		suggestion.Confidence = model.ConfidenceInsufficient
		return suggestion
	}
	var totals []float64
	for _, m := range months {
		totals = append(totals, m.Total)
	}
	suggestion.Suggested = stats.RoundUpToNearest(stats.Mean(totals), 10)
	switch {
	case len(months) >= 3:
		suggestion.Confidence = model.ConfidenceHigh
	case len(months) >= 2:
		suggestion.Confidence = model.ConfidenceMedium
	default:
		suggestion.Confidence = model.ConfidenceLow
	}
	return suggestion
}

// CategoryComparison contrasts one category's spend across two periods.
type CategoryComparison struct {
	Category      string
	Current       float64
	Previous      float64
	ChangePercent float64
}

// CompareCategorySpending sums expenses by category for two transaction sets
// and reports the change, largest current spend first.
func CompareCategorySpending(current, previous []model.Transaction) []CategoryComparison {
	currentTotals := categoryActuals(current)
	previousTotals := categoryActuals(previous)

	seen := make(map[string]bool)
	var comparisons []CategoryComparison
	for _, totals := range []map[string]float64{currentTotals, previousTotals} {
		for category := range totals {
			if seen[category] {
				continue
			}
			seen[category] = true
			cur := currentTotals[category]
			prev := previousTotals[category]
			c := CategoryComparison{Category: category, Current: cur, Previous: prev}
			if prev > 0 {
				c.ChangePercent = stats.RoundToCent((cur - prev) / prev * 100)
			}
			comparisons = append(comparisons, c)
		}
	}
	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Current != comparisons[j].Current {
			return comparisons[i].Current > comparisons[j].Current
		}
		return comparisons[i].Category < comparisons[j].Category
	})
	return comparisons
}

func categoryActuals(txs []model.Transaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != model.TransactionExpense {
			continue
		}
		totals[tx.Category] += math.Abs(tx.Amount)
	}
	return totals
}

func monthCategoryActuals(txs []model.Transaction, month model.MonthKey) map[string]float64 {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != model.TransactionExpense || model.MonthKeyOf(tx.Date) != month {
			continue
		}
		totals[tx.Category] += math.Abs(tx.Amount)
	}
	return totals
}
