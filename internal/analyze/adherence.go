package analyze

import (
	"math"
	"sort"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// AdherenceTrendDirection classifies movement of the adherence score.
type AdherenceTrendDirection string

const (
	AdherenceImproving AdherenceTrendDirection = "improving"
	AdherenceDeclining AdherenceTrendDirection = "declining"
	AdherenceSteady    AdherenceTrendDirection = "steady"
)

const (
	// chronicOverMonthsRatio: a category is a chronic offender when it runs
	// over budget in more than half of the observed months...
	chronicOverMonthsRatio = 0.5
	// ...and its average overage in those months exceeds 20%.
	chronicOveragePercent = 20.0
)

// CategoryAdherence scores how closely spend tracked the budget, clamped to
// [0, 100]. A zero budget scores 100 when nothing was spent and 0 otherwise.
func CategoryAdherence(budget, actual float64) float64 {
	if budget == 0 {
		if actual == 0 {
			return 100
		}
		return 0
	}
	return stats.Clamp(100*(1-math.Abs(actual-budget)/budget), 0, 100)
}

// MonthlyAdherence is one month's adherence picture.
type MonthlyAdherence struct {
	Month      model.MonthKey
	Score      float64
	ByCategory map[string]float64
}

// MonthlyAdherenceScore computes a budget-amount-weighted adherence score for
// one month: larger budgets dominate the overall score. Zero-budget
// categories are scored individually but carry no weight; when every budget
// is zero the overall score is the plain average.
func MonthlyAdherenceScore(budgets []model.Budget, txs []model.Transaction, month model.MonthKey) MonthlyAdherence {
	actuals := monthCategoryActuals(txs, month)
	adherence := MonthlyAdherence{Month: month, ByCategory: make(map[string]float64, len(budgets))}

	var weightedSum, totalWeight, plainSum float64
	for _, b := range budgets {
		monthly := b.MonthlyAmount()
		score := CategoryAdherence(monthly, actuals[b.Category])
		adherence.ByCategory[b.Category] = score
		weightedSum += score * monthly
		totalWeight += monthly
		plainSum += score
	}
	switch {
	case totalWeight > 0:
		adherence.Score = weightedSum / totalWeight
	case len(budgets) > 0:
		adherence.Score = plainSum / float64(len(budgets))
	}
	return adherence
}

// AdherenceHistory computes the monthly adherence series over every month
// observed in the transaction set, oldest first.
func AdherenceHistory(budgets []model.Budget, txs []model.Transaction) []MonthlyAdherence {
	series := stats.MonthlySeries(txs)
	history := make([]MonthlyAdherence, 0, len(series))
	for _, m := range series {
		history = append(history, MonthlyAdherenceScore(budgets, txs, m.Month))
	}
	return history
}

// AdherenceTrend compares the first and second half of the score history.
// A change of ±10% flips the direction; fewer than three months is steady by
// default (not enough signal to call it anything else).
func AdherenceTrend(history []MonthlyAdherence) AdherenceTrendDirection {
	if len(history) < 3 {
		return AdherenceSteady
	}
	scores := make([]float64, len(history))
	for i, h := range history {
		scores[i] = h.Score
	}
	change := percentChange(stats.Mean(scores[:len(scores)/2]), stats.Mean(scores[len(scores)/2:]))
	switch {
	case change >= 10:
		return AdherenceImproving
	case change <= -10:
		return AdherenceDeclining
	default:
		return AdherenceSteady
	}
}

// ChronicOffender is a category that persistently runs over budget.
type ChronicOffender struct {
	Category          string
	MonthsObserved    int
	MonthsOverBudget  int
	AverageOveragePct float64
}

// ChronicOffenders identifies categories over budget in more than half of
// observed months with an average overage above 20%.
func ChronicOffenders(budgets []model.Budget, txs []model.Transaction) []ChronicOffender {
	months := stats.MonthlySeries(txs)
	if len(months) == 0 {
		return nil
	}

	var offenders []ChronicOffender
	for _, b := range budgets {
		monthly := b.MonthlyAmount()
		if monthly <= 0 {
			continue
		}
		var monthsOver int
		var overageSum float64
		for _, m := range months {
			actual := monthCategoryActuals(txs, m.Month)[b.Category]
			if actual > monthly {
				monthsOver++
				overageSum += (actual - monthly) / monthly * 100
			}
		}
		if monthsOver == 0 {
			continue
		}
		avgOverage := overageSum / float64(monthsOver)
		if float64(monthsOver)/float64(len(months)) > chronicOverMonthsRatio && avgOverage > chronicOveragePercent {
			offenders = append(offenders, ChronicOffender{
				Category:          b.Category,
				MonthsObserved:    len(months),
				MonthsOverBudget:  monthsOver,
				AverageOveragePct: stats.RoundToCent(avgOverage),
			})
		}
	}
	sort.Slice(offenders, func(i, j int) bool {
		if offenders[i].AverageOveragePct != offenders[j].AverageOveragePct {
			return offenders[i].AverageOveragePct > offenders[j].AverageOveragePct
		}
		return offenders[i].Category < offenders[j].Category
	})
	return offenders
}
