package analyze

import (
	"math"
	"sort"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// RecommendationAction is the direction of a proposed budget change.
type RecommendationAction string

const (
	RecommendIncrease RecommendationAction = "increase"
	RecommendDecrease RecommendationAction = "decrease"
	RecommendNone     RecommendationAction = "none"
)

// Optimizer rule thresholds.
const (
	overspendFactor   = 1.15 // spend above 115% of budget triggers a raise
	underspendFactor  = 0.80 // spend below 80% of budget triggers a cut
	underspendBuffer  = 1.10 // cut lands 10% above observed spend
	trendRaiseBuffer  = 1.10 // proactive raise lands 10% above observed spend
	decreasingBuffer  = 1.05 // trend-driven cut keeps a 5% cushion
	minChangePercent  = 5.0  // recommendations below this net change are noise
	trendTriggerPct   = 10.0 // monthly-series trend beyond ±10% triggers
)

// BudgetRecommendation proposes a budget change for one category.
type BudgetRecommendation struct {
	Category      string
	Current       float64
	Recommended   float64
	Action        RecommendationAction
	Reason        string
	ChangePercent float64
}

// optimizerRule is one predicate→outcome pair. Rules are evaluated in order
// and the first match wins, keeping the priority auditable rule by rule.
type optimizerRule struct {
	reason  string
	applies func(in ruleInput) bool
	propose func(in ruleInput) (amount float64, action RecommendationAction)
}

type ruleInput struct {
	budget       float64
	monthlySpend float64
	trend        TrendResult
}

var optimizerRules = []optimizerRule{
	{
		reason: "overspend",
		applies: func(in ruleInput) bool {
			return in.budget > 0 && in.monthlySpend > in.budget*overspendFactor
		},
		propose: func(in ruleInput) (float64, RecommendationAction) {
			return stats.RoundUpToNearest(in.monthlySpend, 10), RecommendIncrease
		},
	},
	{
		reason: "underspend",
		applies: func(in ruleInput) bool {
			return in.budget > 0 && in.monthlySpend < in.budget*underspendFactor
		},
		propose: func(in ruleInput) (float64, RecommendationAction) {
			return stats.RoundToCent(in.monthlySpend * underspendBuffer), RecommendDecrease
		},
	},
	{
		reason: "increasing_trend",
		applies: func(in ruleInput) bool {
			return in.trend.Direction == TrendIncreasing && in.trend.PercentChange > trendTriggerPct
		},
		propose: func(in ruleInput) (float64, RecommendationAction) {
			return stats.RoundUpToNearest(in.monthlySpend*trendRaiseBuffer, 10), RecommendIncrease
		},
	},
	{
		reason: "decreasing_trend",
		applies: func(in ruleInput) bool {
			return in.trend.Direction == TrendDecreasing && in.trend.PercentChange < -trendTriggerPct
		},
		propose: func(in ruleInput) (float64, RecommendationAction) {
			return stats.RoundToCent(in.monthlySpend * decreasingBuffer), RecommendDecrease
		},
	},
}

// RecommendBudgets evaluates each budgeted category against the ordered rule
// chain. A category matches at most one rule per call; recommendations whose
// net change is under 5% are suppressed as noise. Results are ordered by
// category.
func RecommendBudgets(budgets []model.Budget, txs []model.Transaction) []BudgetRecommendation {
	recommendations := make([]BudgetRecommendation, 0, len(budgets))
	for _, b := range budgets {
		monthly := b.MonthlyAmount()
		months := stats.MonthlyCategoryExpenses(txs, b.Category)
		var totals []float64
		for _, m := range months {
			totals = append(totals, m.Total)
		}
		in := ruleInput{
			budget:       monthly,
			monthlySpend: stats.Mean(totals),
			trend:        AnalyzeCategoryTrend(txs, b.Category),
		}

		rec := BudgetRecommendation{
			Category:    b.Category,
			Current:     monthly,
			Recommended: monthly,
			Action:      RecommendNone,
			Reason:      "on_track",
		}
		for _, rule := range optimizerRules {
			if !rule.applies(in) {
				continue
			}
			amount, action := rule.propose(in)
			rec.Recommended = amount
			rec.Action = action
			rec.Reason = rule.reason
			break
		}

		if rec.Action != RecommendNone && monthly > 0 {
			rec.ChangePercent = stats.RoundToCent((rec.Recommended - monthly) / monthly * 100)
			if math.Abs(rec.ChangePercent) < minChangePercent {
				rec.Recommended = monthly
				rec.Action = RecommendNone
				rec.Reason = "on_track"
				rec.ChangePercent = 0
			}
		}
		recommendations = append(recommendations, rec)
	}
	sort.Slice(recommendations, func(i, j int) bool {
		return recommendations[i].Category < recommendations[j].Category
	})
	return recommendations
}

// QuickWin is an underspent category whose budget can shrink painlessly.
type QuickWin struct {
	Category string
	Current  float64
	Slack    float64 // budget minus average spend
}

// QuickWins lists categories spending well under budget, largest slack first:
// the easy places to free up money.
func QuickWins(budgets []model.Budget, txs []model.Transaction) []QuickWin {
	var wins []QuickWin
	for _, b := range budgets {
		monthly := b.MonthlyAmount()
		if monthly <= 0 {
			continue
		}
		months := stats.MonthlyCategoryExpenses(txs, b.Category)
		var totals []float64
		for _, m := range months {
			totals = append(totals, m.Total)
		}
		spend := stats.Mean(totals)
		if spend < monthly*underspendFactor {
			wins = append(wins, QuickWin{
				Category: b.Category,
				Current:  monthly,
				Slack:    stats.RoundToCent(monthly - spend),
			})
		}
	}
	sort.Slice(wins, func(i, j int) bool {
		if wins[i].Slack != wins[j].Slack {
			return wins[i].Slack > wins[j].Slack
		}
		return wins[i].Category < wins[j].Category
	})
	return wins
}

// CategoryCut is one category's share of a goal-shortfall reduction.
type CategoryCut struct {
	Category  string
	Current   float64
	Cut       float64
	NewBudget float64
}

// GoalShortfallPlan describes how to free up a monthly shortfall.
type GoalShortfallPlan struct {
	Shortfall      float64
	Slack          float64
	CoveredBySlack bool
	Cuts           []CategoryCut
}

// CoverGoalShortfall frees up the given monthly shortfall from discretionary
// categories. Existing under-budget slack is counted first; only the
// remainder is distributed as cuts, proportionally to each discretionary
// category's share of the discretionary budget total.
func CoverGoalShortfall(budgets []model.Budget, txs []model.Transaction, shortfall float64, discretionary []string) GoalShortfallPlan {
	plan := GoalShortfallPlan{Shortfall: stats.RoundToCent(shortfall)}
	if shortfall <= 0 {
		plan.CoveredBySlack = true
		return plan
	}

	discretionarySet := make(map[string]bool, len(discretionary))
	for _, c := range discretionary {
		discretionarySet[c] = true
	}

	var slack, totalBudget float64
	type candidate struct {
		category string
		budget   float64
	}
	var candidates []candidate
	for _, b := range budgets {
		if !discretionarySet[b.Category] {
			continue
		}
		monthly := b.MonthlyAmount()
		months := stats.MonthlyCategoryExpenses(txs, b.Category)
		var totals []float64
		for _, m := range months {
			totals = append(totals, m.Total)
		}
		spend := stats.Mean(totals)
		if spend < monthly {
			slack += monthly - spend
		}
		totalBudget += monthly
		candidates = append(candidates, candidate{category: b.Category, budget: monthly})
	}
	plan.Slack = stats.RoundToCent(slack)

	if slack >= shortfall {
		plan.CoveredBySlack = true
		return plan
	}
	remaining := shortfall - slack
	if totalBudget <= 0 {
		return plan
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].category < candidates[j].category })
	for _, c := range candidates {
		cut := stats.RoundToCent(remaining * c.budget / totalBudget)
		plan.Cuts = append(plan.Cuts, CategoryCut{
			Category:  c.category,
			Current:   c.budget,
			Cut:       cut,
			NewBudget: stats.RoundToCent(c.budget - cut),
		})
	}
	return plan
}
