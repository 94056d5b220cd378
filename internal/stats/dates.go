package stats

import (
	"sort"
	"time"

	"github.com/castlemilk/ledgerlens/internal/model"
)

// DayGap returns the gap between two instants in fractional days.
func DayGap(earlier, later time.Time) float64 {
	return later.Sub(earlier).Hours() / 24
}

// SameCalendarDay reports whether a and b fall on the same calendar date.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// BucketByMonth groups transactions into per-month aggregates, built fresh on
// every call. Transfers are skipped; income and expense amounts contribute as
// absolute values.
func BucketByMonth(txs []model.Transaction) map[model.MonthKey]*model.MonthlyAggregate {
	buckets := make(map[model.MonthKey]*model.MonthlyAggregate)
	for _, tx := range txs {
		if tx.Type == model.TransactionTransfer {
			continue
		}
		key := model.MonthKeyOf(tx.Date)
		agg, ok := buckets[key]
		if !ok {
			agg = &model.MonthlyAggregate{Month: key}
			buckets[key] = agg
		}
		amount := tx.Amount
		if amount < 0 {
			amount = -amount
		}
		switch tx.Type {
		case model.TransactionIncome:
			agg.Income += amount
		case model.TransactionExpense:
			agg.Expenses += amount
		}
		agg.TransactionCount++
	}
	for _, agg := range buckets {
		agg.Net = agg.Income - agg.Expenses
		if agg.Income > 0 {
			agg.SavingsRate = agg.Net / agg.Income * 100
		}
	}
	return buckets
}

// MonthlySeries returns the per-month aggregates ordered oldest first. Only
// months that actually contain transactions appear.
func MonthlySeries(txs []model.Transaction) []model.MonthlyAggregate {
	buckets := BucketByMonth(txs)
	series := make([]model.MonthlyAggregate, 0, len(buckets))
	for _, agg := range buckets {
		series = append(series, *agg)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Month.Before(series[j].Month)
	})
	return series
}

// MonthlyCategoryExpenses returns per-month absolute expense totals for one
// category, ordered oldest first.
func MonthlyCategoryExpenses(txs []model.Transaction, category string) []CategoryMonth {
	totals := make(map[model.MonthKey]float64)
	for _, tx := range txs {
		if tx.Type != model.TransactionExpense || tx.Category != category {
			continue
		}
		amount := tx.Amount
		if amount < 0 {
			amount = -amount
		}
		totals[model.MonthKeyOf(tx.Date)] += amount
	}
	series := make([]CategoryMonth, 0, len(totals))
	for key, total := range totals {
		series = append(series, CategoryMonth{Month: key, Total: total})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Month.Before(series[j].Month)
	})
	return series
}

// CategoryMonth is one month of spending in a single category.
type CategoryMonth struct {
	Month model.MonthKey
	Total float64
}
