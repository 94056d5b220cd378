package analyze

import (
	"math"
	"sort"
	"time"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// Period is a detected charge cadence.
type Period string

const (
	PeriodWeekly    Period = "weekly"
	PeriodBiweekly  Period = "biweekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodAnnual    Period = "annual"
	PeriodUnknown   Period = "unknown"
)

// PatternStatus marks whether a recurring pattern has enough evidence behind it.
type PatternStatus string

const (
	PatternConfirmed   PatternStatus = "confirmed"
	PatternUnconfirmed PatternStatus = "unconfirmed"
)

// RecurringPattern groups fuzzy-matched charges for one merchant+category.
// Patterns have no persisted identity: they are recomputed wholesale from the
// full transaction set on every call.
type RecurringPattern struct {
	Merchant           string
	NormalizedMerchant string
	Category           string
	AverageAmount      float64
	Period             Period
	Confidence         float64 // 0-100
	Status             PatternStatus
	Occurrences        int
	TimingConsistency  float64
	AmountCV           float64
	FirstDate          time.Time
	LastDate           time.Time
	NextExpected       *time.Time
	TransactionIDs     []int64
}

// RecurringOptions configures detection. Zero values mean defaults.
type RecurringOptions struct {
	MaxMerchantDistance   int     // default 2
	MinConfirmOccurrences int     // default 3
	MinConsistency        float64 // default 0.80
	AmountTolerance       float64 // relative, default 0.01 (duplicate detection)
}

func (o RecurringOptions) normalized() RecurringOptions {
	if o.MaxMerchantDistance <= 0 {
		o.MaxMerchantDistance = stats.DefaultMerchantDistance
	}
	if o.MinConfirmOccurrences <= 0 {
		o.MinConfirmOccurrences = 3
	}
	if o.MinConsistency <= 0 {
		o.MinConsistency = 0.80
	}
	if o.AmountTolerance <= 0 {
		o.AmountTolerance = 0.01
	}
	return o
}

// periodWindow is a day-gap tolerance bucket.
type periodWindow struct {
	period   Period
	min, max float64
}

var periodWindows = []periodWindow{
	{PeriodWeekly, 6, 8},
	{PeriodBiweekly, 13, 16},
	{PeriodMonthly, 28, 31},
	{PeriodQuarterly, 87, 93},
	{PeriodAnnual, 358, 372},
}

// ClassifyGap maps a day gap to its periodicity bucket. Gaps outside every
// tolerance window are unknown.
func ClassifyGap(days float64) Period {
	for _, w := range periodWindows {
		if days >= w.min && days <= w.max {
			return w.period
		}
	}
	return PeriodUnknown
}

// CalculateConfidence compounds timing consistency with amount consistency:
// confidence = timingConsistency × (1 − amountCV), scaled to 0-100.
// Perfect timing with zero amount variance scores 100; 80% timing with 20%
// amount variance scores 64.
func CalculateConfidence(timingConsistency, amountCV float64) float64 {
	score := timingConsistency * (1 - amountCV) * 100
	return stats.RoundToCent(stats.Clamp(score, 0, 100))
}

// DetectRecurringPatterns groups expense transactions by fuzzy-matched
// merchant within each category and classifies each group's cadence.
// Single occurrences are dropped entirely. Output is deterministic for a
// given input set: sorted by confidence descending, then merchant.
func DetectRecurringPatterns(txs []model.Transaction, opts RecurringOptions) []RecurringPattern {
	opts = opts.normalized()
	groups := groupByMerchant(txs, opts)

	patterns := make([]RecurringPattern, 0, len(groups))
	for _, group := range groups {
		if len(group.txs) < 2 {
			continue
		}
		patterns = append(patterns, buildPattern(group, opts))
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Confidence != patterns[j].Confidence {
			return patterns[i].Confidence > patterns[j].Confidence
		}
		if patterns[i].NormalizedMerchant != patterns[j].NormalizedMerchant {
			return patterns[i].NormalizedMerchant < patterns[j].NormalizedMerchant
		}
		return patterns[i].Category < patterns[j].Category
	})
	return patterns
}

type merchantGroup struct {
	normalized string
	category   string
	txs        []model.Transaction
}

// groupByMerchant clusters expenses by (fuzzy merchant, category). Input is
// sorted by date then ID first, so clustering is order-independent for a
// given transaction set.
func groupByMerchant(txs []model.Transaction, opts RecurringOptions) []*merchantGroup {
	expenses := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == model.TransactionExpense {
			expenses = append(expenses, tx)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.Before(expenses[j].Date)
		}
		return expenses[i].ID < expenses[j].ID
	})

	var groups []*merchantGroup
	for _, tx := range expenses {
		normalized := stats.NormalizeMerchant(tx.Description)
		var match *merchantGroup
		for _, g := range groups {
			if g.category != tx.Category {
				continue
			}
			if g.normalized == normalized || stats.IsSimilarMerchant(g.normalized, normalized, opts.MaxMerchantDistance) {
				match = g
				break
			}
		}
		if match == nil {
			match = &merchantGroup{normalized: normalized, category: tx.Category}
			groups = append(groups, match)
		}
		match.txs = append(match.txs, tx)
	}
	return groups
}

func buildPattern(group *merchantGroup, opts RecurringOptions) RecurringPattern {
	txs := group.txs // already date-ordered

	var gaps []float64
	var amounts []float64
	ids := make([]int64, len(txs))
	for i, tx := range txs {
		amounts = append(amounts, math.Abs(tx.Amount))
		ids[i] = tx.ID
		if i > 0 {
			gaps = append(gaps, stats.DayGap(txs[i-1].Date, txs[i].Date))
		}
	}

	period, timingConsistency := classifyPeriod(gaps)

	amountCV := 0.0
	if cv, ok := stats.CoefficientOfVariation(amounts); ok {
		amountCV = cv
	}

	pattern := RecurringPattern{
		Merchant:           txs[len(txs)-1].Description, // most recent label
		NormalizedMerchant: group.normalized,
		Category:           group.category,
		AverageAmount:      stats.RoundToCent(stats.Mean(amounts)),
		Period:             period,
		Confidence:         CalculateConfidence(timingConsistency, amountCV),
		Occurrences:        len(txs),
		TimingConsistency:  timingConsistency,
		AmountCV:           amountCV,
		FirstDate:          txs[0].Date,
		LastDate:           txs[len(txs)-1].Date,
		TransactionIDs:     ids,
	}
	if next, ok := nextExpectedDate(pattern.LastDate, period); ok {
		pattern.NextExpected = &next
	}
	if timingConsistency >= opts.MinConsistency && len(txs) >= opts.MinConfirmOccurrences {
		pattern.Status = PatternConfirmed
	} else {
		pattern.Status = PatternUnconfirmed
	}
	return pattern
}

// classifyPeriod picks the modal gap bucket and reports the fraction of gaps
// that land in it. All-unknown gap sets classify as unknown with zero
// consistency.
func classifyPeriod(gaps []float64) (Period, float64) {
	if len(gaps) == 0 {
		return PeriodUnknown, 0
	}
	counts := make(map[Period]int)
	for _, g := range gaps {
		counts[ClassifyGap(g)]++
	}
	best := PeriodUnknown
	bestCount := 0
	for _, w := range periodWindows {
		if counts[w.period] > bestCount {
			best = w.period
			bestCount = counts[w.period]
		}
	}
	if best == PeriodUnknown {
		return PeriodUnknown, 0
	}
	return best, float64(bestCount) / float64(len(gaps))
}

func nextExpectedDate(last time.Time, period Period) (time.Time, bool) {
	switch period {
	case PeriodWeekly:
		return last.AddDate(0, 0, 7), true
	case PeriodBiweekly:
		return last.AddDate(0, 0, 14), true
	case PeriodMonthly:
		return last.AddDate(0, 1, 0), true
	case PeriodQuarterly:
		return last.AddDate(0, 3, 0), true
	case PeriodAnnual:
		return last.AddDate(1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// DuplicateCharge marks a later transaction as an apparent duplicate of an
// earlier one.
type DuplicateCharge struct {
	TransactionID int64
	DuplicateOf   int64
	Merchant      string
	Amount        float64
}

// DetectDuplicateCharges flags same-day, same-category, fuzzy-matched-merchant
// charges with near-identical amounts. The later transaction (by time, then
// ID) is the duplicate; the earlier one is its original.
func DetectDuplicateCharges(txs []model.Transaction, opts RecurringOptions) []DuplicateCharge {
	opts = opts.normalized()

	expenses := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == model.TransactionExpense {
			expenses = append(expenses, tx)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.Before(expenses[j].Date)
		}
		return expenses[i].ID < expenses[j].ID
	})

	var duplicates []DuplicateCharge
	flagged := make(map[int64]bool)
	for i := 0; i < len(expenses); i++ {
		for j := i + 1; j < len(expenses); j++ {
			later := expenses[j]
			if flagged[later.ID] {
				continue
			}
			earlier := expenses[i]
			if !stats.SameCalendarDay(earlier.Date, later.Date) {
				break // date-ordered: nothing further on this day
			}
			if earlier.Category != later.Category {
				continue
			}
			if !amountsNearEqual(math.Abs(earlier.Amount), math.Abs(later.Amount), opts.AmountTolerance) {
				continue
			}
			if !stats.IsSimilarMerchant(earlier.Description, later.Description, opts.MaxMerchantDistance) {
				continue
			}
			flagged[later.ID] = true
			duplicates = append(duplicates, DuplicateCharge{
				TransactionID: later.ID,
				DuplicateOf:   earlier.ID,
				Merchant:      later.Description,
				Amount:        math.Abs(later.Amount),
			})
		}
	}
	return duplicates
}

func amountsNearEqual(a, b, tolerance float64) bool {
	larger := math.Max(math.Abs(a), math.Abs(b))
	if larger == 0 {
		return true
	}
	return math.Abs(a-b)/larger <= tolerance
}

// monthlyFactor converts one occurrence at the given period into a monthly
// equivalent count.
func monthlyFactor(period Period) float64 {
	switch period {
	case PeriodWeekly:
		return 52.0 / 12
	case PeriodBiweekly:
		return 26.0 / 12
	case PeriodMonthly:
		return 1
	case PeriodQuarterly:
		return 1.0 / 3
	case PeriodAnnual:
		return 1.0 / 12
	default:
		return 0
	}
}

// RecurringTotal is the monthly and annual commitment implied by confirmed
// patterns.
type RecurringTotal struct {
	Monthly float64
	Annual  float64
}

// CalculateRecurringTotal sums confirmed patterns' average amounts normalized
// to a monthly figure; the annual figure is twelve times that.
func CalculateRecurringTotal(patterns []RecurringPattern) RecurringTotal {
	var monthly float64
	for _, p := range patterns {
		if p.Status != PatternConfirmed {
			continue
		}
		monthly += p.AverageAmount * monthlyFactor(p.Period)
	}
	monthly = stats.RoundToCent(monthly)
	return RecurringTotal{Monthly: monthly, Annual: stats.RoundToCent(monthly * 12)}
}
