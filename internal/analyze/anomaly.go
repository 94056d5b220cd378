package analyze

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// AnomalyReason names why a transaction was (or was not) flagged.
type AnomalyReason string

const (
	ReasonInsufficientHistory AnomalyReason = "insufficient_history"
	ReasonDuplicateDetected   AnomalyReason = "duplicate_detected"
	ReasonAmountExtreme       AnomalyReason = "amount_extreme_outlier"
	ReasonAmountOutlier       AnomalyReason = "amount_outlier"
	ReasonNewMerchant         AnomalyReason = "new_merchant"
	ReasonNormal              AnomalyReason = "normal"
)

// AnomalyAction is the recommended handling for a flagged transaction.
type AnomalyAction string

const (
	ActionNone   AnomalyAction = "none"
	ActionFlag   AnomalyAction = "flag_in_ui"
	ActionReview AnomalyAction = "review"
)

// AnomalyOptions configures detection thresholds. Zero values mean defaults.
type AnomalyOptions struct {
	LookbackDays        int     // default 90
	OutlierZ            float64 // default 2
	ExtremeZ            float64 // default 3
	ReviewScore         float64 // default 70
	FlagScore           float64 // default 40
	MaxMerchantDistance int     // default 2
	AmountTolerance     float64 // duplicate near-match, default 0.01
}

func (o AnomalyOptions) normalized() AnomalyOptions {
	if o.LookbackDays <= 0 {
		o.LookbackDays = 90
	}
	if o.OutlierZ <= 0 {
		o.OutlierZ = 2
	}
	if o.ExtremeZ <= 0 {
		o.ExtremeZ = 3
	}
	if o.ReviewScore <= 0 {
		o.ReviewScore = 70
	}
	if o.FlagScore <= 0 {
		o.FlagScore = 40
	}
	if o.MaxMerchantDistance <= 0 {
		o.MaxMerchantDistance = stats.DefaultMerchantDistance
	}
	if o.AmountTolerance <= 0 {
		o.AmountTolerance = 0.01
	}
	return o
}

// New-merchant scores: a new merchant with an unusually large amount is
// flagged; an in-range one is only noted.
const (
	newMerchantHighScore    = 45.0
	newMerchantQuietScore   = 30.0
	newMerchantInRangeScore = 25.0
	duplicateScore          = 95.0
	newMerchantAmountFactor = 1.5
)

// AnomalyResult is the per-transaction outcome of the detector.
type AnomalyResult struct {
	ID             string // report id, freshly assigned per call
	TransactionID  int64
	Reason         AnomalyReason
	Action         AnomalyAction
	Score          float64
	ZScore         *float64
	ExpectedAmount *float64
	DuplicateOf    *int64
}

// ZScoreToAnomalyScore maps a z-score linearly onto 0-100 against the extreme
// threshold: z at or beyond the threshold saturates at 100. Negative inputs
// clamp to 0 rather than being folded by magnitude; callers pass the signed
// z-score and the asymmetry is intentional (an unusually *small* charge does
// not raise the score). extremeThreshold <= 0 means 3.
func ZScoreToAnomalyScore(z, extremeThreshold float64) float64 {
	if extremeThreshold <= 0 {
		extremeThreshold = 3
	}
	return stats.Clamp(z/extremeThreshold*100, 0, 100)
}

// DetectAnomaly evaluates one transaction against its category history. The
// history is filtered to same-category expenses within the lookback window
// ending at the transaction's date, excluding the transaction itself. Rules
// run in strict priority order with early return:
//
//  1. fewer than 3 history points        -> insufficient_history / none
//  2. same-day fuzzy duplicate           -> duplicate_detected / review
//  3. z-score extreme (|z| >= extremeZ)  -> amount_extreme_outlier / review
//  4. z-score outlier (|z| >= outlierZ)  -> amount_outlier / review or flag
//  5. merchant never seen in history     -> new_merchant / flag or none
//  6. otherwise                          -> normal / none
func DetectAnomaly(tx model.Transaction, history []model.Transaction, opts AnomalyOptions) AnomalyResult {
	opts = opts.normalized()
	result := AnomalyResult{ID: uuid.NewString(), TransactionID: tx.ID}

	hist := filterHistory(tx, history, opts)

	// Rule 1: not enough history for any statistical statement.
	if len(hist) < 3 {
		result.Reason = ReasonInsufficientHistory
		result.Action = ActionNone
		return result
	}

	// Rule 2: duplicate short-circuits everything else.
	if original, ok := findDuplicateOf(tx, hist, opts); ok {
		result.Reason = ReasonDuplicateDetected
		result.Action = ActionReview
		result.Score = duplicateScore
		result.DuplicateOf = &original
		return result
	}

	amount := math.Abs(tx.Amount)
	amounts := make([]float64, len(hist))
	for i, h := range hist {
		amounts[i] = math.Abs(h.Amount)
	}
	mean := stats.Mean(amounts)
	result.ExpectedAmount = &mean

	if !stats.ZScoreUsable(amounts) {
		// Rules 5-6 without a usable z-score: the only remaining signal is
		// merchant novelty relative to the average.
		if isNewMerchant(tx, hist, opts) {
			result.Reason = ReasonNewMerchant
			if amount > newMerchantAmountFactor*mean {
				result.Score = newMerchantHighScore
				result.Action = ActionFlag
			} else {
				result.Score = newMerchantQuietScore
				result.Action = ActionNone
			}
			return result
		}
		result.Reason = ReasonNormal
		result.Action = ActionNone
		return result
	}

	z := stats.ZScore(amount, mean, stats.StandardDeviation(amounts))
	result.ZScore = &z
	result.Score = ZScoreToAnomalyScore(z, opts.ExtremeZ)

	// Rule 3: extreme outlier.
	if math.Abs(z) >= opts.ExtremeZ {
		result.Reason = ReasonAmountExtreme
		result.Action = ActionReview
		return result
	}
	// Rule 4: outlier; escalation depends on the score.
	if math.Abs(z) >= opts.OutlierZ {
		result.Reason = ReasonAmountOutlier
		if result.Score >= opts.ReviewScore {
			result.Action = ActionReview
		} else {
			result.Action = ActionFlag
		}
		return result
	}
	// Rule 5: new merchant with an in-range amount.
	if isNewMerchant(tx, hist, opts) {
		result.Reason = ReasonNewMerchant
		result.Score = newMerchantInRangeScore
		result.Action = ActionNone
		return result
	}
	// Rule 6: nothing unusual.
	result.Reason = ReasonNormal
	result.Action = ActionNone
	result.Score = 0
	return result
}

func filterHistory(tx model.Transaction, history []model.Transaction, opts AnomalyOptions) []model.Transaction {
	windowStart := tx.Date.AddDate(0, 0, -opts.LookbackDays)
	var hist []model.Transaction
	for _, h := range history {
		if h.ID == tx.ID || h.Type != model.TransactionExpense || h.Category != tx.Category {
			continue
		}
		if h.Date.Before(windowStart) || h.Date.After(tx.Date) {
			continue
		}
		hist = append(hist, h)
	}
	return hist
}

func findDuplicateOf(tx model.Transaction, hist []model.Transaction, opts AnomalyOptions) (int64, bool) {
	var original model.Transaction
	found := false
	for _, h := range hist {
		if !stats.SameCalendarDay(h.Date, tx.Date) {
			continue
		}
		if !amountsNearEqual(math.Abs(h.Amount), math.Abs(tx.Amount), opts.AmountTolerance) {
			continue
		}
		if !stats.IsSimilarMerchant(h.Description, tx.Description, opts.MaxMerchantDistance) {
			continue
		}
		// Point at the earliest matching original.
		if !found || h.Date.Before(original.Date) || (h.Date.Equal(original.Date) && h.ID < original.ID) {
			original = h
			found = true
		}
	}
	return original.ID, found
}

func isNewMerchant(tx model.Transaction, hist []model.Transaction, opts AnomalyOptions) bool {
	for _, h := range hist {
		if stats.IsSimilarMerchant(h.Description, tx.Description, opts.MaxMerchantDistance) {
			return false
		}
	}
	return true
}

// AnomalyBatchSummary aggregates a batch run: per-id results plus counts by
// action and reason, total anomalous spend and the category producing the
// most anomalies.
type AnomalyBatchSummary struct {
	Results              map[int64]AnomalyResult
	CountByAction        map[AnomalyAction]int
	CountByReason        map[AnomalyReason]int
	TotalAnomalousAmount float64
	TopCategory          string
}

// DetectAnomaliesInBatch runs the detector over every expense transaction,
// using the rest of the set as candidate history for each.
func DetectAnomaliesInBatch(txs []model.Transaction, opts AnomalyOptions) AnomalyBatchSummary {
	summary := AnomalyBatchSummary{
		Results:       make(map[int64]AnomalyResult),
		CountByAction: make(map[AnomalyAction]int),
		CountByReason: make(map[AnomalyReason]int),
	}
	anomaliesByCategory := make(map[string]int)

	for _, tx := range txs {
		if tx.Type != model.TransactionExpense {
			continue
		}
		result := DetectAnomaly(tx, txs, opts)
		summary.Results[tx.ID] = result
		summary.CountByAction[result.Action]++
		summary.CountByReason[result.Reason]++
		if result.Action != ActionNone {
			summary.TotalAnomalousAmount += math.Abs(tx.Amount)
			anomaliesByCategory[tx.Category]++
		}
	}
	summary.TotalAnomalousAmount = stats.RoundToCent(summary.TotalAnomalousAmount)

	categories := make([]string, 0, len(anomaliesByCategory))
	for category := range anomaliesByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	topCount := 0
	for _, category := range categories {
		if anomaliesByCategory[category] > topCount {
			topCount = anomaliesByCategory[category]
			summary.TopCategory = category
		}
	}
	return summary
}
