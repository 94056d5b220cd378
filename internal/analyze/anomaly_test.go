package analyze

import (
	"testing"
	"time"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZScoreToAnomalyScore(t *testing.T) {
	assert.Equal(t, 100.0, ZScoreToAnomalyScore(3, 3))
	assert.Equal(t, 100.0, ZScoreToAnomalyScore(12.4, 3))
	assert.Equal(t, 50.0, ZScoreToAnomalyScore(1.5, 3))
	assert.Equal(t, 0.0, ZScoreToAnomalyScore(0, 3))
	// Negative z-scores clamp to zero, they are not folded by magnitude.
	assert.Equal(t, 0.0, ZScoreToAnomalyScore(-2, 3))
	assert.Equal(t, 0.0, ZScoreToAnomalyScore(-5, 3))
	// Zero threshold falls back to 3.
	assert.Equal(t, 100.0, ZScoreToAnomalyScore(3, 0))
}

// groceryHistory is ~3 months of ordinary grocery spend in the $50-$150 band.
func groceryHistory() []model.Transaction {
	amounts := []float64{52, 60, 75, 80, 95, 110, 120, 130, 140, 65, 85, 100}
	txs := make([]model.Transaction, 0, len(amounts))
	for i, amount := range amounts {
		txs = append(txs, tx(day(2024, time.January, 2).AddDate(0, 0, i*7), "Whole Foods", "groceries", amount))
	}
	return txs
}

func TestDetectAnomalyExtremeOutlier(t *testing.T) {
	history := groceryHistory()
	candidate := tx(day(2024, time.March, 25), "Whole Foods", "groceries", 450)

	result := DetectAnomaly(candidate, history, AnomalyOptions{})

	assert.Equal(t, ReasonAmountExtreme, result.Reason)
	assert.Equal(t, ActionReview, result.Action)
	assert.Greater(t, result.Score, 70.0)
	require.NotNil(t, result.ZScore)
	assert.Greater(t, *result.ZScore, 3.0)
	require.NotNil(t, result.ExpectedAmount)
	assert.InDelta(t, 92.67, *result.ExpectedAmount, 0.01)
	assert.NotEmpty(t, result.ID)
}

func TestDetectAnomalyEmptyHistory(t *testing.T) {
	candidate := tx(day(2024, time.March, 25), "Whole Foods", "groceries", 450)

	result := DetectAnomaly(candidate, nil, AnomalyOptions{})

	assert.Equal(t, ReasonInsufficientHistory, result.Reason)
	assert.Equal(t, ActionNone, result.Action)
	assert.Zero(t, result.Score)
	assert.Nil(t, result.ZScore)
}

func TestDetectAnomalyHistoryWindowAndCategoryFilter(t *testing.T) {
	// Plenty of history, but all outside the 90-day window or in another
	// category: rule 1 applies.
	history := []model.Transaction{
		tx(day(2023, time.June, 1), "Whole Foods", "groceries", 80),
		tx(day(2023, time.June, 8), "Whole Foods", "groceries", 90),
		tx(day(2023, time.June, 15), "Whole Foods", "groceries", 100),
		tx(day(2024, time.March, 1), "Chevron", "gas", 60),
		tx(day(2024, time.March, 8), "Chevron", "gas", 55),
		tx(day(2024, time.March, 15), "Chevron", "gas", 58),
	}
	candidate := tx(day(2024, time.March, 25), "Whole Foods", "groceries", 450)

	result := DetectAnomaly(candidate, history, AnomalyOptions{})
	assert.Equal(t, ReasonInsufficientHistory, result.Reason)
}

func TestDetectAnomalyDuplicate(t *testing.T) {
	history := groceryHistory()
	original := tx(day(2024, time.March, 25), "Chipotle #204", "dining", 18.45)
	older := []model.Transaction{
		tx(day(2024, time.March, 5), "Chipotle #204", "dining", 17.10),
		tx(day(2024, time.March, 12), "Chipotle #204", "dining", 19.80),
		tx(day(2024, time.March, 19), "Chipotle #204", "dining", 16.95),
	}
	candidate := tx(day(2024, time.March, 25), "CHIPOTLE 204", "dining", 18.45)

	all := append(append(history, older...), original)
	result := DetectAnomaly(candidate, all, AnomalyOptions{})

	assert.Equal(t, ReasonDuplicateDetected, result.Reason)
	assert.Equal(t, ActionReview, result.Action)
	assert.Equal(t, duplicateScore, result.Score)
	require.NotNil(t, result.DuplicateOf)
	assert.Equal(t, original.ID, *result.DuplicateOf)
}

func TestDetectAnomalySameDayDifferentAmountNotDuplicate(t *testing.T) {
	history := groceryHistory()
	sameDay := tx(day(2024, time.March, 25), "Whole Foods", "groceries", 95)
	candidate := tx(day(2024, time.March, 25), "Whole Foods", "groceries", 119)

	result := DetectAnomaly(candidate, append(history, sameDay), AnomalyOptions{})
	assert.Equal(t, ReasonNormal, result.Reason)
	assert.Equal(t, ActionNone, result.Action)
}

func TestDetectAnomalyNewMerchantWithoutUsableSpread(t *testing.T) {
	// Constant history amounts: no usable z-score, merchant novelty decides.
	history := []model.Transaction{
		tx(day(2024, time.March, 1), "Safeway", "groceries", 100),
		tx(day(2024, time.March, 8), "Safeway", "groceries", 100),
		tx(day(2024, time.March, 15), "Safeway", "groceries", 100),
	}

	high := DetectAnomaly(tx(day(2024, time.March, 25), "New Bistro", "groceries", 200), history, AnomalyOptions{})
	assert.Equal(t, ReasonNewMerchant, high.Reason)
	assert.Equal(t, ActionFlag, high.Action)
	assert.Equal(t, newMerchantHighScore, high.Score)

	quiet := DetectAnomaly(tx(day(2024, time.March, 25), "New Bistro", "groceries", 120), history, AnomalyOptions{})
	assert.Equal(t, ReasonNewMerchant, quiet.Reason)
	assert.Equal(t, ActionNone, quiet.Action)
	assert.Equal(t, newMerchantQuietScore, quiet.Score)

	known := DetectAnomaly(tx(day(2024, time.March, 25), "SAFEWAY 1123", "groceries", 100), history, AnomalyOptions{})
	assert.Equal(t, ReasonNormal, known.Reason)
}

func TestDetectAnomalyNewMerchantInRangeAmount(t *testing.T) {
	history := []model.Transaction{
		tx(day(2024, time.March, 1), "Safeway", "groceries", 80),
		tx(day(2024, time.March, 8), "Safeway", "groceries", 100),
		tx(day(2024, time.March, 15), "Safeway", "groceries", 120),
	}
	candidate := tx(day(2024, time.March, 25), "New Bistro", "groceries", 100)

	result := DetectAnomaly(candidate, history, AnomalyOptions{})
	assert.Equal(t, ReasonNewMerchant, result.Reason)
	assert.Equal(t, ActionNone, result.Action)
	assert.Equal(t, newMerchantInRangeScore, result.Score)
}

func TestDetectAnomalyOutlierBand(t *testing.T) {
	history := groceryHistory()
	// Roughly 2.5 standard deviations above the historical mean.
	candidate := tx(day(2024, time.March, 25), "Whole Foods", "groceries", 92.67+2.5*28.2)

	result := DetectAnomaly(candidate, history, AnomalyOptions{})
	assert.Equal(t, ReasonAmountOutlier, result.Reason)
	require.NotNil(t, result.ZScore)
	assert.GreaterOrEqual(t, *result.ZScore, 2.0)
	assert.Less(t, *result.ZScore, 3.0)
	// Score in the 80s escalates to review.
	assert.Equal(t, ActionReview, result.Action)
}

func TestDetectAnomaliesInBatch(t *testing.T) {
	txs := groceryHistory()
	txs = append(txs, tx(day(2024, time.March, 25), "Whole Foods", "groceries", 450))

	summary := DetectAnomaliesInBatch(txs, AnomalyOptions{})

	assert.Len(t, summary.Results, len(txs))
	assert.Equal(t, 1, summary.CountByReason[ReasonAmountExtreme])
	assert.Equal(t, "groceries", summary.TopCategory)
	// The $450 charge is flagged; early transactions with thin trailing
	// windows may contribute more.
	assert.GreaterOrEqual(t, summary.TotalAnomalousAmount, 450.0)
	assert.GreaterOrEqual(t, summary.CountByAction[ActionReview], 1)
	assert.GreaterOrEqual(t, summary.CountByReason[ReasonInsufficientHistory], 3)
}
