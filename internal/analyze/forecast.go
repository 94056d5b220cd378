package analyze

import (
	"fmt"
	"math"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// Smoothing defaults. Callers override per call via ForecastOptions.
const (
	DefaultAlpha        = 0.3
	DefaultBeta         = 0.1
	DefaultGamma        = 0.2
	DefaultSeasonLength = 12

	// confidenceZ multiplies the residual stddev for the 95% interval.
	confidenceZ = 1.96
)

// ForecastResult is a one-step-ahead forecast with a 95% confidence interval
// derived from smoothing residuals.
type ForecastResult struct {
	Forecast   float64
	Lower      float64
	Upper      float64
	Confidence model.Confidence
	ResidualCV *float64
	Method     string
}

// SimpleExponentialSmoothing forecasts the next value of a series with a
// single level parameter. Series shorter than three points fall back to the
// plain mean with insufficient confidence. alpha must be in (0, 1].
func SimpleExponentialSmoothing(xs []float64, alpha float64) (ForecastResult, error) {
	if err := validateParam("alpha", alpha); err != nil {
		return ForecastResult{}, err
	}
	if len(xs) < 3 {
		return meanFallback(xs), nil
	}

	level := xs[0]
	residuals := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		residuals = append(residuals, xs[i]-level) // one-step-ahead error
		level = alpha*xs[i] + (1-alpha)*level
	}
	return finishForecast(level, residuals, xs, "ses"), nil
}

// DoubleExponentialSmoothing (Holt's linear method) adds a trend parameter.
// The forecast is level+trend, clamped at zero: expenses never forecast
// negative. alpha and beta must be in (0, 1].
func DoubleExponentialSmoothing(xs []float64, alpha, beta float64) (ForecastResult, error) {
	if err := validateParam("alpha", alpha); err != nil {
		return ForecastResult{}, err
	}
	if err := validateParam("beta", beta); err != nil {
		return ForecastResult{}, err
	}
	if len(xs) < 3 {
		return meanFallback(xs), nil
	}

	level := xs[0]
	trend := xs[1] - xs[0]
	residuals := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		residuals = append(residuals, xs[i]-(level+trend))
		prevLevel := level
		level = alpha*xs[i] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}
	forecast := math.Max(0, level+trend)
	return finishForecast(forecast, residuals, xs, "holt"), nil
}

// TripleExponentialSmoothing (additive Holt-Winters) adds a seasonal
// parameter for series with at least one full season plus three points of
// history. seasonLength <= 0 means twelve months.
func TripleExponentialSmoothing(xs []float64, alpha, beta, gamma float64, seasonLength int) (ForecastResult, error) {
	if err := validateParam("alpha", alpha); err != nil {
		return ForecastResult{}, err
	}
	if err := validateParam("beta", beta); err != nil {
		return ForecastResult{}, err
	}
	if err := validateParam("gamma", gamma); err != nil {
		return ForecastResult{}, err
	}
	if seasonLength <= 0 {
		seasonLength = DefaultSeasonLength
	}
	if len(xs) < seasonLength+3 {
		// Not enough history to estimate seasonal indices.
		return DoubleExponentialSmoothing(xs, alpha, beta)
	}

	m := seasonLength
	level := stats.Mean(xs[:m])
	seasonal := make([]float64, m)
	for i := 0; i < m; i++ {
		seasonal[i] = xs[i] - level
	}
	trend := 0.0
	if len(xs) >= 2*m {
		trend = (stats.Mean(xs[m:2*m]) - level) / float64(m)
	}

	residuals := make([]float64, 0, len(xs)-m)
	for i := m; i < len(xs); i++ {
		idx := i % m
		residuals = append(residuals, xs[i]-(level+trend+seasonal[idx]))
		prevLevel := level
		level = alpha*(xs[i]-seasonal[idx]) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		seasonal[idx] = gamma*(xs[i]-level) + (1-gamma)*seasonal[idx]
	}
	forecast := math.Max(0, level+trend+seasonal[len(xs)%m])
	return finishForecast(forecast, residuals, xs, "holt-winters"), nil
}

func validateParam(name string, v float64) error {
	if v <= 0 || v > 1 {
		return fmt.Errorf("smoothing parameter %s must be in (0, 1], got %v", name, v)
	}
	return nil
}

func meanFallback(xs []float64) ForecastResult {
	return ForecastResult{
		Forecast:   stats.Mean(xs),
		Lower:      stats.Mean(xs),
		Upper:      stats.Mean(xs),
		Confidence: model.ConfidenceInsufficient,
		Method:     "mean",
	}
}

// finishForecast widens the interval with the residual spread and grades
// confidence from the residual CV: wider residuals always mean a wider
// interval and a weaker grade.
func finishForecast(forecast float64, residuals, xs []float64, method string) ForecastResult {
	result := ForecastResult{Forecast: forecast, Method: method}
	residualStd := stats.StandardDeviation(residuals)
	result.Lower = math.Max(0, forecast-confidenceZ*residualStd)
	result.Upper = forecast + confidenceZ*residualStd

	seriesMean := stats.Mean(xs)
	if len(residuals) >= 2 && seriesMean != 0 {
		cv := residualStd / math.Abs(seriesMean)
		result.ResidualCV = &cv
		switch {
		case cv < 0.2:
			result.Confidence = model.ConfidenceHigh
		case cv < 0.4:
			result.Confidence = model.ConfidenceMedium
		default:
			result.Confidence = model.ConfidenceLow
		}
	} else {
		result.Confidence = model.ConfidenceInsufficient
	}
	return result
}

// BlendWithOverride mixes a model forecast with a user-supplied figure.
// userWeight is clamped to [0, 1]; 1 means trust the user entirely.
func BlendWithOverride(modelForecast, userForecast, userWeight float64) float64 {
	w := stats.Clamp(userWeight, 0, 1)
	return w*userForecast + (1-w)*modelForecast
}

// ForecastOptions configures the category and total-expense forecasts.
// Zero values mean defaults; Method is chosen from history length when empty.
type ForecastOptions struct {
	Alpha        float64
	Beta         float64
	Gamma        float64
	SeasonLength int
	UserOverride *float64
	UserWeight   float64
}

func (o ForecastOptions) normalized() ForecastOptions {
	if o.Alpha == 0 {
		o.Alpha = DefaultAlpha
	}
	if o.Beta == 0 {
		o.Beta = DefaultBeta
	}
	if o.Gamma == 0 {
		o.Gamma = DefaultGamma
	}
	if o.SeasonLength <= 0 {
		o.SeasonLength = DefaultSeasonLength
	}
	return o
}

// ForecastCategory forecasts next month's spend for one category. Histories
// of a full season or more use Holt-Winters, shorter ones Holt's method, and
// the mean fallback covers the rest.
func ForecastCategory(txs []model.Transaction, category string, opts ForecastOptions) (ForecastResult, error) {
	months := stats.MonthlyCategoryExpenses(txs, category)
	values := make([]float64, len(months))
	for i, m := range months {
		values[i] = m.Total
	}
	return forecastSeries(values, opts)
}

// ForecastTotalExpenses forecasts next month's total expenses across all
// categories.
func ForecastTotalExpenses(txs []model.Transaction, opts ForecastOptions) (ForecastResult, error) {
	series := stats.MonthlySeries(txs)
	values := make([]float64, len(series))
	for i, m := range series {
		values[i] = m.Expenses
	}
	return forecastSeries(values, opts)
}

func forecastSeries(values []float64, opts ForecastOptions) (ForecastResult, error) {
	opts = opts.normalized()
	var result ForecastResult
	var err error
	if len(values) >= opts.SeasonLength+3 {
		result, err = TripleExponentialSmoothing(values, opts.Alpha, opts.Beta, opts.Gamma, opts.SeasonLength)
	} else {
		result, err = DoubleExponentialSmoothing(values, opts.Alpha, opts.Beta)
	}
	if err != nil {
		return ForecastResult{}, err
	}
	if opts.UserOverride != nil {
		blended := BlendWithOverride(result.Forecast, *opts.UserOverride, opts.UserWeight)
		shift := blended - result.Forecast
		result.Forecast = blended
		result.Lower = math.Max(0, result.Lower+shift)
		result.Upper += shift
	}
	return result, nil
}
