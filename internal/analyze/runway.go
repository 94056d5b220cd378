package analyze

import (
	"math"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// RunwayStatus bands remaining runway in months.
type RunwayStatus string

const (
	RunwayCritical    RunwayStatus = "critical"
	RunwayCaution     RunwayStatus = "caution"
	RunwayAdequate    RunwayStatus = "adequate"
	RunwayComfortable RunwayStatus = "comfortable"
)

// Runway status bands in months.
const (
	runwayCriticalMax = 3.0
	runwayCautionMax  = 6.0
	runwayAdequateMax = 12.0
)

// BurnTrend classifies how net burn is moving across the lookback window.
type BurnTrend string

const (
	BurnAccelerating BurnTrend = "accelerating"
	BurnImproving    BurnTrend = "improving"
	BurnStable       BurnTrend = "stable"
)

// RunwayOptions configures the calculation. Zero values mean defaults.
type RunwayOptions struct {
	LookbackMonths   int     // default 6
	IncomeLossFactor float64 // conservative scenario, default 0.20
	ExpenseCutFactor float64 // best-case scenario, default 0.10
}

func (o RunwayOptions) normalized() RunwayOptions {
	if o.LookbackMonths <= 0 {
		o.LookbackMonths = 6
	}
	if o.IncomeLossFactor <= 0 {
		o.IncomeLossFactor = 0.20
	}
	if o.ExpenseCutFactor <= 0 {
		o.ExpenseCutFactor = 0.10
	}
	return o
}

// RunwayScenario is one independently-perturbed runway projection.
type RunwayScenario struct {
	Name         string
	NetBurnRate  float64
	RunwayMonths *float64 // nil means running at a surplus
	Status       RunwayStatus
}

// RunwayResult reports burn rates and how long cash on hand lasts.
type RunwayResult struct {
	GrossBurnRate  float64 // average monthly expenses
	NetBurnRate    float64 // expenses minus income; negative means surplus
	RunwayMonths   *float64
	Status         RunwayStatus
	Scenarios      []RunwayScenario
	Trend          BurnTrend
	MonthsAnalyzed int
}

// CalculateRunway computes burn rates over the lookback window and models
// three scenarios: base (actual rates), conservative (income reduced by the
// loss factor) and best (expenses reduced by the cut factor). Each scenario
// is an independently scaled input to the same runway formula.
func CalculateRunway(txs []model.Transaction, cashOnHand float64, opts RunwayOptions) RunwayResult {
	opts = opts.normalized()
	series := stats.MonthlySeries(txs)
	if len(series) > opts.LookbackMonths {
		series = series[len(series)-opts.LookbackMonths:]
	}

	var avgIncome, avgExpenses float64
	burns := make([]float64, len(series))
	for i, m := range series {
		avgIncome += m.Income
		avgExpenses += m.Expenses
		burns[i] = m.Expenses - m.Income
	}
	if len(series) > 0 {
		avgIncome /= float64(len(series))
		avgExpenses /= float64(len(series))
	}

	base := runwayScenario("base", cashOnHand, avgIncome, avgExpenses)
	result := RunwayResult{
		GrossBurnRate:  stats.RoundToCent(avgExpenses),
		NetBurnRate:    base.NetBurnRate,
		RunwayMonths:   base.RunwayMonths,
		Status:         base.Status,
		MonthsAnalyzed: len(series),
		Trend:          burnTrend(burns),
		Scenarios: []RunwayScenario{
			base,
			runwayScenario("conservative", cashOnHand, avgIncome*(1-opts.IncomeLossFactor), avgExpenses),
			runwayScenario("best", cashOnHand, avgIncome, avgExpenses*(1-opts.ExpenseCutFactor)),
		},
	}
	return result
}

func runwayScenario(name string, cashOnHand, monthlyIncome, monthlyExpenses float64) RunwayScenario {
	scenario := RunwayScenario{
		Name:        name,
		NetBurnRate: stats.RoundToCent(monthlyExpenses - monthlyIncome),
	}
	if cashOnHand <= 0 {
		scenario.Status = RunwayCritical
		if scenario.NetBurnRate > 0 {
			zero := 0.0
			scenario.RunwayMonths = &zero
		}
		return scenario
	}
	if scenario.NetBurnRate <= 0 {
		// Surplus: runway is undefined, and that is the comfortable case.
		scenario.Status = RunwayComfortable
		return scenario
	}
	months := cashOnHand / scenario.NetBurnRate
	scenario.RunwayMonths = &months
	switch {
	case months < runwayCriticalMax:
		scenario.Status = RunwayCritical
	case months < runwayCautionMax:
		scenario.Status = RunwayCaution
	case months < runwayAdequateMax:
		scenario.Status = RunwayAdequate
	default:
		scenario.Status = RunwayComfortable
	}
	return scenario
}

// burnTrend compares average net burn between the first and second half of
// the window. More than +10% is accelerating, less than −10% improving.
func burnTrend(burns []float64) BurnTrend {
	if len(burns) < 2 {
		return BurnStable
	}
	first := stats.Mean(burns[:len(burns)/2])
	second := stats.Mean(burns[len(burns)/2:])
	if first == 0 {
		if second == 0 {
			return BurnStable
		}
		if second > 0 {
			return BurnAccelerating
		}
		return BurnImproving
	}
	// Change relative to the magnitude of the first half, so a swing from
	// surplus into burn always reads as accelerating.
	change := (second - first) / math.Abs(first) * 100
	switch {
	case change > 10:
		return BurnAccelerating
	case change < -10:
		return BurnImproving
	default:
		return BurnStable
	}
}
