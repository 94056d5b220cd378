package analyze

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/castlemilk/ledgerlens/internal/stats"
)

// DefaultSimulationPaths is the number of independent paths per run.
const DefaultSimulationPaths = 1000

// SimulationDisclaimer accompanies every simulation result.
const SimulationDisclaimer = "Simulated projections are hypothetical illustrations, not financial advice, and do not predict actual investment performance."

// SimulationParams configures an investment projection. Returns are annual
// fractions (0.07 for 7%).
type SimulationParams struct {
	InitialAmount       float64
	MonthlyContribution float64
	Months              int
	AnnualReturnMean    float64
	AnnualReturnStdDev  float64
	Paths               int      // default 1000
	GoalAmount          *float64 // optional target for the probability estimate
}

// SimulationResult summarizes the final-value distribution across paths.
type SimulationResult struct {
	Mean            float64
	StdDev          float64
	Percentiles     map[int]float64 // 10, 25, 50, 75, 90
	CILow           float64         // 10th percentile
	CIHigh          float64         // 90th percentile
	GoalProbability *float64        // nil when no goal was given
	Paths           int
	Disclaimer      string
}

// SimulateInvestment runs independent lognormal-return paths of monthly
// compounding, each applying the same contribution schedule. Paths share no
// state. Passing a seeded rng makes the run exactly reproducible; a nil rng
// gets a time-seeded source.
func SimulateInvestment(params SimulationParams, rng *rand.Rand) (SimulationResult, error) {
	if params.Months <= 0 {
		return SimulationResult{}, fmt.Errorf("simulation horizon must be positive, got %d months", params.Months)
	}
	if params.AnnualReturnStdDev < 0 {
		return SimulationResult{}, fmt.Errorf("return stddev must be non-negative, got %v", params.AnnualReturnStdDev)
	}
	paths := params.Paths
	if paths <= 0 {
		paths = DefaultSimulationPaths
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// Lognormal monthly growth: factor = exp(mu + sigma·Z) with mu chosen so
	// the expected annual growth matches the arithmetic mean assumption.
	sigma := params.AnnualReturnStdDev / math.Sqrt(12)
	mu := math.Log(1+params.AnnualReturnMean)/12 - sigma*sigma/2

	finals := make([]float64, paths)
	for p := 0; p < paths; p++ {
		value := params.InitialAmount
		for m := 0; m < params.Months; m++ {
			growth := math.Exp(mu + sigma*rng.NormFloat64())
			value = value*growth + params.MonthlyContribution
		}
		finals[p] = value
	}

	result := SimulationResult{
		Mean:        stats.RoundToCent(stats.Mean(finals)),
		StdDev:      stats.RoundToCent(stats.StandardDeviation(finals)),
		Percentiles: make(map[int]float64, 5),
		Paths:       paths,
		Disclaimer:  SimulationDisclaimer,
	}
	sort.Float64s(finals)
	for _, p := range []int{10, 25, 50, 75, 90} {
		result.Percentiles[p] = stats.RoundToCent(stats.Percentile(finals, float64(p)))
	}
	result.CILow = result.Percentiles[10]
	result.CIHigh = result.Percentiles[90]

	if params.GoalAmount != nil {
		reached := 0
		for _, v := range finals {
			if v >= *params.GoalAmount {
				reached++
			}
		}
		probability := float64(reached) / float64(paths)
		result.GoalProbability = &probability
	}
	return result, nil
}

// ScenarioOutcome pairs a labelled parameter set with its simulation result.
type ScenarioOutcome struct {
	Name   string
	Result SimulationResult
}

// CompareScenarios simulates several parameter sets with one shared rng so a
// seeded comparison is reproducible end to end.
func CompareScenarios(scenarios map[string]SimulationParams, rng *rand.Rand) ([]ScenarioOutcome, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	outcomes := make([]ScenarioOutcome, 0, len(names))
	for _, name := range names {
		result, err := SimulateInvestment(scenarios[name], rng)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", name, err)
		}
		outcomes = append(outcomes, ScenarioOutcome{Name: name, Result: result})
	}
	return outcomes, nil
}
