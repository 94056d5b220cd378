package analyze

import (
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// IncomeStability tiers how predictable household income is.
type IncomeStability string

const (
	IncomeStable       IncomeStability = "stable"
	IncomeVariable     IncomeStability = "variable"
	IncomeHighVariable IncomeStability = "high_variable"
)

// HealthRisk tiers expected exposure to medical costs.
type HealthRisk string

const (
	HealthNormal   HealthRisk = "normal"
	HealthElevated HealthRisk = "elevated"
	HealthHigh     HealthRisk = "high"
)

// EmergencyFundStatus compares the current balance to the recommendation.
type EmergencyFundStatus string

const (
	FundAboveTarget EmergencyFundStatus = "above_target"
	FundAdequate    EmergencyFundStatus = "adequate"
	FundBelowTarget EmergencyFundStatus = "below_target"
)

// Clamp bounds for the recommended months of coverage.
const (
	minFundMonths = 3.0
	maxFundMonths = 24.0
	// fundAdequateRatio: a balance at 80% of target still counts adequate.
	fundAdequateRatio = 0.8
)

// EmergencyFundProfile is the household risk picture feeding the
// recommendation.
type EmergencyFundProfile struct {
	IncomeStability          IncomeStability
	Dependents               int
	HealthRisk               HealthRisk
	JobTenureYears           float64
	PartnerHasIncome         bool
	MonthlyEssentialExpenses float64
	CurrentBalance           float64
}

// EmergencyFundPlan is the recommended coverage and where the household
// stands against it.
type EmergencyFundPlan struct {
	MinMonths         float64
	MaxMonths         float64
	RecommendedMonths float64 // midpoint of the adjusted range
	RecommendedAmount float64
	Status            EmergencyFundStatus
}

// baseMonthsRange looks up the unadjusted coverage range for an income tier.
// Unrecognized tiers use the middle tier.
func baseMonthsRange(tier IncomeStability) (min, max float64) {
	switch tier {
	case IncomeStable:
		return 3, 6
	case IncomeHighVariable:
		return 9, 12
	default:
		return 6, 9
	}
}

// riskAdjustmentMonths sums the additive adjustments: one month per
// dependent, one or two for elevated/high health risk, a tenure adjustment
// (long tenure subtracts, short tenure adds) and minus one when a partner
// brings income.
func riskAdjustmentMonths(p EmergencyFundProfile) float64 {
	adjustment := float64(p.Dependents)
	switch p.HealthRisk {
	case HealthElevated:
		adjustment++
	case HealthHigh:
		adjustment += 2
	}
	switch {
	case p.JobTenureYears >= 10:
		adjustment--
	case p.JobTenureYears >= 5:
		// established tenure, no adjustment
	case p.JobTenureYears >= 2:
		adjustment++
	default:
		adjustment += 2
	}
	if p.PartnerHasIncome {
		adjustment--
	}
	return adjustment
}

// PlanEmergencyFund recommends months of essential-expense coverage from the
// income-stability base range plus additive risk adjustments, clamped to
// [3, 24] months.
func PlanEmergencyFund(p EmergencyFundProfile) EmergencyFundPlan {
	baseMin, baseMax := baseMonthsRange(p.IncomeStability)
	adjustment := riskAdjustmentMonths(p)

	plan := EmergencyFundPlan{
		MinMonths: stats.Clamp(baseMin+adjustment, minFundMonths, maxFundMonths),
		MaxMonths: stats.Clamp(baseMax+adjustment, minFundMonths, maxFundMonths),
	}
	plan.RecommendedMonths = (plan.MinMonths + plan.MaxMonths) / 2
	plan.RecommendedAmount = stats.RoundToCent(plan.RecommendedMonths * p.MonthlyEssentialExpenses)

	switch {
	case p.CurrentBalance >= plan.RecommendedAmount:
		plan.Status = FundAboveTarget
	case plan.RecommendedAmount > 0 && p.CurrentBalance >= fundAdequateRatio*plan.RecommendedAmount:
		plan.Status = FundAdequate
	default:
		plan.Status = FundBelowTarget
	}
	return plan
}
