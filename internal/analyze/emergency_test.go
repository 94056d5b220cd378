package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanEmergencyFundLowRiskHousehold(t *testing.T) {
	profile := EmergencyFundProfile{
		IncomeStability:          IncomeStable,
		Dependents:               0,
		HealthRisk:               HealthNormal,
		JobTenureYears:           12,
		PartnerHasIncome:         true,
		MonthlyEssentialExpenses: 2000,
		CurrentBalance:           7000,
	}

	plan := PlanEmergencyFund(profile)

	// Base 3-6 with a -2 adjustment, floored at 3.
	assert.InDelta(t, 3.0, plan.MinMonths, 1e-9)
	assert.InDelta(t, 4.0, plan.MaxMonths, 1e-9)
	assert.InDelta(t, 3.5, plan.RecommendedMonths, 1e-9)
	assert.InDelta(t, 7000.0, plan.RecommendedAmount, 1e-9)
	assert.Equal(t, FundAboveTarget, plan.Status)
}

func TestPlanEmergencyFundHighRiskHousehold(t *testing.T) {
	profile := EmergencyFundProfile{
		IncomeStability:          IncomeHighVariable,
		Dependents:               2,
		HealthRisk:               HealthHigh,
		JobTenureYears:           1,
		PartnerHasIncome:         false,
		MonthlyEssentialExpenses: 3000,
		CurrentBalance:           10000,
	}

	plan := PlanEmergencyFund(profile)

	// Base 9-12 plus 2 dependents, +2 health, +2 short tenure.
	assert.InDelta(t, 15.0, plan.MinMonths, 1e-9)
	assert.InDelta(t, 18.0, plan.MaxMonths, 1e-9)
	assert.InDelta(t, 16.5, plan.RecommendedMonths, 1e-9)
	assert.InDelta(t, 49500.0, plan.RecommendedAmount, 1e-9)
	assert.Equal(t, FundBelowTarget, plan.Status)
}

func TestPlanEmergencyFundCapsAtTwoYears(t *testing.T) {
	profile := EmergencyFundProfile{
		IncomeStability:          IncomeHighVariable,
		Dependents:               8,
		HealthRisk:               HealthHigh,
		JobTenureYears:           0,
		MonthlyEssentialExpenses: 2500,
	}

	plan := PlanEmergencyFund(profile)
	assert.InDelta(t, 21.0, plan.MinMonths, 1e-9)
	assert.InDelta(t, 24.0, plan.MaxMonths, 1e-9)
}

func TestPlanEmergencyFundDefaultTierIsVariable(t *testing.T) {
	profile := EmergencyFundProfile{
		IncomeStability:          IncomeVariable,
		JobTenureYears:           6,
		MonthlyEssentialExpenses: 2000,
	}
	plan := PlanEmergencyFund(profile)
	assert.InDelta(t, 6.0, plan.MinMonths, 1e-9)
	assert.InDelta(t, 9.0, plan.MaxMonths, 1e-9)
}

func TestPlanEmergencyFundAdequateBand(t *testing.T) {
	profile := EmergencyFundProfile{
		IncomeStability:          IncomeStable,
		JobTenureYears:           12,
		PartnerHasIncome:         true,
		MonthlyEssentialExpenses: 2000,
	}

	profile.CurrentBalance = 5600 // exactly 80% of the 7000 target
	assert.Equal(t, FundAdequate, PlanEmergencyFund(profile).Status)

	profile.CurrentBalance = 5599
	assert.Equal(t, FundBelowTarget, PlanEmergencyFund(profile).Status)
}
