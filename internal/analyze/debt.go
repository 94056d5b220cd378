package analyze

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// DTIBand classifies a debt-to-income ratio.
type DTIBand string

const (
	DTIHealthy    DTIBand = "healthy"
	DTIAcceptable DTIBand = "acceptable"
	DTIHighRisk   DTIBand = "high_risk"
	DTIUnknown    DTIBand = "unknown"
)

const (
	dtiHealthyMax    = 20.0
	dtiAcceptableMax = 36.0

	// amortizationCapMonths bounds every payoff simulation.
	amortizationCapMonths = 360
	// payoffEpsilon: a balance at or below one cent counts as paid.
	payoffEpsilon = 0.01
)

// DebtToIncomeRatio returns total minimum payments over gross monthly income
// as a percentage, with its band. Non-positive income yields (0, unknown).
func DebtToIncomeRatio(debts []model.Debt, grossMonthlyIncome float64) (float64, DTIBand) {
	if grossMonthlyIncome <= 0 {
		return 0, DTIUnknown
	}
	var totalMin float64
	for _, d := range debts {
		totalMin += d.MinMonthlyPayment
	}
	ratio := totalMin / grossMonthlyIncome * 100
	switch {
	case ratio <= dtiHealthyMax:
		return ratio, DTIHealthy
	case ratio <= dtiAcceptableMax:
		return ratio, DTIAcceptable
	default:
		return ratio, DTIHighRisk
	}
}

// AmortizationEntry is one simulated month of a payoff schedule.
type AmortizationEntry struct {
	Month     int
	Interest  float64
	Principal float64
	Balance   float64
}

// AmortizationResult is a full payoff simulation for one debt.
type AmortizationResult struct {
	Schedule      []AmortizationEntry
	Months        int
	TotalInterest float64
	PaidOff       bool
}

// AmortizationSchedule simulates monthly payments against a debt, cent-exact,
// until the balance clears or the 360-month cap is hit. Monthly interest is
// balance × annualRate/12/100; the rest of the payment goes to principal.
func AmortizationSchedule(debt model.Debt, monthlyPayment float64) AmortizationResult {
	balance := decimal.NewFromFloat(debt.CurrentBalance)
	payment := decimal.NewFromFloat(monthlyPayment)
	monthlyRate := decimal.NewFromFloat(debt.AnnualInterestRate).Div(decimal.NewFromInt(1200))
	epsilon := decimal.NewFromFloat(payoffEpsilon)

	var result AmortizationResult
	totalInterest := decimal.Zero
	for month := 1; month <= amortizationCapMonths; month++ {
		if balance.LessThanOrEqual(epsilon) {
			result.PaidOff = true
			break
		}
		interest := balance.Mul(monthlyRate).Round(2)
		principal := payment.Sub(interest)
		if principal.GreaterThan(balance) {
			principal = balance
		}
		balance = balance.Sub(principal)
		totalInterest = totalInterest.Add(interest)

		result.Schedule = append(result.Schedule, AmortizationEntry{
			Month:     month,
			Interest:  interest.InexactFloat64(),
			Principal: principal.InexactFloat64(),
			Balance:   balance.InexactFloat64(),
		})
		result.Months = month
	}
	if balance.LessThanOrEqual(epsilon) {
		result.PaidOff = true
	}
	result.TotalInterest = totalInterest.InexactFloat64()
	return result
}

// DebtStrategy names a payoff ordering.
type DebtStrategy string

const (
	StrategyAvalanche DebtStrategy = "avalanche" // highest rate first
	StrategySnowball  DebtStrategy = "snowball"  // lowest balance first
)

// StrategyResult summarizes a multi-debt payoff simulation.
type StrategyResult struct {
	Strategy      DebtStrategy
	Months        int
	TotalInterest float64
	PayoffOrder   []int64
	PaidOff       bool
}

// StrategyComparison contrasts avalanche and snowball for the same debts and
// extra payment.
type StrategyComparison struct {
	Avalanche     StrategyResult
	Snowball      StrategyResult
	Recommended   DebtStrategy
	InterestSaved float64 // snowball interest minus avalanche interest
}

// CompareStrategies simulates both orderings. Only the current target debt
// (first unpaid in sort order) receives the extra payment; when a debt clears,
// its minimum payment joins the extra pool for the next target, so both
// strategies snowball by construction. Avalanche is recommended unless it
// saves no interest, in which case snowball wins for the behavioral
// momentum of early payoffs.
func CompareStrategies(debts []model.Debt, extraPayment float64) StrategyComparison {
	avalanche := simulateStrategy(debts, extraPayment, StrategyAvalanche)
	snowball := simulateStrategy(debts, extraPayment, StrategySnowball)

	comparison := StrategyComparison{
		Avalanche:     avalanche,
		Snowball:      snowball,
		InterestSaved: stats.RoundToCent(snowball.TotalInterest - avalanche.TotalInterest),
	}
	if comparison.InterestSaved > 0 {
		comparison.Recommended = StrategyAvalanche
	} else {
		comparison.Recommended = StrategySnowball
	}
	return comparison
}

type simDebt struct {
	id      int64
	balance decimal.Decimal
	rate    decimal.Decimal // monthly
	minPay  decimal.Decimal
	paid    bool
}

func simulateStrategy(debts []model.Debt, extraPayment float64, strategy DebtStrategy) StrategyResult {
	ordered := make([]model.Debt, len(debts))
	copy(ordered, debts)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if strategy == StrategyAvalanche {
			if a.AnnualInterestRate != b.AnnualInterestRate {
				return a.AnnualInterestRate > b.AnnualInterestRate
			}
		} else {
			if a.CurrentBalance != b.CurrentBalance {
				return a.CurrentBalance < b.CurrentBalance
			}
		}
		return a.ID < b.ID
	})

	sims := make([]*simDebt, 0, len(ordered))
	for _, d := range ordered {
		if d.CurrentBalance <= 0 {
			continue
		}
		sims = append(sims, &simDebt{
			id:      d.ID,
			balance: decimal.NewFromFloat(d.CurrentBalance),
			rate:    decimal.NewFromFloat(d.AnnualInterestRate).Div(decimal.NewFromInt(1200)),
			minPay:  decimal.NewFromFloat(d.MinMonthlyPayment),
		})
	}

	result := StrategyResult{Strategy: strategy}
	if len(sims) == 0 {
		result.PaidOff = true
		return result
	}

	extra := decimal.NewFromFloat(extraPayment)
	epsilon := decimal.NewFromFloat(payoffEpsilon)
	totalInterest := decimal.Zero

	for month := 1; month <= amortizationCapMonths; month++ {
		target := firstUnpaid(sims)
		if target == nil {
			break
		}
		for _, s := range sims {
			if s.paid {
				continue
			}
			interest := s.balance.Mul(s.rate).Round(2)
			s.balance = s.balance.Add(interest)
			totalInterest = totalInterest.Add(interest)

			payment := s.minPay
			if s == target {
				payment = payment.Add(extra)
			}
			if payment.GreaterThan(s.balance) {
				payment = s.balance
			}
			s.balance = s.balance.Sub(payment)
			if s.balance.LessThanOrEqual(epsilon) {
				s.paid = true
				result.PayoffOrder = append(result.PayoffOrder, s.id)
				// Freed minimum rolls into the extra pool from next month.
				extra = extra.Add(s.minPay)
			}
		}
		result.Months = month
		if firstUnpaid(sims) == nil {
			result.PaidOff = true
			break
		}
	}
	result.TotalInterest = totalInterest.InexactFloat64()
	return result
}

func firstUnpaid(sims []*simDebt) *simDebt {
	for _, s := range sims {
		if !s.paid {
			return s
		}
	}
	return nil
}

// RefinanceAnalysis weighs refinancing a debt at a lower rate against its
// upfront cost.
type RefinanceAnalysis struct {
	MonthlyInterestSavings float64
	BreakEvenMonths        *float64 // nil when the new rate saves nothing
	TotalSavings           float64
	Recommended            bool
}

// AnalyzeRefinance computes break-even months as cost over monthly interest
// savings and recommends refinancing when total interest saved across the
// payoff exceeds twice the refinance cost.
func AnalyzeRefinance(debt model.Debt, newAnnualRate, refinanceCost float64) RefinanceAnalysis {
	var analysis RefinanceAnalysis
	monthlySavings := debt.CurrentBalance * (debt.AnnualInterestRate - newAnnualRate) / 12 / 100
	analysis.MonthlyInterestSavings = stats.RoundToCent(monthlySavings)
	if monthlySavings <= 0 {
		return analysis
	}
	if refinanceCost > 0 {
		breakEven := refinanceCost / monthlySavings
		analysis.BreakEvenMonths = &breakEven
	} else {
		zero := 0.0
		analysis.BreakEvenMonths = &zero
	}

	current := AmortizationSchedule(debt, debt.MinMonthlyPayment)
	refinanced := debt
	refinanced.AnnualInterestRate = newAnnualRate
	after := AmortizationSchedule(refinanced, debt.MinMonthlyPayment)

	analysis.TotalSavings = stats.RoundToCent(current.TotalInterest - after.TotalInterest)
	analysis.Recommended = analysis.TotalSavings > 2*refinanceCost
	return analysis
}
