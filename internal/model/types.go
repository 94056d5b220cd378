// Package model defines the shared record types consumed and produced by the
// analytics engine. All records are plain values owned by the caller: the
// engine never mutates or retains them.
package model

import "time"

// TransactionType distinguishes money in, money out, and internal movements.
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// Transaction is an immutable snapshot of a single dated ledger entry.
// Amount is signed by the source system; consumers normalize via absolute
// value and rely on Type, not the sign, to classify the entry.
type Transaction struct {
	ID          int64
	Date        time.Time
	Description string
	Category    string
	Amount      float64
	Type        TransactionType
}

// BudgetPeriod is the cadence a budget amount applies to.
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodAnnual  BudgetPeriod = "annual"
)

// Budget is a per-category spending limit. A zero-value Period means monthly.
type Budget struct {
	Category string
	Amount   float64
	Period   BudgetPeriod
}

// MonthlyAmount returns the budget normalized to a monthly figure.
func (b Budget) MonthlyAmount() float64 {
	if b.Period == BudgetPeriodAnnual {
		return b.Amount / 12
	}
	return b.Amount
}

// AnnualAmount returns the budget normalized to an annual figure.
func (b Budget) AnnualAmount() float64 {
	if b.Period == BudgetPeriodAnnual {
		return b.Amount
	}
	return b.Amount * 12
}

// Debt describes an outstanding liability. AnnualInterestRate is a percentage
// (e.g. 19.99 for 19.99% APR).
type Debt struct {
	ID                 int64
	Name               string
	PrincipalAmount    float64
	CurrentBalance     float64
	AnnualInterestRate float64
	MinMonthlyPayment  float64
}

// Goal is a savings target. Priority 1 is the highest priority.
type Goal struct {
	ID           int64
	Name         string
	TargetAmount float64
	CurrentSaved float64
	TargetDate   time.Time
	Priority     int
}

// Confidence grades how much a derived metric should be trusted. Every
// statistic that depends on a minimum-sample-size assumption carries one;
// callers are expected to branch on it before presenting numbers as fact.
type Confidence string

const (
	ConfidenceInsufficient Confidence = "insufficient"
	ConfidenceLow          Confidence = "low"
	ConfidenceMedium       Confidence = "medium"
	ConfidenceHigh         Confidence = "high"
)
