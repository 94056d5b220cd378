package analyze

import (
	"time"

	"github.com/castlemilk/ledgerlens/internal/model"
)

var nextTestID int64

// tx builds an expense transaction with an auto-assigned ID.
func tx(date time.Time, description, category string, amount float64) model.Transaction {
	nextTestID++
	return model.Transaction{
		ID:          nextTestID,
		Date:        date,
		Description: description,
		Category:    category,
		Amount:      amount,
		Type:        model.TransactionExpense,
	}
}

func incomeTx(date time.Time, description string, amount float64) model.Transaction {
	nextTestID++
	return model.Transaction{
		ID:          nextTestID,
		Date:        date,
		Description: description,
		Category:    "salary",
		Amount:      amount,
		Type:        model.TransactionIncome,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// monthOf builds a month of synthetic history as one income and one expense
// transaction.
func monthOf(y int, m time.Month, income, expenses float64) []model.Transaction {
	return []model.Transaction{
		incomeTx(day(y, m, 1), "Employer Payroll", income),
		tx(day(y, m, 15), "General Spend", "general", expenses),
	}
}
