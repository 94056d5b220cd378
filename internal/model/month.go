package model

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month. It is a comparable composite key so
// grouping never relies on formatted strings.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf returns the key for the calendar month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// String renders the key as YYYY-MM.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Before reports whether k precedes other chronologically.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Next returns the following calendar month.
func (k MonthKey) Next() MonthKey {
	if k.Month == time.December {
		return MonthKey{Year: k.Year + 1, Month: time.January}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Time returns midnight UTC on the first day of the month.
func (k MonthKey) Time() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthsUntil returns the number of whole calendar months from k to other.
// Negative when other precedes k.
func (k MonthKey) MonthsUntil(other MonthKey) int {
	return (other.Year-k.Year)*12 + int(other.Month) - int(k.Month)
}

// MonthlyAggregate summarizes one calendar month of transactions. Transfers
// are excluded from both sides; income and expenses are absolute values.
type MonthlyAggregate struct {
	Month            MonthKey
	Income           float64
	Expenses         float64
	Net              float64
	SavingsRate      float64
	TransactionCount int
}
