// Package aggregate derives dashboard figures from a transaction snapshot.
//
// Every function is pure: it reads the slice it is given, never reorders or
// mutates it, never touches storage and never reads the system clock. Time
// relative figures take the reference instant as an argument. Calendar
// months are evaluated in UTC for both keys and window boundaries.
//
// Inputs are expected to have passed models.Transaction.Validate; the
// functions here do not re-check amounts or kinds and never return errors.
// Divisions with a zero denominator yield zero.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// OtherCategory is the label used for transactions without a category.
const OtherCategory = "Other"

// MonthsPerYear is the projection horizon.
const MonthsPerYear = 12

var hundred = decimal.NewFromInt(100)

// Totals holds income and expense sums. Both are non-negative magnitudes.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Savings returns Income - Expense.
func (t Totals) Savings() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

func (t *Totals) add(tx *models.Transaction) {
	if tx.Type == models.TransactionTypeIncome {
		t.Income = t.Income.Add(tx.Amount)
		return
	}
	t.Expense = t.Expense.Add(tx.Amount)
}

// MonthKey formats the UTC year and zero-padded month of t, e.g. "2024-03".
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// startOfMonth returns midnight UTC on the first day of t's month.
func startOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// percentOf returns part/whole*100, or zero when whole is zero.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
