package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// PeriodTotals are the totals of one comparison window.
type PeriodTotals struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Savings decimal.Decimal `json:"savings"`
	Count   int             `json:"count"`
}

// MetricChange is the movement of one metric between the two windows.
// PercentChange is zero whenever the previous value is zero.
type MetricChange struct {
	Difference    decimal.Decimal `json:"difference"`
	PercentChange decimal.Decimal `json:"percent_change"`
}

// Comparison contrasts the current month-to-date with the previous full month.
type Comparison struct {
	Current  PeriodTotals `json:"current"`
	Previous PeriodTotals `json:"previous"`
	Income   MetricChange `json:"income"`
	Expense  MetricChange `json:"expense"`
	Savings  MetricChange `json:"savings"`
}

// CompareMonths builds the month-over-month comparison for ref. The current
// window runs from the first instant of ref's month through ref inclusive;
// the previous window is the whole preceding calendar month.
func CompareMonths(txs []models.Transaction, ref time.Time) Comparison {
	curStart := startOfMonth(ref)
	// totalsBetween is end-exclusive; a nanosecond past ref makes it inclusive.
	cur, curN := totalsBetween(txs, curStart, ref.UTC().Add(time.Nanosecond))
	prevStart, prevEnd := previousMonthWindow(ref)
	prev, prevN := totalsBetween(txs, prevStart, prevEnd)

	current := periodTotals(MonthKey(curStart), cur, curN)
	previous := periodTotals(MonthKey(prevStart), prev, prevN)

	savingsDiff := current.Savings.Sub(previous.Savings)

	return Comparison{
		Current:  current,
		Previous: previous,
		Income:   change(current.Income, previous.Income),
		Expense:  change(current.Expense, previous.Expense),
		Savings: MetricChange{
			Difference: savingsDiff,
			// Denominator is |previous|: the sign follows the difference.
			PercentChange: percentOf(savingsDiff, previous.Savings.Abs()),
		},
	}
}

func periodTotals(month string, t Totals, n int) PeriodTotals {
	return PeriodTotals{
		Month:   month,
		Income:  t.Income,
		Expense: t.Expense,
		Savings: t.Savings(),
		Count:   n,
	}
}

func change(current, previous decimal.Decimal) MetricChange {
	diff := current.Sub(previous)
	return MetricChange{
		Difference:    diff,
		PercentChange: percentOf(diff, previous),
	}
}
