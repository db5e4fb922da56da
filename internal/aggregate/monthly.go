package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// MonthTotals is one entry of the month-by-month series.
type MonthTotals struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Savings decimal.Decimal `json:"savings"`
}

// MonthSavings is the net result of one calendar month. HasData separates
// "nothing was recorded" from a month that genuinely netted to zero.
type MonthSavings struct {
	Month   string          `json:"month"`
	Savings decimal.Decimal `json:"savings"`
	HasData bool            `json:"has_data"`
}

// GroupByMonth buckets totals by "YYYY-MM" (UTC). Only months containing at
// least one transaction appear.
func GroupByMonth(txs []models.Transaction) map[string]Totals {
	months := make(map[string]Totals)
	for i := range txs {
		key := MonthKey(txs[i].Date)
		t := months[key]
		t.add(&txs[i])
		months[key] = t
	}
	return months
}

// SortedMonths flattens a grouping into ascending month order.
func SortedMonths(months map[string]Totals) []MonthTotals {
	out := make([]MonthTotals, 0, len(months))
	for key, t := range months {
		out = append(out, MonthTotals{
			Month:   key,
			Income:  t.Income,
			Expense: t.Expense,
			Savings: t.Savings(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// AverageMonthlySavings is the mean of income-expense across the months
// that have activity. Empty input yields zero.
func AverageMonthlySavings(txs []models.Transaction) decimal.Decimal {
	return averageSavings(GroupByMonth(txs))
}

func averageSavings(months map[string]Totals) decimal.Decimal {
	if len(months) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, t := range months {
		sum = sum.Add(t.Savings())
	}
	return sum.Div(decimal.NewFromInt(int64(len(months))))
}

// previousMonthWindow returns [start, end) covering the whole calendar month
// before ref's month.
func previousMonthWindow(ref time.Time) (time.Time, time.Time) {
	end := startOfMonth(ref)
	return end.AddDate(0, -1, 0), end
}

// totalsBetween sums transactions with start <= date < end.
func totalsBetween(txs []models.Transaction, start, end time.Time) (Totals, int) {
	var t Totals
	n := 0
	for i := range txs {
		d := txs[i].Date
		if d.Before(start) || !d.Before(end) {
			continue
		}
		t.add(&txs[i])
		n++
	}
	return t, n
}

// LastCompleteMonthSavings nets the calendar month before ref's month.
func LastCompleteMonthSavings(txs []models.Transaction, ref time.Time) MonthSavings {
	start, end := previousMonthWindow(ref)
	t, n := totalsBetween(txs, start, end)
	return MonthSavings{
		Month:   MonthKey(start),
		Savings: t.Savings(),
		HasData: n > 0,
	}
}
