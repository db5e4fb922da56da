package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// BalancePoint is the cumulative balance right after one transaction.
type BalancePoint struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// ComputeTotals sums amounts by kind over the whole snapshot.
func ComputeTotals(txs []models.Transaction) Totals {
	var t Totals
	for i := range txs {
		t.add(&txs[i])
	}
	return t
}

// Balance returns income minus expense.
func Balance(t Totals) decimal.Decimal {
	return t.Savings()
}

// NetSavings is Balance(ComputeTotals(txs)) without building the Totals.
func NetSavings(txs []models.Transaction) decimal.Decimal {
	net := decimal.Zero
	for i := range txs {
		net = net.Add(txs[i].SignedAmount())
	}
	return net
}

// RunningBalance walks a date-ordered copy of txs and emits the cumulative
// balance after each one. Transactions with equal dates keep their input
// order. The result has one point per transaction.
func RunningBalance(txs []models.Transaction) []BalancePoint {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]BalancePoint, 0, len(sorted))
	running := decimal.Zero
	for i := range sorted {
		running = running.Add(sorted[i].SignedAmount())
		points = append(points, BalancePoint{Date: sorted[i].Date, Balance: running})
	}
	return points
}
