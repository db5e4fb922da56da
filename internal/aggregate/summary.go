package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// Headline sources.
const (
	HeadlineLastMonth = "last_month"
	HeadlineAverage   = "average"
)

// Summary bundles every derivation the dashboard renders for one snapshot.
type Summary struct {
	AsOf                  time.Time       `json:"as_of"`
	TransactionCount      int             `json:"transaction_count"`
	Totals                Totals          `json:"totals"`
	Balance               decimal.Decimal `json:"balance"`
	RunningBalance        []BalancePoint  `json:"running_balance"`
	Monthly               []MonthTotals   `json:"monthly"`
	AverageMonthlySavings decimal.Decimal `json:"average_monthly_savings"`
	LastCompleteMonth     MonthSavings    `json:"last_complete_month"`
	HeadlineSavings       decimal.Decimal `json:"headline_savings"`
	HeadlineSource        string          `json:"headline_source"`
	Comparison            Comparison      `json:"comparison"`
	Categories            Distribution    `json:"categories"`
	Projection            Projection      `json:"projection"`
}

// Summarize computes the full dashboard payload for ref. The headline
// monthly savings figure is the last complete month when that month had
// any transactions, otherwise the average over active months.
func Summarize(txs []models.Transaction, ref time.Time) Summary {
	totals := ComputeTotals(txs)
	months := GroupByMonth(txs)
	avg := averageSavings(months)
	last := LastCompleteMonthSavings(txs, ref)

	headline, source := avg, HeadlineAverage
	if last.HasData {
		headline, source = last.Savings, HeadlineLastMonth
	}

	return Summary{
		AsOf:                  ref,
		TransactionCount:      len(txs),
		Totals:                totals,
		Balance:               Balance(totals),
		RunningBalance:        RunningBalance(txs),
		Monthly:               SortedMonths(months),
		AverageMonthlySavings: avg,
		LastCompleteMonth:     last,
		HeadlineSavings:       headline,
		HeadlineSource:        source,
		Comparison:            CompareMonths(txs, ref),
		Categories:            CategoryDistribution(txs),
		Projection:            ProjectAnnual(txs, avg, ref),
	}
}
