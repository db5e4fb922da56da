package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// Projection extrapolates the average monthly savings over the calendar year.
type Projection struct {
	TotalSavingsToDate      decimal.Decimal `json:"total_savings_to_date"`
	FullYearProjection      decimal.Decimal `json:"full_year_projection"`
	RemainingYearProjection decimal.Decimal `json:"remaining_year_projection"`
	MonthsRemaining         int             `json:"months_remaining"`
	OnTrack                 bool            `json:"on_track"`
}

// ProjectAnnual projects avgMonthlySavings across the year of ref. The months
// remaining after ref's month are counted, so December leaves zero.
func ProjectAnnual(txs []models.Transaction, avgMonthlySavings decimal.Decimal, ref time.Time) Projection {
	total := NetSavings(txs)
	remaining := MonthsPerYear - int(ref.UTC().Month())

	return Projection{
		TotalSavingsToDate:      total,
		FullYearProjection:      avgMonthlySavings.Mul(decimal.NewFromInt(MonthsPerYear)),
		RemainingYearProjection: avgMonthlySavings.Mul(decimal.NewFromInt(int64(remaining))),
		MonthsRemaining:         remaining,
		OnTrack:                 total.Sign() >= 0,
	}
}

// GoalPlan is the outcome of the what-if savings calculator.
type GoalPlan struct {
	CurrentSavings            decimal.Decimal `json:"current_savings"`
	NeededSavings             decimal.Decimal `json:"needed_savings"`
	SavingsPercentageOfIncome decimal.Decimal `json:"savings_percentage_of_income"`
	MaxAllowedExpenses        decimal.Decimal `json:"max_allowed_expenses"`
	IsAchievable              bool            `json:"is_achievable"`
}

// PlanSavingsGoal compares a monthly savings target against income and
// current expenses. NeededSavings <= 0 means the target is already met.
func PlanSavingsGoal(monthlyIncome, currentExpenses, targetSavings decimal.Decimal) GoalPlan {
	current := monthlyIncome.Sub(currentExpenses)
	needed := targetSavings.Sub(current)

	pct := decimal.Zero
	if monthlyIncome.Sign() > 0 {
		pct = percentOf(targetSavings, monthlyIncome)
	}

	return GoalPlan{
		CurrentSavings:            current,
		NeededSavings:             needed,
		SavingsPercentageOfIncome: pct,
		MaxAllowedExpenses:        monthlyIncome.Sub(targetSavings),
		IsAchievable:              needed.Sign() <= 0,
	}
}
