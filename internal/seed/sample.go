// Package seed loads a small demo dataset so a fresh account has something
// to chart.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
	"finboard/internal/services"
)

type sampleRow struct {
	amount      int64
	category    string
	kind        models.TransactionType
	description string
	date        string
}

var sampleRows = []sampleRow{
	{2500, "Salary", models.TransactionTypeIncome, "Monthly salary", "2024-01-15T10:00:00Z"},
	{1200, "Freelance", models.TransactionTypeIncome, "Website project delivered", "2024-01-20T14:30:00Z"},
	{800, "Rent", models.TransactionTypeExpense, "January rent", "2024-01-01T09:00:00Z"},
	{150, "Groceries", models.TransactionTypeExpense, "Weekly supermarket run", "2024-01-05T18:45:00Z"},
	{75, "Transport", models.TransactionTypeExpense, "Monthly bus pass", "2024-01-08T08:15:00Z"},
	{200, "Dining", models.TransactionTypeExpense, "Dinner out", "2024-01-12T20:00:00Z"},
	{3000, "Salary", models.TransactionTypeIncome, "February salary", "2024-02-15T10:00:00Z"},
	{950, "Rent", models.TransactionTypeExpense, "February rent", "2024-02-01T09:00:00Z"},
	{180, "Groceries", models.TransactionTypeExpense, "Weekly groceries", "2024-02-05T19:20:00Z"},
	{65, "Transport", models.TransactionTypeExpense, "Train ticket", "2024-02-10T07:30:00Z"},
	{120, "Entertainment", models.TransactionTypeExpense, "Cinema tickets", "2024-02-15T21:15:00Z"},
	{450, "Clothing", models.TransactionTypeExpense, "New pair of shoes", "2024-02-20T16:45:00Z"},
	{2800, "Salary", models.TransactionTypeIncome, "March salary", "2024-03-15T10:00:00Z"},
	{1000, "Bonus", models.TransactionTypeIncome, "Performance bonus", "2024-03-01T11:30:00Z"},
	{850, "Rent", models.TransactionTypeExpense, "March rent", "2024-03-01T09:00:00Z"},
	{200, "Groceries", models.TransactionTypeExpense, "Weekly groceries", "2024-03-08T18:30:00Z"},
	{90, "Transport", models.TransactionTypeExpense, "", "2024-03-12T08:00:00Z"},
	{350, "Electronics", models.TransactionTypeExpense, "Wireless headphones", "2024-03-18T15:20:00Z"},
}

// Sample returns the demo transactions as create requests.
func Sample() []services.TransactionInput {
	out := make([]services.TransactionInput, 0, len(sampleRows))
	for _, r := range sampleRows {
		date, err := time.Parse(time.RFC3339, r.date)
		if err != nil {
			panic(fmt.Sprintf("seed: bad sample date %q: %v", r.date, err))
		}
		out = append(out, services.TransactionInput{
			Amount:      decimal.NewFromInt(r.amount),
			Category:    r.category,
			Type:        r.kind,
			Description: r.description,
			Date:        date,
		})
	}
	return out
}

// Load records the sample transactions for userID and returns how many rows
// were written. It stops at the first failure.
func Load(ctx context.Context, svc services.TransactionServicer, userID string) (int, error) {
	written := 0
	for i, in := range Sample() {
		rows, err := svc.CreateTransaction(ctx, userID, in)
		if err != nil {
			return written, fmt.Errorf("sample row %d: %w", i, err)
		}
		written += len(rows)
	}
	return written, nil
}
