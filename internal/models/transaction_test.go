package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransaction_Validate(t *testing.T) {
	valid := func() Transaction {
		return Transaction{
			UserID:   "owner",
			Amount:   decimal.NewFromInt(100),
			Category: "Salary",
			Type:     TransactionTypeIncome,
			Date:     time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		}
	}
	long := strings.Repeat("x", MaxDescriptionLength+1)

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = decimal.Zero }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }, wantErr: ErrInvalidAmount},
		{name: "sub-cent amount", mutate: func(tx *Transaction) { tx.Amount = decimal.RequireFromString("0.001") }, wantErr: ErrAmountPrecision},
		{name: "half-cent amount", mutate: func(tx *Transaction) { tx.Amount = decimal.RequireFromString("0.005") }, wantErr: ErrAmountPrecision},
		{name: "trailing zeros allowed", mutate: func(tx *Transaction) { tx.Amount = decimal.RequireFromString("12.500") }},
		{name: "largest storable amount", mutate: func(tx *Transaction) { tx.Amount = decimal.RequireFromString("999999999999.99") }},
		{name: "column overflow", mutate: func(tx *Transaction) { tx.Amount = decimal.RequireFromString("123456789012345.67") }, wantErr: ErrAmountTooLarge},
		{name: "exactly max", mutate: func(tx *Transaction) { tx.Amount = MaxAmount }, wantErr: ErrAmountTooLarge},
		{name: "unknown type", mutate: func(tx *Transaction) { tx.Type = "transfer" }, wantErr: ErrInvalidType},
		{name: "zero date", mutate: func(tx *Transaction) { tx.Date = time.Time{} }, wantErr: ErrInvalidDate},
		{name: "long category", mutate: func(tx *Transaction) { tx.Category = strings.Repeat("c", MaxCategoryLength+1) }, wantErr: ErrCategoryTooLong},
		{name: "long description", mutate: func(tx *Transaction) { tx.Description = &long }, wantErr: ErrDescriptionTooLong},
		{name: "empty category allowed", mutate: func(tx *Transaction) { tx.Category = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid()
			tt.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransaction_SignedAmount(t *testing.T) {
	income := Transaction{Amount: decimal.NewFromInt(40), Type: TransactionTypeIncome}
	expense := Transaction{Amount: decimal.NewFromInt(40), Type: TransactionTypeExpense}

	if !income.SignedAmount().Equal(decimal.NewFromInt(40)) {
		t.Errorf("income signed amount = %s", income.SignedAmount())
	}
	if !expense.SignedAmount().Equal(decimal.NewFromInt(-40)) {
		t.Errorf("expense signed amount = %s", expense.SignedAmount())
	}
}
