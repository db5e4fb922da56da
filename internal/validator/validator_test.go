package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type sample struct {
	Type   string          `validate:"required,transaction_type"`
	Month  string          `validate:"omitempty,month_key"`
	Amount decimal.Decimal `validate:"gt=0"`
}

func TestCustomValidators(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	tests := []struct {
		name  string
		in    sample
		valid bool
	}{
		{"income", sample{Type: "income", Amount: decimal.NewFromInt(1)}, true},
		{"expense_with_month", sample{Type: "expense", Month: "2024-12", Amount: decimal.RequireFromString("0.01")}, true},
		{"unknown_type", sample{Type: "transfer", Amount: decimal.NewFromInt(1)}, false},
		{"bad_month", sample{Type: "income", Month: "2024-13", Amount: decimal.NewFromInt(1)}, false},
		{"short_month", sample{Type: "income", Month: "2024-1", Amount: decimal.NewFromInt(1)}, false},
		{"zero_amount", sample{Type: "income", Amount: decimal.Zero}, false},
		{"negative_amount", sample{Type: "income", Amount: decimal.NewFromInt(-3)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
