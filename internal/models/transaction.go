package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Field limits enforced by Validate. Amounts match the numeric(14,2) column.
const (
	MaxCategoryLength    = 100
	MaxDescriptionLength = 500
	AmountScale          = 2
)

// MaxAmount is the first amount that no longer fits numeric(14,2).
var MaxAmount = decimal.New(1, 12)

// Validation failures. The service layer maps these onto INVALID_INPUT.
var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrAmountPrecision    = errors.New("amount must have at most 2 decimal places")
	ErrAmountTooLarge     = errors.New("amount must be less than 1000000000000")
	ErrInvalidType        = errors.New("type must be income or expense")
	ErrInvalidDate        = errors.New("date is required")
	ErrCategoryTooLong    = errors.New("category is too long (max 100 characters)")
	ErrDescriptionTooLong = errors.New("description is too long (max 500 characters)")
)

// Valid reports whether t is one of the two supported kinds.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is one income or expense event. Amount is always a positive
// magnitude; its effect on a balance comes from Type alone.
type Transaction struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category        string          `gorm:"size:100" json:"category"`
	Type            TransactionType `gorm:"not null" json:"type"`
	Description     *string         `json:"description,omitempty"`
	Date            time.Time       `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	RecurrenceGroup *string         `gorm:"type:uuid;index" json:"recurrence_group,omitempty"`
}

// Validate checks the invariants every persisted transaction must satisfy.
func (t *Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if utf8.RuneCountInString(t.Category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// ValidateAmount checks that amount is positive and storable without
// rounding. Trailing zeros such as 1.500 are accepted.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(AmountScale)) {
		return ErrAmountPrecision
	}
	if amount.GreaterThanOrEqual(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// SignedAmount returns Amount for income and -Amount for expense.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// DescriptionText returns the description or "" when absent.
func (t *Transaction) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// NormalizeCategory trims surrounding whitespace from a category label.
func NormalizeCategory(c string) string {
	return strings.TrimSpace(c)
}
