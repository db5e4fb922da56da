package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/aggregate"
	"finboard/internal/events"
	"finboard/internal/models"
	"finboard/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// TransactionInput is a validated-at-the-boundary request to record a
// transaction. IsRecurring expands it into recurring.Occurrences rows.
type TransactionInput struct {
	Amount      decimal.Decimal
	Category    string
	Type        models.TransactionType
	Description string
	Date        time.Time
	IsRecurring bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Type     *models.TransactionType
	Category *string
}

// TransactionServicer is the storage collaborator for transactions.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) ([]models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	Snapshot(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	ListCategories(ctx context.Context, userID string) ([]string, error)
}

// SnapshotServicer serves cached snapshots and drops them on change events.
type SnapshotServicer interface {
	Snapshot(ctx context.Context, userID string) ([]models.Transaction, error)
	Invalidate(userID string)
	Run(ctx context.Context, hub *events.Hub) error
}

// TotalsView is the totals card: income, expense and their difference.
type TotalsView struct {
	aggregate.Totals
	Balance decimal.Decimal `json:"balance"`
}

// MonthlyView is the month-by-month chart series plus derived averages.
type MonthlyView struct {
	Months                []aggregate.MonthTotals `json:"months"`
	AverageMonthlySavings decimal.Decimal         `json:"average_monthly_savings"`
	LastCompleteMonth     aggregate.MonthSavings  `json:"last_complete_month"`
}

// DashboardServicer computes dashboard figures for one owner.
type DashboardServicer interface {
	Summary(ctx context.Context, userID string, ref time.Time) (*aggregate.Summary, error)
	Totals(ctx context.Context, userID string) (*TotalsView, error)
	RunningBalance(ctx context.Context, userID string) ([]aggregate.BalancePoint, error)
	Monthly(ctx context.Context, userID string, ref time.Time) (*MonthlyView, error)
	Comparison(ctx context.Context, userID string, ref time.Time) (*aggregate.Comparison, error)
	Categories(ctx context.Context, userID string) (*aggregate.Distribution, error)
	Projection(ctx context.Context, userID string, ref time.Time) (*aggregate.Projection, error)
	SavingsGoal(monthlyIncome, currentExpenses, targetSavings decimal.Decimal) aggregate.GoalPlan
}

// ExportServicer writes an owner's transactions as a spreadsheet.
type ExportServicer interface {
	ExportXLSX(ctx context.Context, userID string, w io.Writer) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
