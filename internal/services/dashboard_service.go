package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/aggregate"
)

// dashboardService feeds cached snapshots through the aggregation engine.
type dashboardService struct {
	snapshots SnapshotServicer
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(snapshots SnapshotServicer) DashboardServicer {
	return &dashboardService{snapshots: snapshots}
}

// Summary computes every dashboard figure for ref.
func (s *dashboardService) Summary(ctx context.Context, userID string, ref time.Time) (*aggregate.Summary, error) {
	txs, err := s.snapshots.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := aggregate.Summarize(txs, ref)
	return &summary, nil
}

func (s *dashboardService) Totals(ctx context.Context, userID string) (*TotalsView, error) {
	txs, err := s.snapshots.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals := aggregate.ComputeTotals(txs)
	return &TotalsView{Totals: totals, Balance: aggregate.Balance(totals)}, nil
}

func (s *dashboardService) RunningBalance(ctx context.Context, userID string) ([]aggregate.BalancePoint, error) {
	txs, err := s.snapshots.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return aggregate.RunningBalance(txs), nil
}

func (s *dashboardService) Monthly(ctx context.Context, userID string, ref time.Time) (*MonthlyView, error) {
	txs, err := s.snapshots.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	months := aggregate.GroupByMonth(txs)
	return &MonthlyView{
		Months:                aggregate.SortedMonths(months),
		AverageMonthlySavings: aggregate.AverageMonthlySavings(txs),
		LastCompleteMonth:     aggregate.LastCompleteMonthSavings(txs, ref),
	}, nil
}

func (s *dashboardService) Comparison(ctx context.Context, userID string, ref time.Time) (*aggregate.Comparison, error) {
	txs, err := s.snapshots.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	cmp := aggregate.CompareMonths(txs, ref)
	return &cmp, nil
}

func (s *dashboardService) Categories(ctx context.Context, userID string) (*aggregate.Distribution, error) {
	txs, err := s.snapshots.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	dist := aggregate.CategoryDistribution(txs)
	return &dist, nil
}

func (s *dashboardService) Projection(ctx context.Context, userID string, ref time.Time) (*aggregate.Projection, error) {
	txs, err := s.snapshots.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := aggregate.ProjectAnnual(txs, aggregate.AverageMonthlySavings(txs), ref)
	return &p, nil
}

// SavingsGoal runs the what-if calculator; it does not touch storage.
func (s *dashboardService) SavingsGoal(monthlyIncome, currentExpenses, targetSavings decimal.Decimal) aggregate.GoalPlan {
	return aggregate.PlanSavingsGoal(monthlyIncome, currentExpenses, targetSavings)
}
