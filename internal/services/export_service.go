package services

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"

	"finboard/internal/aggregate"
	apperrors "finboard/internal/errors"
	"finboard/internal/logger"
)

const (
	transactionsSheet = "Transactions"
	monthlySheet      = "Monthly"
)

var (
	transactionHeader = []interface{}{"Date", "Type", "Category", "Amount", "Description"}
	monthlyHeader     = []interface{}{"Month", "Income", "Expense", "Savings"}
)

// exportService renders snapshots as XLSX workbooks.
type exportService struct {
	snapshots SnapshotServicer
}

// NewExportService creates a new ExportServicer.
func NewExportService(snapshots SnapshotServicer) ExportServicer {
	return &exportService{snapshots: snapshots}
}

// ExportXLSX writes a workbook with one row per transaction on the first
// sheet and the month-by-month totals on the second.
func (s *exportService) ExportXLSX(ctx context.Context, userID string, w io.Writer) error {
	txs, err := s.snapshots.Snapshot(ctx, userID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Get().Warnw("failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := f.SetSheetRow(transactionsSheet, "A1", &transactionHeader); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range txs {
		amount, _ := txs[i].Amount.Float64()
		row := []interface{}{
			txs[i].Date.UTC().Format("2006-01-02"),
			string(txs[i].Type),
			txs[i].Category,
			amount,
			txs[i].DescriptionText(),
		}
		if err := f.SetSheetRow(transactionsSheet, cell(i+2), &row); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if _, err := f.NewSheet(monthlySheet); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := f.SetSheetRow(monthlySheet, "A1", &monthlyHeader); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i, m := range aggregate.SortedMonths(aggregate.GroupByMonth(txs)) {
		income, _ := m.Income.Float64()
		expense, _ := m.Expense.Float64()
		savings, _ := m.Savings.Float64()
		row := []interface{}{m.Month, income, expense, savings}
		if err := f.SetSheetRow(monthlySheet, cell(i+2), &row); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func cell(row int) string {
	name, _ := excelize.CoordinatesToCellName(1, row)
	return name
}
