package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finboard/internal/events"
	"finboard/internal/models"
	"finboard/internal/pagination"
	"finboard/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func input(amount string, txType models.TransactionType, date time.Time) TransactionInput {
	return TransactionInput{
		Amount:   decimal.RequireFromString(amount),
		Category: "Food",
		Type:     txType,
		Date:     date,
	}
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)

	t.Run("single", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{}
		svc := NewTransactionService(db, pub)
		user := testutil.CreateTestUser(t, db)

		in := input("42.50", models.TransactionTypeExpense, date)
		in.Category = "  Food  "
		in.Description = " Lunch "
		rows, err := svc.CreateTransaction(ctx, user.ID, in)
		testutil.AssertNoError(t, err)

		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if rows[0].ID == "" || rows[0].UserID != user.ID {
			t.Errorf("unexpected row %+v", rows[0])
		}
		if rows[0].Category != "Food" || rows[0].DescriptionText() != "Lunch" {
			t.Errorf("expected trimmed fields, got %q / %q", rows[0].Category, rows[0].DescriptionText())
		}
		if rows[0].RecurrenceGroup != nil {
			t.Error("expected no recurrence group")
		}
		if pub.count() != 1 || pub.events[0].Op != events.OpCreated || pub.events[0].UserID != user.ID {
			t.Errorf("unexpected events %+v", pub.events)
		}
	})

	t.Run("recurring_expands_to_twelve", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{}
		svc := NewTransactionService(db, pub)
		user := testutil.CreateTestUser(t, db)

		in := input("1200", models.TransactionTypeExpense, date)
		in.Description = "Rent"
		in.IsRecurring = true
		rows, err := svc.CreateTransaction(ctx, user.ID, in)
		testutil.AssertNoError(t, err)

		if len(rows) != 12 {
			t.Fatalf("expected 12 rows, got %d", len(rows))
		}
		if rows[1].Date.Format("2006-01-02") != "2024-02-29" {
			t.Errorf("expected clamped second date, got %s", rows[1].Date)
		}
		if !strings.HasSuffix(rows[11].DescriptionText(), "(Recurring 12/12)") {
			t.Errorf("unexpected last description %q", rows[11].DescriptionText())
		}
		group := rows[0].RecurrenceGroup
		if group == nil {
			t.Fatal("expected recurrence group")
		}
		for i := range rows {
			if rows[i].RecurrenceGroup == nil || *rows[i].RecurrenceGroup != *group {
				t.Errorf("row %d has a different group", i)
			}
		}

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 12 {
			t.Errorf("expected 12 stored rows, got %d", count)
		}
		if pub.count() != 1 || len(pub.events[0].TransactionIDs) != 12 {
			t.Errorf("expected one event carrying 12 ids, got %+v", pub.events)
		}
	})

	t.Run("invalid_inputs", func(t *testing.T) {
		tests := []struct {
			name string
			in   TransactionInput
		}{
			{"zero_amount", input("0", models.TransactionTypeIncome, date)},
			{"negative_amount", input("-5", models.TransactionTypeIncome, date)},
			{"sub_cent_amount", input("0.001", models.TransactionTypeExpense, date)},
			{"half_cent_amount", input("0.005", models.TransactionTypeExpense, date)},
			{"column_overflow", input("123456789012345.67", models.TransactionTypeIncome, date)},
			{"unknown_type", input("5", models.TransactionType("transfer"), date)},
			{"missing_date", input("5", models.TransactionTypeIncome, time.Time{})},
			{"long_category", TransactionInput{Amount: decimal.NewFromInt(5), Type: models.TransactionTypeIncome, Date: date, Category: strings.Repeat("x", models.MaxCategoryLength+1)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				db := testutil.SetupTestDB(t)
				defer testutil.TeardownTestDB(t, db)
				pub := &recordingPublisher{}
				svc := NewTransactionService(db, pub)
				user := testutil.CreateTestUser(t, db)

				_, err := svc.CreateTransaction(ctx, user.ID, tt.in)
				testutil.AssertAppError(t, err, "INVALID_INPUT")
				if pub.count() != 0 {
					t.Error("expected no event for rejected input")
				}
			})
		}
	})

	t.Run("recurring_is_atomic", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{}
		svc := NewTransactionService(db, pub)
		user := testutil.CreateTestUser(t, db)

		// Fails the batch after the rows were written inside the transaction.
		in := input("10", models.TransactionTypeIncome, date)
		in.IsRecurring = true
		err := db.Callback().Create().After("gorm:create").Register("test:fail_batch", func(tx *gorm.DB) {
			if rows, ok := tx.Statement.Dest.(*[]models.Transaction); ok && len(*rows) == 12 {
				tx.AddError(errors.New("disk full"))
			}
		})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateTransaction(ctx, user.ID, in)
		testutil.AssertAppError(t, err, "PERSISTENCE_ERROR")

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no rows after failed insert, got %d", count)
		}
		if pub.count() != 0 {
			t.Error("expected no event after failed insert")
		}
	})

	t.Run("publish_failure_keeps_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &recordingPublisher{err: errors.New("broker down")}
		svc := NewTransactionService(db, pub)
		user := testutil.CreateTestUser(t, db)

		rows, err := svc.CreateTransaction(ctx, user.ID, input("10", models.TransactionTypeIncome, date))
		testutil.AssertNoError(t, err)
		if len(rows) != 1 {
			t.Errorf("expected 1 row, got %d", len(rows))
		}
	})

	t.Run("missing_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil)

		_, err := svc.CreateTransaction(ctx, "", input("10", models.TransactionTypeIncome, date))
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (TransactionServicer, string, func()) {
		db := testutil.SetupTestDB(t)
		svc := NewTransactionService(db, nil)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		for i := 1; i <= 5; i++ {
			testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "10", time.Date(2024, time.Month(i), 10, 0, 0, 0, 0, time.UTC))
		}
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "500", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, db, other.ID, models.TransactionTypeIncome, "999", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		return svc, user.ID, func() { testutil.TeardownTestDB(t, db) }
	}

	t.Run("paginates_newest_first", func(t *testing.T) {
		svc, userID, done := setup(t)
		defer done()

		result, err := svc.ListTransactions(ctx, userID, pagination.PageRequest{Page: 1, PageSize: 4}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 6 || result.TotalPages != 2 || len(result.Data) != 4 {
			t.Fatalf("unexpected page %+v", result)
		}
		if result.Data[0].Date.Month() != time.May {
			t.Errorf("expected newest first, got %s", result.Data[0].Date)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		svc, userID, done := setup(t)
		defer done()

		result, err := svc.ListTransactions(ctx, userID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.Page != 1 || result.PageSize != 20 {
			t.Errorf("expected default paging, got %d/%d", result.Page, result.PageSize)
		}
	})

	t.Run("filters", func(t *testing.T) {
		svc, userID, done := setup(t)
		defer done()

		from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
		expense := models.TransactionTypeExpense
		result, err := svc.ListTransactions(ctx, userID, pagination.PageRequest{}, TransactionFilter{FromDate: &from, ToDate: &to, Type: &expense})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 items, got %d", result.TotalItems)
		}

		category := "Missing"
		result, err = svc.ListTransactions(ctx, userID, pagination.PageRequest{}, TransactionFilter{Category: &category})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 0 || result.Data == nil {
			t.Errorf("expected empty non-nil page, got %+v", result)
		}
	})
}

func TestSnapshotAndLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot_is_owner_scoped_and_ascending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "2", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, db, other.ID, models.TransactionTypeIncome, "3", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

		txs, err := svc.Snapshot(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if len(txs) != 2 {
			t.Fatalf("expected 2 transactions, got %d", len(txs))
		}
		if txs[0].Date.After(txs[1].Date) {
			t.Error("expected ascending dates")
		}
	})

	t.Run("empty_snapshot_is_not_nil", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil)

		txs, err := svc.Snapshot(ctx, testutil.CreateTestUser(t, db).ID)
		testutil.AssertNoError(t, err)
		if txs == nil {
			t.Error("expected empty slice")
		}
	})

	t.Run("get_by_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "1", time.Now())

		got, err := svc.GetTransactionByID(ctx, user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if got.ID != tx.ID {
			t.Errorf("expected %s, got %s", tx.ID, got.ID)
		}

		_, err = svc.GetTransactionByID(ctx, other.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		_, err = svc.GetTransactionByID(ctx, user.ID, "not-a-uuid")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("categories", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil)
		user := testutil.CreateTestUser(t, db)

		for _, c := range []string{"Rent", "Food", "Rent", ""} {
			in := input("1", models.TransactionTypeExpense, time.Now())
			in.Category = c
			_, err := svc.CreateTransaction(ctx, user.ID, in)
			testutil.AssertNoError(t, err)
		}

		categories, err := svc.ListCategories(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if len(categories) != 2 || categories[0] != "Food" || categories[1] != "Rent" {
			t.Errorf("unexpected categories %v", categories)
		}
	})
}
