package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/events"
	"finboard/internal/logger"
	"finboard/internal/models"
	"finboard/internal/pagination"
	"finboard/internal/recurring"
	"finboard/internal/uuid"
)

// transactionService persists transactions and announces every write.
type transactionService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

// NewTransactionService creates a new TransactionServicer. Successful writes
// are announced on publisher; use events.Discard when the database emits
// its own notifications.
func NewTransactionService(db *gorm.DB, publisher events.Publisher) TransactionServicer {
	if publisher == nil {
		publisher = events.Discard
	}
	return &transactionService{db: db, publisher: publisher, now: time.Now}
}

// CreateTransaction validates in, expands it when recurring and inserts every
// resulting row in a single database transaction: either all rows are
// stored or none are. One change event is published after commit.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) ([]models.Transaction, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	base := recurring.Template{
		Amount:      in.Amount,
		Category:    models.NormalizeCategory(in.Category),
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date.UTC(),
	}

	occurrences := []recurring.Template{base}
	var group *string
	if in.IsRecurring {
		occurrences = recurring.ExpandMonthly(base, recurring.Occurrences)
		id := uuid.New()
		group = &id
	}

	rows := make([]models.Transaction, len(occurrences))
	for i, occ := range occurrences {
		rows[i] = models.Transaction{
			UserID:          userID,
			Amount:          occ.Amount,
			Category:        occ.Category,
			Type:            occ.Type,
			Date:            occ.Date,
			RecurrenceGroup: group,
		}
		if occ.Description != "" {
			desc := occ.Description
			rows[i].Description = &desc
		}
		if err := rows[i].Validate(); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	ev := events.ChangeEvent{
		UserID:         userID,
		Op:             events.OpCreated,
		TransactionIDs: ids,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		// Rows are committed; subscribers converge on the next change or TTL.
		logger.Get().Warnw("failed to publish transaction change", "error", err, "user_id", userID)
	}

	return rows, nil
}

// ListTransactions returns one page of the owner's transactions, newest
// first.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	query := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	query = applyTransactionFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var transactions []models.Transaction
	if err := query.Scopes(pagination.Paginate(page)).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	resp := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &resp, nil
}

func applyTransactionFilter(query *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		query = query.Where("date >= ?", filter.FromDate.UTC())
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", filter.ToDate.UTC())
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", models.NormalizeCategory(*filter.Category))
	}
	return query
}

// Snapshot returns every transaction of the owner in ascending date order.
func (s *transactionService) Snapshot(ctx context.Context, userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, created_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// GetTransactionByID retrieves one transaction owned by userID.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	if !uuid.IsValid(transactionID) {
		return nil, apperrors.ErrTransactionNotFound
	}
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &transaction, nil
}

// ListCategories returns the distinct non-empty categories the owner has
// used, alphabetically.
func (s *transactionService) ListCategories(ctx context.Context, userID string) ([]string, error) {
	categories := []string{}
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND category <> ''", userID).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return categories, nil
}
