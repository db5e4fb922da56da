package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finboard/internal/errors"
	"finboard/internal/events"
	"finboard/internal/models"
	"finboard/internal/pagination"
	"finboard/internal/services"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultHeartbeat = 25 * time.Second
)

// ChangeSubscriber is the part of events.Hub the changes stream needs.
type ChangeSubscriber interface {
	Subscribe(userID string) (<-chan events.ChangeEvent, func())
}

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	exportService      services.ExportServicer
	changes            ChangeSubscriber
	auditService       services.AuditServicer
	heartbeat          time.Duration
}

// NewTransactionHandler creates a new TransactionHandler. changes may be nil,
// in which case the changes stream reports SUBSCRIPTION_ERROR.
func NewTransactionHandler(
	transactionService services.TransactionServicer,
	exportService services.ExportServicer,
	changes ChangeSubscriber,
	auditService services.AuditServicer,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		exportService:      exportService,
		changes:            changes,
		auditService:       auditService,
		heartbeat:          defaultHeartbeat,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount      decimal.Decimal        `json:"amount" binding:"required,gt=0" swaggertype:"string"`
	Category    string                 `json:"category" binding:"max=100"`
	Description string                 `json:"description" binding:"max=500"`
	Date        *string                `json:"date"`
	IsRecurring bool                   `json:"is_recurring"`
}

// CreateTransactionResponse lists the rows written by one create request.
type CreateTransactionResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or expense. With is_recurring the entry is repeated monthly for a year, all rows stored together or not at all.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} CreateTransactionResponse "Transactions created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := models.ValidateAmount(req.Amount); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transactionDate := time.Now().UTC()
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		transactionDate = parsed
	}

	rows, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, services.TransactionInput{
		Amount:      req.Amount,
		Category:    req.Category,
		Type:        req.Type,
		Description: req.Description,
		Date:        transactionDate,
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", rows[0].ID, c.ClientIP(),
		map[string]interface{}{
			"type":         req.Type,
			"amount":       req.Amount.String(),
			"is_recurring": req.IsRecurring,
			"count":        len(rows),
		})

	c.JSON(http.StatusCreated, CreateTransactionResponse{Transactions: rows, Count: len(rows)})
}

// ListTransactions returns the caller's transactions, newest first
// @Summary     List transactions
// @Description Get a paginated list of the authenticated user's transactions with optional filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       from_date query string false "Filter by start date (RFC3339 e.g. 2024-01-01T00:00:00Z, or YYYY-MM-DD)"
// @Param       to_date   query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       type      query string false "Filter by transaction type (income, expense)"
// @Param       category  query string false "Filter by category label"
// @Param       month     query string false "Filter by calendar month (YYYY-MM); excludes from_date and to_date"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// monthQuery selects a whole calendar month of transactions.
type monthQuery struct {
	Month string `form:"month" binding:"omitempty,month_key"`
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	var mq monthQuery
	if err := c.ShouldBindQuery(&mq); err != nil {
		return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month format, use YYYY-MM")
	}
	if mq.Month != "" {
		if c.Query("from_date") != "" || c.Query("to_date") != "" {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "month cannot be combined with from_date or to_date")
		}
		start, err := time.Parse("2006-01", mq.Month)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month format, use YYYY-MM")
		}
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
		filter.FromDate, filter.ToDate = &start, &end
	}

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		if !txType.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income or expense")
		}
		filter.Type = &txType
	}

	if v, ok := c.GetQuery("category"); ok {
		filter.Category = &v
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID (UUID)"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id", apperrors.ErrTransactionNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// ListCategories returns the category labels the caller has used
// @Summary     List used categories
// @Description Distinct category labels of the authenticated user, for form suggestions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]string "Categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /transactions/categories [get]
func (h *TransactionHandler) ListCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.transactionService.ListCategories(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ExportTransactions streams the caller's transactions as a spreadsheet
// @Summary     Export transactions
// @Description Download every transaction plus a monthly summary as an XLSX workbook
// @Tags        transactions
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Success     200 {file} file "XLSX workbook"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.exportService.ExportXLSX(c.Request.Context(), userID, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// StreamChanges pushes change notifications for the caller as server-sent events
// @Summary     Stream transaction changes
// @Description Server-sent events: a "change" event whenever the caller's transactions change, plus periodic "heartbeat" events. Accepts the access token as access_token query parameter.
// @Tags        transactions
// @Produce     text/event-stream
// @Security    BearerAuth
// @Success     200 {object} events.ChangeEvent "Event stream"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Notifications unavailable"
// @Router      /transactions/changes [get]
func (h *TransactionHandler) StreamChanges(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if h.changes == nil {
		respondWithError(c, apperrors.ErrSubscription)
		return
	}

	ch, cancel := h.changes.Subscribe(userID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"user_id": userID})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("change", ev)
		case now := <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"at": now.UTC()})
		}
		c.Writer.Flush()
	}
}
