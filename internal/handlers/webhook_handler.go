package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finboard/internal/errors"
	"finboard/internal/events"
	"finboard/internal/uuid"
)

// WebhookHandler receives change notifications from outside the API, such as
// a database webhook, and republishes them as change events.
type WebhookHandler struct {
	publisher events.Publisher
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(publisher events.Publisher) *WebhookHandler {
	return &WebhookHandler{publisher: publisher}
}

// WebhookRecord is the row image sent by database webhooks.
type WebhookRecord struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// TransactionsChangedRequest accepts either the plain form
// {user_id, transaction_ids} or a row-change payload {type, table, record,
// old_record}.
type TransactionsChangedRequest struct {
	UserID         string         `json:"user_id"`
	TransactionIDs []string       `json:"transaction_ids"`
	Type           string         `json:"type"`
	Table          string         `json:"table"`
	Record         *WebhookRecord `json:"record"`
	OldRecord      *WebhookRecord `json:"old_record"`
}

// toEvent resolves the owner and affected ids from whichever form was sent.
func (r *TransactionsChangedRequest) toEvent(now time.Time) (events.ChangeEvent, error) {
	ev := events.ChangeEvent{
		UserID:         r.UserID,
		Op:             events.OpChanged,
		TransactionIDs: r.TransactionIDs,
		OccurredAt:     now,
	}
	for _, rec := range []*WebhookRecord{r.Record, r.OldRecord} {
		if rec == nil {
			continue
		}
		if ev.UserID == "" {
			ev.UserID = rec.UserID
		}
		if rec.ID != "" && len(r.TransactionIDs) == 0 {
			ev.TransactionIDs = append(ev.TransactionIDs, rec.ID)
		}
	}
	if r.Type == "INSERT" {
		ev.Op = events.OpCreated
	}

	if ev.UserID == "" {
		return ev, apperrors.WithMessage(apperrors.ErrInvalidInput, "user_id is required")
	}
	id, err := uuid.Parse(ev.UserID)
	if err != nil {
		return ev, apperrors.WithMessage(apperrors.ErrInvalidInput, "user_id must be a UUID")
	}
	ev.UserID = id
	return ev, nil
}

// TransactionsChanged publishes a change event for the named owner
// @Summary     Notify transaction change
// @Description Called by the database webhook after rows change. Connected dashboards refresh and cached snapshots are dropped.
// @Tags        hooks
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string                     true "Webhook API key"
// @Param       request   body   TransactionsChangedRequest true "Changed rows"
// @Success     202 {object} map[string]string "Accepted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Notifications unavailable"
// @Router      /hooks/transactions-changed [post]
func (h *WebhookHandler) TransactionsChanged(c *gin.Context) {
	var req TransactionsChangedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ev, err := req.toEvent(time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), ev); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrSubscription, err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
