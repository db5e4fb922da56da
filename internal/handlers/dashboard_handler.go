package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finboard/internal/errors"
	"finboard/internal/services"
)

// DashboardHandler serves the derived dashboard figures.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// SavingsGoalRequest is the what-if calculator input. Each figure may be a
// number or a numeric string; unparsable values count as zero.
type SavingsGoalRequest struct {
	MonthlyIncome   LenientDecimal `json:"monthly_income" swaggertype:"string"`
	CurrentExpenses LenientDecimal `json:"current_expenses" swaggertype:"string"`
	TargetSavings   LenientDecimal `json:"target_savings" swaggertype:"string"`
}

// GetSummary returns every dashboard figure in one payload
// @Summary     Dashboard summary
// @Description Totals, running balance, monthly series, comparison, categories and projection for the authenticated user
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       as_of query string false "Reference instant (RFC3339 or YYYY-MM-DD, default now)"
// @Success     200 {object} aggregate.Summary "Dashboard summary"
// @Failure     400 {object} ErrorResponse "Invalid as_of"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	ref, err := parseAsOf(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), userID, ref)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTotals returns income, expense and balance
// @Summary     Totals
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.TotalsView "Totals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /dashboard/totals [get]
func (h *DashboardHandler) GetTotals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.dashboardService.Totals(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// GetRunningBalance returns the balance after each transaction
// @Summary     Running balance
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]aggregate.BalancePoint "Balance series"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /dashboard/running-balance [get]
func (h *DashboardHandler) GetRunningBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	points, err := h.dashboardService.RunningBalance(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

// GetMonthly returns per-month totals and savings averages
// @Summary     Monthly series
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       as_of query string false "Reference instant (RFC3339 or YYYY-MM-DD, default now)"
// @Success     200 {object} services.MonthlyView "Monthly series"
// @Failure     400 {object} ErrorResponse "Invalid as_of"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /dashboard/monthly [get]
func (h *DashboardHandler) GetMonthly(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	ref, err := parseAsOf(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	monthly, err := h.dashboardService.Monthly(c.Request.Context(), userID, ref)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, monthly)
}

// GetComparison compares month-to-date with the previous month
// @Summary     Month comparison
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       as_of query string false "Reference instant (RFC3339 or YYYY-MM-DD, default now)"
// @Success     200 {object} aggregate.Comparison "Comparison"
// @Failure     400 {object} ErrorResponse "Invalid as_of"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /dashboard/comparison [get]
func (h *DashboardHandler) GetComparison(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	ref, err := parseAsOf(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	comparison, err := h.dashboardService.Comparison(c.Request.Context(), userID, ref)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}

// GetCategories returns the category distribution
// @Summary     Category distribution
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} aggregate.Distribution "Distribution"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /dashboard/categories [get]
func (h *DashboardHandler) GetCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dist, err := h.dashboardService.Categories(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dist)
}

// GetProjection returns the annual savings projection
// @Summary     Annual projection
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       as_of query string false "Reference instant (RFC3339 or YYYY-MM-DD, default now)"
// @Success     200 {object} aggregate.Projection "Projection"
// @Failure     400 {object} ErrorResponse "Invalid as_of"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /dashboard/projection [get]
func (h *DashboardHandler) GetProjection(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	ref, err := parseAsOf(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projection, err := h.dashboardService.Projection(c.Request.Context(), userID, ref)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, projection)
}

// PlanSavingsGoal runs the savings goal calculator
// @Summary     Savings goal calculator
// @Description What-if plan for a monthly savings target. Does not read stored transactions.
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SavingsGoalRequest true "Income, expenses and target"
// @Success     200 {object} aggregate.GoalPlan "Plan"
// @Failure     400 {object} ErrorResponse "Malformed body"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/savings-goal [post]
func (h *DashboardHandler) PlanSavingsGoal(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req SavingsGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan := h.dashboardService.SavingsGoal(
		req.MonthlyIncome.Decimal,
		req.CurrentExpenses.Decimal,
		req.TargetSavings.Decimal,
	)
	c.JSON(http.StatusOK, plan)
}
