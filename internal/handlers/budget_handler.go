package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"expensetracker/internal/engine"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	reportService services.ReportServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, reportService services.ReportServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, reportService: reportService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
// NotificationThreshold defaults to 80 when omitted; an explicit 0 is kept.
type CreateBudgetRequest struct {
	Category              string              `json:"category" binding:"required,max=100"`
	Amount                decimal.Decimal     `json:"amount" binding:"required,gt=0,decimal_scale=4"`
	Period                models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
	StartDate             *string             `json:"start_date"`
	EndDate               *string             `json:"end_date"`
	NotificationThreshold *float64            `json:"notification_threshold" binding:"omitempty,gte=0,lte=100"`
	Notes                 string              `json:"notes" binding:"max=1000"`
}

// BudgetResponse wraps a single budget.
type BudgetResponse struct {
	Budget models.Budget `json:"budget"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a new spending limit for a category
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} BudgetResponse "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	in := services.BudgetInput{
		Category:              models.Category(req.Category),
		Amount:                req.Amount,
		Period:                req.Period,
		NotificationThreshold: models.DefaultNotificationThreshold,
		Notes:                 req.Notes,
	}
	if req.NotificationThreshold != nil {
		in.NotificationThreshold = *req.NotificationThreshold
	}
	if req.StartDate != nil && *req.StartDate != "" {
		start, parseErr := parseFlexibleTime(*req.StartDate)
		if parseErr != nil {
			respondWithError(c, dateError("start_date", parseErr))
			return
		}
		in.StartDate = start
	}
	if req.EndDate != nil && *req.EndDate != "" {
		end, parseErr := parseFlexibleTime(*req.EndDate)
		if parseErr != nil {
			respondWithError(c, dateError("end_date", parseErr))
			return
		}
		in.EndDate = &end
	}

	budget, err := h.budgetService.CreateBudget(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditCreateBudget, models.AuditResourceBudget, budget.ID, c.ClientIP(),
		map[string]interface{}{"category": budget.Category, "amount": budget.Amount.String(), "period": budget.Period})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets for the authenticated user, newest first
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       is_active query bool   false "Filter by active status"
// @Param       period    query string false "Filter by period (weekly/monthly/quarterly/yearly)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var isActive *bool
	if v := c.Query("is_active"); v != "" {
		switch v {
		case "true":
			b := true
			isActive = &b
		case "false":
			b := false
			isActive = &b
		default:
			respondWithError(c, invalidField("is_active", "is_active must be 'true' or 'false'"))
			return
		}
	}

	var period *models.BudgetPeriod
	if v := c.Query("period"); v != "" {
		p := models.BudgetPeriod(v)
		switch p {
		case models.BudgetPeriodWeekly, models.BudgetPeriodMonthly, models.BudgetPeriodQuarterly, models.BudgetPeriodYearly:
			period = &p
		default:
			respondWithError(c, invalidField("period", "period must be weekly, monthly, quarterly or yearly"))
			return
		}
	}

	result, err := h.budgetService.GetUserBudgets(userID, page, isActive, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Description Get a specific budget by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} BudgetResponse "Budget details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Budget belongs to another user"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Delete a budget by ID (soft delete)
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Budget belongs to another user"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID := c.Param("id")
	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditDeleteBudget, models.AuditResourceBudget, budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// BudgetSummaryResponse lists the spend status of every active budget.
type BudgetSummaryResponse struct {
	Budgets []engine.BudgetStatus `json:"budgets"`
}

// BudgetStatusResponse wraps the spend status of one budget.
type BudgetStatusResponse struct {
	Status engine.BudgetStatus `json:"status"`
}

// GetBudgetSummary handles evaluating every active budget.
// @Summary     Get budget summary
// @Description Get spent, remaining and percentage for every active budget in its current window
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} BudgetSummaryResponse "Budget statuses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/summary [get]
func (h *BudgetHandler) GetBudgetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statuses, err := h.reportService.GetBudgetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": statuses})
}

// GetBudgetStatus handles evaluating a single budget.
// @Summary     Get budget status
// @Description Get spending status for a budget in its current window
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} BudgetStatusResponse "Budget status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Budget belongs to another user"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/status [get]
func (h *BudgetHandler) GetBudgetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.reportService.GetBudgetStatus(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetBudgetNotifications handles checking which budgets crossed their thresholds.
// @Summary     Check budget notifications
// @Description List budgets at or above their notification threshold, or report that notifications are disabled
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} engine.NotificationResult "Notification check result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/notifications [get]
func (h *BudgetHandler) GetBudgetNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reportService.CheckBudgetNotifications(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
