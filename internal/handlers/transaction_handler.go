package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	reportService      services.ReportServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, reportService services.ReportServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		reportService:      reportService,
		auditService:       auditService,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Description   string                 `json:"description" binding:"required,max=500"`
	Amount        decimal.Decimal        `json:"amount" binding:"required,gt=0,decimal_scale=4"`
	Type          models.TransactionType `json:"type" binding:"required,transaction_type"`
	Category      string                 `json:"category" binding:"required,max=100"`
	Date          *string                `json:"date"`
	PaymentMethod string                 `json:"payment_method" binding:"max=50"`
	Tags          []string               `json:"tags" binding:"max=20,dive,max=50"`
	Location      string                 `json:"location" binding:"max=255"`
	Notes         string                 `json:"notes" binding:"max=1000"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// Omitted fields keep their stored values.
type UpdateTransactionRequest struct {
	Description   *string                 `json:"description" binding:"omitempty,min=1,max=500"`
	Amount        *decimal.Decimal        `json:"amount" binding:"omitempty,gt=0,decimal_scale=4"`
	Type          *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Category      *string                 `json:"category" binding:"omitempty,min=1,max=100"`
	Date          *string                 `json:"date"`
	PaymentMethod *string                 `json:"payment_method" binding:"omitempty,max=50"`
	Tags          *[]string               `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Location      *string                 `json:"location" binding:"omitempty,max=255"`
	Notes         *string                 `json:"notes" binding:"omitempty,max=1000"`
}

// TransactionResponse wraps a single transaction
type TransactionResponse struct {
	Transaction models.Transaction `json:"transaction"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a new income or expense
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var date time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, dateError("date", parseErr))
			return
		}
		date = parsed
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      models.Category(req.Category),
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Tags:          req.Tags,
		Location:      req.Location,
		Notes:         req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditCreateTransaction, models.AuditResourceTransaction, transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount.String(), "category": req.Category})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetUserTransactions handles listing the authenticated user's transactions
// @Summary     Get transactions
// @Description Get a paginated, filterable list of transactions, newest first
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from_date  query string false "Start date (RFC3339 or YYYY-MM-DD, inclusive)"
// @Param       to_date    query string false "End date (RFC3339 or YYYY-MM-DD, inclusive)"
// @Param       type       query string false "Filter by type (income/expense)"
// @Param       category   query string false "Filter by category"
// @Param       min_amount query string false "Minimum amount"
// @Param       max_amount query string false "Maximum amount"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, dateError("from_date", err)
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseUpperBound(v)
		if err != nil {
			return filter, dateError("to_date", err)
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeIncome, models.TransactionTypeExpense:
			filter.Type = &txType
		default:
			return filter, invalidField("type", "type must be income or expense")
		}
	}

	if v := c.Query("category"); v != "" {
		cat := models.Category(v)
		filter.Category = &cat
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, invalidField("min_amount", "min_amount must be a number")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, invalidField("max_amount", "max_amount must be a number")
		}
		filter.MaxAmount = &amt
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
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionResponse "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Transaction belongs to another user"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles partial updates to a transaction
// @Summary     Update transaction
// @Description Update an existing transaction. Only supplied fields change.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} TransactionResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Transaction belongs to another user"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID := c.Param("id")

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	update := services.TransactionUpdate{
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          req.Type,
		PaymentMethod: req.PaymentMethod,
		Tags:          req.Tags,
		Location:      req.Location,
		Notes:         req.Notes,
	}
	if req.Category != nil {
		cat := models.Category(*req.Category)
		update.Category = &cat
	}
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, dateError("date", parseErr))
			return
		}
		update.Date = &parsed
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, txID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditUpdateTransaction, models.AuditResourceTransaction, txID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Transaction belongs to another user"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditDeleteTransaction, models.AuditResourceTransaction, transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// GetTransactionSummary returns lifetime income, expense and balance
// @Summary     Get transaction summary
// @Description Get total income, total expense and balance across all transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} engine.TransactionSummary "Totals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/summary [get]
func (h *TransactionHandler) GetTransactionSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reportService.GetTransactionSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetCategoryBreakdown groups the user's transactions by category
// @Summary     Get category breakdown
// @Description Get the total and transactions of every category the user has recorded
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]engine.CategoryTotal "Totals keyed by category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/categories [get]
func (h *TransactionHandler) GetCategoryBreakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	breakdown, err := h.reportService.GetCategoryBreakdown(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

func invalidField(field, message string) *apperrors.AppError {
	return apperrors.WithDetails(apperrors.ErrInvalidInput, []apperrors.FieldError{{Field: field, Message: message}})
}

func dateError(field string, err error) *apperrors.AppError {
	return invalidField(field, err.Error())
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
