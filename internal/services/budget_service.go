package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/uuid"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new active budget for a category. Period defaults to
// monthly and the start date to now.
func (s *budgetService) CreateBudget(userID string, in BudgetInput) (*models.Budget, error) {
	in.Category = models.Category(strings.TrimSpace(in.Category.String()))
	if in.Period == "" {
		in.Period = models.BudgetPeriodMonthly
	}
	if in.StartDate.IsZero() {
		in.StartDate = time.Now()
	}

	if details := validateBudgetInput(in); len(details) > 0 {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidInput, details)
	}

	budget := &models.Budget{
		UserID:                userID,
		Category:              in.Category,
		Amount:                in.Amount,
		Period:                in.Period,
		StartDate:             in.StartDate,
		EndDate:               in.EndDate,
		IsActive:              true,
		NotificationThreshold: in.NotificationThreshold,
		Notes:                 in.Notes,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

func validateBudgetInput(in BudgetInput) []apperrors.FieldError {
	var details []apperrors.FieldError
	if in.Category.IsZero() {
		details = append(details, apperrors.FieldError{Field: "category", Message: "category is required"})
	}
	if !in.Amount.IsPositive() {
		details = append(details, apperrors.FieldError{Field: "amount", Message: "amount must be greater than zero"})
	}
	switch in.Period {
	case models.BudgetPeriodWeekly, models.BudgetPeriodMonthly, models.BudgetPeriodQuarterly, models.BudgetPeriodYearly:
	default:
		details = append(details, apperrors.FieldError{Field: "period", Message: "period must be weekly, monthly, quarterly or yearly"})
	}
	if in.NotificationThreshold < 0 || in.NotificationThreshold > 100 {
		details = append(details, apperrors.FieldError{Field: "notification_threshold", Message: "notification_threshold must be between 0 and 100"})
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		details = append(details, apperrors.FieldError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	return details
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(
	userID string,
	page pagination.PageRequest,
	isActive *bool,
	period *models.BudgetPeriod,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}
	if period != nil {
		base = base.Where("period = ?", *period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("created_at DESC").Order("id DESC").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget owned by the user. A budget that exists but
// belongs to someone else yields BUDGET_NOT_OWNED.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	if !uuid.IsValid(budgetID) {
		return nil, apperrors.ErrBudgetNotFound
	}

	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if budget.UserID != userID {
		return nil, apperrors.ErrBudgetNotOwned
	}
	return &budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// FindActiveBudgets returns the user's active budgets, newest first.
func (s *budgetService) FindActiveBudgets(userID string) ([]models.Budget, error) {
	budgets := []models.Budget{}
	if err := s.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}
