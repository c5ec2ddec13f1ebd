package services

import (
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/engine"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
)

// PreferencesUpdate holds the preference fields a user may change. Nil fields
// are left untouched.
type PreferencesUpdate struct {
	Currency             *string
	Theme                *models.Theme
	NotificationsEnabled *bool
	MonthlyBudget        *decimal.Decimal
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	UpdatePreferences(userID string, update PreferencesUpdate) (*models.User, error)
	SetPushToken(userID, token string) (*models.User, error)
}

// TransactionInput holds the fields of a new transaction.
type TransactionInput struct {
	Description   string
	Amount        decimal.Decimal
	Type          models.TransactionType
	Category      models.Category
	Date          time.Time
	PaymentMethod string
	Tags          []string
	Location      string
	Notes         string
}

// TransactionUpdate holds a partial transaction update. Only non-nil fields
// overwrite stored values.
type TransactionUpdate struct {
	Description   *string
	Amount        *decimal.Decimal
	Type          *models.TransactionType
	Category      *models.Category
	Date          *time.Time
	PaymentMethod *string
	Tags          *[]string
	Location      *string
	Notes         *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
// FromDate and ToDate are inclusive.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Type      *models.TransactionType
	Category  *models.Category
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	FindTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// BudgetInput holds the fields of a new budget.
type BudgetInput struct {
	Category              models.Category
	Amount                decimal.Decimal
	Period                models.BudgetPeriod
	StartDate             time.Time
	EndDate               *time.Time
	NotificationThreshold float64
	Notes                 string
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	FindActiveBudgets(userID string) ([]models.Budget, error)
}

// ReportServicer combines stored budgets and transactions into summaries and
// budget notifications.
type ReportServicer interface {
	GetBudgetSummary(userID string) ([]engine.BudgetStatus, error)
	GetBudgetStatus(userID, budgetID string) (*engine.BudgetStatus, error)
	CheckBudgetNotifications(userID string) (*engine.NotificationResult, error)
	GetTransactionSummary(userID string) (*engine.TransactionSummary, error)
	GetCategoryBreakdown(userID string) (engine.Breakdown, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID string, action models.AuditAction, resource models.AuditResource, resourceID, ipAddress string, changes map[string]interface{})
}
