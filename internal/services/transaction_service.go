package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
	"expensetracker/internal/notify"
	"expensetracker/internal/pagination"
	"expensetracker/internal/uuid"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db          *gorm.DB
	userService UserServicer
	queue       notify.Queue
	log         *zap.SugaredLogger
}

// NewTransactionService creates a new TransactionServicer. queue may be nil,
// in which case no notifications are sent.
func NewTransactionService(db *gorm.DB, userService UserServicer, queue notify.Queue) TransactionServicer {
	return &transactionService{
		db:          db,
		userService: userService,
		queue:       queue,
		log:         logger.Named("transactions"),
	}
}

// CreateTransaction records a new transaction for the user. Delivery of the
// resulting notifications never affects the outcome.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Category = models.Category(strings.TrimSpace(in.Category.String()))

	if details := validateTransactionInput(in); len(details) > 0 {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidInput, details)
	}

	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	// Default date to now if not provided
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		in.PaymentMethod = models.DefaultPaymentMethod
	}

	transaction := &models.Transaction{
		UserID:        userID,
		Description:   in.Description,
		Amount:        in.Amount,
		Type:          in.Type,
		Category:      in.Category,
		Date:          in.Date,
		PaymentMethod: in.PaymentMethod,
		Tags:          normalizeTags(in.Tags),
		Location:      in.Location,
		Notes:         in.Notes,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.dispatch(user, transaction)
	return transaction, nil
}

func (s *transactionService) dispatch(user *models.User, transaction *models.Transaction) {
	if !user.Preferences.NotificationsEnabled {
		return
	}
	ctx := context.Background()
	notify.Dispatch(ctx, s.queue, notify.TransactionJob(user, transaction), s.log)
	if transaction.Type == models.TransactionTypeExpense {
		notify.Dispatch(ctx, s.queue, notify.BudgetCheckJob(user, transaction.Category), s.log)
	}
}

func validateTransactionInput(in TransactionInput) []apperrors.FieldError {
	var details []apperrors.FieldError
	if in.Description == "" {
		details = append(details, apperrors.FieldError{Field: "description", Message: "description is required"})
	}
	if !in.Amount.IsPositive() {
		details = append(details, apperrors.FieldError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if !validTransactionType(in.Type) {
		details = append(details, apperrors.FieldError{Field: "type", Message: "type must be income or expense"})
	}
	if in.Category.IsZero() {
		details = append(details, apperrors.FieldError{Field: "category", Message: "category is required"})
	}
	return details
}

func validTransactionType(t models.TransactionType) bool {
	return t == models.TransactionTypeIncome || t == models.TransactionTypeExpense
}

// normalizeTags trims tags and drops blanks and duplicates, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.
		Order("date DESC").
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// FindTransactions returns every matching transaction of the user, newest first.
func (s *transactionService) FindTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error) {
	q := applyTransactionFilters(s.db.Where("user_id = ?", userID), filter)

	transactions := []models.Transaction{}
	if err := q.Order("date DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// applyTransactionFilters adds WHERE clauses for every set filter field.
func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID returns a transaction owned by the user. A transaction
// that exists but belongs to someone else yields TRANSACTION_NOT_OWNED.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if !uuid.IsValid(transactionID) {
		return nil, apperrors.ErrTransactionNotFound
	}

	var transaction models.Transaction
	if err := s.db.First(&transaction, "id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transaction.UserID != userID {
		return nil, apperrors.ErrTransactionNotOwned
	}
	return &transaction, nil
}

// UpdateTransaction overwrites only the supplied fields.
func (s *transactionService) UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if update.Description != nil {
		transaction.Description = strings.TrimSpace(*update.Description)
	}
	if update.Amount != nil {
		transaction.Amount = *update.Amount
	}
	if update.Type != nil {
		transaction.Type = *update.Type
	}
	if update.Category != nil {
		transaction.Category = models.Category(strings.TrimSpace(update.Category.String()))
	}
	if update.Date != nil {
		transaction.Date = *update.Date
	}
	if update.PaymentMethod != nil {
		transaction.PaymentMethod = *update.PaymentMethod
		if strings.TrimSpace(transaction.PaymentMethod) == "" {
			transaction.PaymentMethod = models.DefaultPaymentMethod
		}
	}
	if update.Tags != nil {
		transaction.Tags = normalizeTags(*update.Tags)
	}
	if update.Location != nil {
		transaction.Location = *update.Location
	}
	if update.Notes != nil {
		transaction.Notes = *update.Notes
	}

	if details := validateTransactionInput(TransactionInput{
		Description: transaction.Description,
		Amount:      transaction.Amount,
		Type:        transaction.Type,
		Category:    transaction.Category,
	}); len(details) > 0 {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidInput, details)
	}

	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// DeleteTransaction soft-deletes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
