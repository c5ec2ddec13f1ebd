package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"expensetracker/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:        "Test User",
		Email:       email,
		Password:    string(hash),
		Preferences: models.DefaultPreferences(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// DisableNotifications turns off notifications for a fixture user.
func DisableNotifications(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	if err := db.Model(user).Update("pref_notifications_enabled", false).Error; err != nil {
		t.Fatalf("failed to disable notifications: %v", err)
	}
	user.Preferences.NotificationsEnabled = false
}

// CreateTestTransaction creates a transaction dated now.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, category, amount string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, userID, txType, category, amount, time.Now())
}

// CreateTestTransactionAt creates a transaction with an explicit date.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, category, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:        userID,
		Description:   fmt.Sprintf("Test transaction %d", nextID()),
		Amount:        decimal.RequireFromString(amount),
		Type:          txType,
		Category:      models.Category(category),
		Date:          date,
		PaymentMethod: models.DefaultPaymentMethod,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an active monthly budget with the given threshold.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category, amount string, threshold float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:                userID,
		Category:              models.Category(category),
		Amount:                decimal.RequireFromString(amount),
		Period:                models.BudgetPeriodMonthly,
		StartDate:             time.Now(),
		IsActive:              true,
		NotificationThreshold: threshold,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
