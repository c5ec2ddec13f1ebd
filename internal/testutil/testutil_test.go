package testutil_test

import (
	"testing"

	"expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "transactions", "budgets", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}
	if !user.Preferences.NotificationsEnabled {
		t.Error("fixture users start with notifications enabled")
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "Food", "12.50")
	if tx.Amount.String() != "12.5" {
		t.Errorf("expected amount 12.5, got %s", tx.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, "Food", "200", 80)
	if budget.NotificationThreshold != 80 {
		t.Errorf("expected threshold 80, got %f", budget.NotificationThreshold)
	}

	testutil.DisableNotifications(t, db, user)
	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Preferences.NotificationsEnabled {
		t.Error("expected notifications to be disabled")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrBudgetNotFound, "custom message")
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestAssertFieldErrors(t *testing.T) {
	err := errors.WithDetails(errors.ErrInvalidInput, []errors.FieldError{
		{Field: "amount", Message: "amount is required"},
		{Field: "category", Message: "category is required"},
	})
	testutil.AssertFieldErrors(t, err, "amount", "category")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
