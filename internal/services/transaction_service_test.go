package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
	"expensetracker/internal/notify"
	"expensetracker/internal/pagination"
	"expensetracker/internal/testutil"
	"expensetracker/internal/uuid"
)

func newTestTransactionService(t *testing.T) (TransactionServicer, *recordingQueue, *models.User, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	queue := &recordingQueue{}
	svc := NewTransactionService(db, NewUserService(db, nil), queue)
	user := testutil.CreateTestUser(t, db)
	return svc, queue, user, func() { testutil.TeardownTestDB(t, db) }
}

func expenseInput(category, amount string) TransactionInput {
	return TransactionInput{
		Description: "Lunch",
		Amount:      decimal.RequireFromString(amount),
		Type:        models.TransactionTypeExpense,
		Category:    models.Category(category),
	}
}

func TestCreateTransaction(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc, _, user, done := newTestTransactionService(t)
		defer done()

		before := time.Now().Add(-time.Second)
		tx, err := svc.CreateTransaction(user.ID, expenseInput("Food", "12.50"))
		testutil.AssertNoError(t, err)

		if tx.PaymentMethod != models.DefaultPaymentMethod {
			t.Errorf("expected payment method cash, got %s", tx.PaymentMethod)
		}
		if tx.Date.Before(before) {
			t.Errorf("expected date to default to now, got %s", tx.Date)
		}
		if tx.Date.Location() != time.UTC {
			t.Errorf("expected date stored in UTC, got %s", tx.Date.Location())
		}
		if tx.UserID != user.ID {
			t.Errorf("expected owner %s, got %s", user.ID, tx.UserID)
		}
	})

	t.Run("tags_deduplicated", func(t *testing.T) {
		svc, _, user, done := newTestTransactionService(t)
		defer done()

		in := expenseInput("Food", "5")
		in.Tags = []string{"work", " work", "", "team", "work"}
		tx, err := svc.CreateTransaction(user.ID, in)
		testutil.AssertNoError(t, err)

		got, err := svc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "team" {
			t.Errorf("expected [work team], got %v", got.Tags)
		}
	})

	t.Run("validation", func(t *testing.T) {
		svc, queue, user, done := newTestTransactionService(t)
		defer done()

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Amount: decimal.NewFromInt(-3),
			Type:   "transfer",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		fields := map[string]bool{}
		for _, d := range detailsOf(err) {
			fields[d.Field] = true
		}
		for _, f := range []string{"description", "amount", "type", "category"} {
			if !fields[f] {
				t.Errorf("expected field error for %s, got %v", f, detailsOf(err))
			}
		}
		if len(queue.kinds()) != 0 {
			t.Error("rejected input must not dispatch notifications")
		}
	})

	t.Run("expense_dispatches_record_and_budget_check", func(t *testing.T) {
		svc, queue, user, done := newTestTransactionService(t)
		defer done()

		_, err := svc.CreateTransaction(user.ID, expenseInput("Food", "20"))
		testutil.AssertNoError(t, err)

		kinds := queue.kinds()
		if len(kinds) != 2 || kinds[0] != notify.KindTransactionRecorded || kinds[1] != notify.KindBudgetCheck {
			t.Errorf("expected transaction_recorded and budget_check, got %v", kinds)
		}
		if queue.jobs[1].Category != "Food" {
			t.Errorf("budget check should target Food, got %s", queue.jobs[1].Category)
		}
	})

	t.Run("income_dispatches_record_only", func(t *testing.T) {
		svc, queue, user, done := newTestTransactionService(t)
		defer done()

		in := expenseInput("Salary", "3000")
		in.Type = models.TransactionTypeIncome
		_, err := svc.CreateTransaction(user.ID, in)
		testutil.AssertNoError(t, err)

		if kinds := queue.kinds(); len(kinds) != 1 || kinds[0] != notify.KindTransactionRecorded {
			t.Errorf("expected only transaction_recorded, got %v", kinds)
		}
	})

	t.Run("notifications_disabled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		queue := &recordingQueue{}
		svc := NewTransactionService(db, NewUserService(db, nil), queue)
		user := testutil.CreateTestUser(t, db)
		testutil.DisableNotifications(t, db, user)

		_, err := svc.CreateTransaction(user.ID, expenseInput("Food", "20"))
		testutil.AssertNoError(t, err)
		if len(queue.kinds()) != 0 {
			t.Errorf("expected no jobs, got %v", queue.kinds())
		}
	})

	t.Run("queue_failure_does_not_fail_write", func(t *testing.T) {
		svc, queue, user, done := newTestTransactionService(t)
		defer done()
		queue.err = notify.ErrQueueFull

		tx, err := svc.CreateTransaction(user.ID, expenseInput("Food", "20"))
		testutil.AssertNoError(t, err)
		if _, err := svc.GetTransactionByID(user.ID, tx.ID); err != nil {
			t.Errorf("transaction should be persisted: %v", err)
		}
	})
}

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, NewUserService(db, nil), nil)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, "Food", "10", base)
	testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeExpense, "Food", "40", base.AddDate(0, 0, 1))
	testutil.CreateTestTransactionAt(t, db, user.ID, models.TransactionTypeIncome, "Salary", "3000", base.AddDate(0, 0, 2))
	testutil.CreateTestTransactionAt(t, db, other.ID, models.TransactionTypeExpense, "Food", "99", base)

	t.Run("newest_first", func(t *testing.T) {
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 3 {
			t.Fatalf("expected 3 items, got %d", page.TotalItems)
		}
		if page.Data[0].Category != "Salary" {
			t.Errorf("expected newest first, got %s", page.Data[0].Category)
		}
	})

	t.Run("filters", func(t *testing.T) {
		expense := models.TransactionTypeExpense
		food := models.Category("Food")
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{
			Type:      &expense,
			Category:  &food,
			MinAmount: ptr(decimal.NewFromInt(20)),
		})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 || !page.Data[0].Amount.Equal(decimal.NewFromInt(40)) {
			t.Errorf("expected the 40 Food expense, got %+v", page.Data)
		}

		from := base.AddDate(0, 0, 1)
		page, err = svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 items from %s, got %d", from, page.TotalItems)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{Page: 2, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 1 || page.TotalPages != 2 {
			t.Errorf("expected 1 item on page 2 of 2, got %d items, %d pages", len(page.Data), page.TotalPages)
		}
	})
}

func TestGetTransactionByID_Ownership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, NewUserService(db, nil), nil)
	owner := testutil.CreateTestUser(t, db)
	intruder := testutil.CreateTestUser(t, db)
	tx := testutil.CreateTestTransaction(t, db, owner.ID, models.TransactionTypeExpense, "Food", "10")

	_, err := svc.GetTransactionByID(intruder.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_OWNED")

	_, err = svc.GetTransactionByID(owner.ID, uuid.New())
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	_, err = svc.GetTransactionByID(owner.ID, "123")
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	err = svc.DeleteTransaction(intruder.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_OWNED")
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("partial", func(t *testing.T) {
		svc, _, user, done := newTestTransactionService(t)
		defer done()

		in := expenseInput("Food", "10")
		in.Notes = "keep me"
		tx, err := svc.CreateTransaction(user.ID, in)
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{Amount: ptr(decimal.NewFromInt(25))})
		testutil.AssertNoError(t, err)

		if !updated.Amount.Equal(decimal.NewFromInt(25)) {
			t.Errorf("expected amount 25, got %s", updated.Amount)
		}
		if updated.Notes != "keep me" || updated.Description != "Lunch" || updated.Category != "Food" {
			t.Errorf("unsupplied fields must be kept, got %+v", updated)
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		svc, _, user, done := newTestTransactionService(t)
		defer done()

		tx, err := svc.CreateTransaction(user.ID, expenseInput("Food", "10"))
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{Amount: ptr(decimal.Zero)})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteTransaction(t *testing.T) {
	svc, _, user, done := newTestTransactionService(t)
	defer done()

	tx, err := svc.CreateTransaction(user.ID, expenseInput("Food", "10"))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))

	_, err = svc.GetTransactionByID(user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}
