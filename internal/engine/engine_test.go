package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/models"
)

const testUser = "user-1"

var now = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expense(category, amount string, date time.Time) models.Transaction {
	return models.Transaction{
		UserID:   testUser,
		Type:     models.TransactionTypeExpense,
		Category: models.Category(category),
		Amount:   dec(amount),
		Date:     date,
	}
}

func income(category, amount string) models.Transaction {
	tx := expense(category, amount, now)
	tx.Type = models.TransactionTypeIncome
	return tx
}

func budget(id, category, amount string, threshold float64) models.Budget {
	b := models.Budget{
		UserID:                testUser,
		Category:              models.Category(category),
		Amount:                dec(amount),
		Period:                models.BudgetPeriodMonthly,
		IsActive:              true,
		NotificationThreshold: threshold,
	}
	b.ID = id
	return b
}

func TestNewWindow(t *testing.T) {
	_, err := NewWindow(now, now.Add(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	w, err := NewWindow(now, now)
	require.NoError(t, err)
	assert.False(t, w.Contains(now), "empty window contains nothing")
}

func TestMonthWindow(t *testing.T) {
	w := MonthWindow(now)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), w.End)
	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(w.End))

	dec31 := MonthWindow(time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), dec31.End)
}

func TestPeriodWindow(t *testing.T) {
	tests := []struct {
		period models.BudgetPeriod
		start  time.Time
		end    time.Time
	}{
		// 2024-05-15 is a Wednesday
		{models.BudgetPeriodWeekly, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)},
		{models.BudgetPeriodMonthly, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{models.BudgetPeriodQuarterly, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{models.BudgetPeriodYearly, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{models.BudgetPeriod("fortnightly"), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			w := PeriodWindow(tt.period, now)
			assert.Equal(t, tt.start, w.Start)
			assert.Equal(t, tt.end, w.End)
		})
	}
}

func TestPeriodWindow_WeekStartsMonday(t *testing.T) {
	sunday := time.Date(2024, 5, 19, 22, 0, 0, 0, time.UTC)
	w := PeriodWindow(models.BudgetPeriodWeekly, sunday)
	assert.Equal(t, time.Monday, w.Start.Weekday())
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestSpan(t *testing.T) {
	_, ok := Span()
	assert.False(t, ok)

	w, ok := Span(PeriodWindow(models.BudgetPeriodWeekly, now), PeriodWindow(models.BudgetPeriodYearly, now))
	require.True(t, ok)
	assert.Equal(t, PeriodWindow(models.BudgetPeriodYearly, now), w)
}

func TestAggregateExpenses(t *testing.T) {
	other := expense("Food", "999", now)
	other.UserID = "user-2"

	txs := []models.Transaction{
		expense("Food", "150", now),
		expense("Food", "30", now.Add(-24*time.Hour)),
		expense("Transport", "500", now),
		expense("Food", "70", time.Date(2024, 4, 30, 23, 59, 0, 0, time.UTC)),
		income("Food", "1000"),
		other,
	}

	got := AggregateExpenses(testUser, txs, MonthWindow(now))

	require.Len(t, got, 2)
	assert.True(t, dec("180").Equal(got.Total("Food")))
	assert.Len(t, got["Food"].Transactions, 2)
	assert.True(t, dec("500").Equal(got.Total("Transport")))
	assert.True(t, got.Total("Rent").IsZero())
	for category, bucket := range got {
		assert.NotEmpty(t, bucket.Transactions, "bucket %s must have a contributing transaction", category)
	}
}

func TestAggregateExpenses_ExactDecimalSum(t *testing.T) {
	txs := []models.Transaction{
		expense("Coffee", "0.1", now),
		expense("Coffee", "0.2", now),
	}
	got := AggregateExpenses(testUser, txs, MonthWindow(now))
	assert.Equal(t, "0.3", got.Total("Coffee").String())
}

func TestGroupByCategory(t *testing.T) {
	txs := []models.Transaction{
		expense("Food", "10", now),
		income("Food", "5"),
		expense("Rent", "800", now.AddDate(-2, 0, 0)),
		income("Salary", "3000"),
	}

	got := GroupByCategory(txs)

	require.Len(t, got, 3)
	assert.True(t, dec("15").Equal(got.Total("Food")))
	assert.True(t, dec("800").Equal(got.Total("Rent")))

	count := 0
	for _, bucket := range got {
		count += len(bucket.Transactions)
	}
	assert.Equal(t, len(txs), count, "every transaction lands in exactly one bucket")
}

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := Summarize(nil)
		assert.True(t, s.TotalIncome.IsZero())
		assert.True(t, s.TotalExpense.IsZero())
		assert.True(t, s.Balance.IsZero())
	})

	t.Run("mixed", func(t *testing.T) {
		s := Summarize([]models.Transaction{
			income("Salary", "3000"),
			expense("Rent", "1200.50", now),
			expense("Food", "99.50", now),
		})
		assert.True(t, dec("3000").Equal(s.TotalIncome))
		assert.True(t, dec("1300").Equal(s.TotalExpense))
		assert.True(t, dec("1700").Equal(s.Balance))
	})
}

func TestEvaluate_UnderBudget(t *testing.T) {
	spending := AggregateExpenses(testUser, []models.Transaction{
		expense("Food", "150", now),
		expense("Food", "30", now),
		expense("Transport", "500", now),
	}, MonthWindow(now))

	status := Evaluate(budget("b1", "Food", "200", 80), spending)

	assert.True(t, dec("180").Equal(status.TotalSpent))
	assert.Equal(t, 90.0, status.PercentageSpent)
	assert.True(t, dec("20").Equal(status.Remaining))
	assert.False(t, status.IsOverBudget)
	assert.True(t, status.Triggered())
}

func TestEvaluate_OverBudget(t *testing.T) {
	spending := AggregateExpenses(testUser, []models.Transaction{
		expense("Food", "220", now),
	}, MonthWindow(now))

	status := Evaluate(budget("b1", "Food", "200", 80), spending)

	assert.Equal(t, 110.0, status.PercentageSpent)
	assert.True(t, status.IsOverBudget)
	assert.True(t, dec("-20").Equal(status.Remaining))
}

func TestEvaluate_ExactlyAtAmountIsNotOver(t *testing.T) {
	spending := Breakdown{"Food": {Total: dec("200")}}
	status := Evaluate(budget("b1", "Food", "200", 80), spending)
	assert.Equal(t, 100.0, status.PercentageSpent)
	assert.False(t, status.IsOverBudget)
}

func TestEvaluate_NoMatchingCategory(t *testing.T) {
	status := Evaluate(budget("b1", "Gifts", "50", 80), Breakdown{})

	assert.True(t, status.TotalSpent.IsZero())
	assert.Equal(t, 0.0, status.PercentageSpent)
	assert.True(t, dec("50").Equal(status.Remaining))
	assert.False(t, status.IsOverBudget)
	assert.False(t, status.Triggered())

	status = Evaluate(budget("b2", "Gifts", "50", 0), Breakdown{})
	assert.True(t, status.Triggered(), "a zero threshold always notifies")
}

func TestEvaluate_NonPositiveAmountPanics(t *testing.T) {
	assert.Panics(t, func() { Evaluate(budget("b1", "Food", "0", 80), Breakdown{}) })
}

func TestEvaluateAll_PreservesOrder(t *testing.T) {
	budgets := []models.Budget{
		budget("b3", "Rent", "1000", 80),
		budget("b1", "Food", "200", 80),
		budget("b2", "Fun", "50", 80),
	}
	got := EvaluateAll(budgets, Breakdown{})
	require.Len(t, got, 3)
	assert.Equal(t, "b3", got[0].ID)
	assert.Equal(t, "b1", got[1].ID)
	assert.Equal(t, "b2", got[2].ID)
}

func TestPeriodSpending(t *testing.T) {
	txs := []models.Transaction{
		expense("Food", "40", now),
		expense("Food", "60", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),
	}
	spending := PeriodSpending{
		models.BudgetPeriodMonthly: AggregateExpenses(testUser, txs, PeriodWindow(models.BudgetPeriodMonthly, now)),
		models.BudgetPeriodYearly:  AggregateExpenses(testUser, txs, PeriodWindow(models.BudgetPeriodYearly, now)),
	}

	monthly := budget("m", "Food", "100", 80)
	yearly := budget("y", "Food", "100", 80)
	yearly.Period = models.BudgetPeriodYearly
	weekly := budget("w", "Food", "100", 80)
	weekly.Period = models.BudgetPeriodWeekly

	assert.True(t, dec("40").Equal(Evaluate(monthly, spending).TotalSpent))
	assert.True(t, dec("100").Equal(Evaluate(yearly, spending).TotalSpent))
	assert.True(t, Evaluate(weekly, spending).TotalSpent.IsZero())
}

func TestNotifications(t *testing.T) {
	spending := Breakdown{
		"Food":      {Total: dec("180")},
		"Transport": {Total: dec("10")},
		"Rent":      {Total: dec("1234.567")},
	}
	budgets := []models.Budget{
		budget("food", "Food", "200", 80),
		budget("transport", "Transport", "100", 80),
		budget("rent", "Rent", "1000", 100),
	}

	got := Notifications(budgets, spending)

	require.Len(t, got, 2)
	assert.Equal(t, "food", got[0].BudgetID)
	assert.Equal(t, "90.00", got[0].PercentageSpent)
	assert.False(t, got[0].IsOverBudget)
	assert.True(t, dec("200").Equal(got[0].BudgetAmount))
	assert.True(t, dec("180").Equal(got[0].AmountSpent))

	assert.Equal(t, "rent", got[1].BudgetID)
	assert.Equal(t, "123.46", got[1].PercentageSpent)
	assert.True(t, got[1].IsOverBudget)
}

func TestNotifications_EmptyIsNotNil(t *testing.T) {
	got := Notifications(nil, Breakdown{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNotifications_MonotonicInThreshold(t *testing.T) {
	spending := Breakdown{
		"A": {Total: dec("10")},
		"B": {Total: dec("50")},
		"C": {Total: dec("85")},
		"D": {Total: dec("120")},
	}
	build := func(threshold float64) []models.Budget {
		return []models.Budget{
			budget("a", "A", "100", threshold),
			budget("b", "B", "100", threshold),
			budget("c", "C", "100", threshold),
			budget("d", "D", "100", threshold),
		}
	}

	prev := len(Notifications(build(0), spending))
	assert.Equal(t, 4, prev)
	for threshold := 5.0; threshold <= 100; threshold += 5 {
		n := len(Notifications(build(threshold), spending))
		assert.LessOrEqual(t, n, prev, "threshold %.0f grew the result", threshold)
		prev = n
	}
	assert.Equal(t, 1, prev)
}

func TestEvaluateNotifications(t *testing.T) {
	spending := Breakdown{"Food": {Total: dec("500")}}
	budgets := []models.Budget{budget("food", "Food", "200", 80)}

	t.Run("disabled ignores spend", func(t *testing.T) {
		res := EvaluateNotifications(false, budgets, spending)
		assert.True(t, res.Disabled())
		assert.Equal(t, DisabledMessage, res.Message)
		assert.Nil(t, res.Notifications)

		raw, err := json.Marshal(res)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"disabled","message":"Notifications are disabled for this user"}`, string(raw))
	})

	t.Run("enabled with nothing triggered", func(t *testing.T) {
		res := EvaluateNotifications(true, budgets, Breakdown{})
		assert.Equal(t, NotificationStatusEvaluated, res.Status)
		assert.NotNil(t, res.Notifications)
		assert.Empty(t, res.Notifications)

		raw, err := json.Marshal(res)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"evaluated","notifications":[]}`, string(raw))
	})

	t.Run("enabled and triggered", func(t *testing.T) {
		res := EvaluateNotifications(true, budgets, spending)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, "250.00", res.Notifications[0].PercentageSpent)
	})
}
