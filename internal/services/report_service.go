package services

import (
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/config"
	"expensetracker/internal/engine"
	"expensetracker/internal/models"
)

var budgetPeriods = []models.BudgetPeriod{
	models.BudgetPeriodWeekly,
	models.BudgetPeriodMonthly,
	models.BudgetPeriodQuarterly,
	models.BudgetPeriodYearly,
}

// reportService evaluates budgets against recorded spending. It reads only
// through the store interfaces, so it can run against fakes.
type reportService struct {
	users        UserServicer
	budgets      BudgetServicer
	transactions TransactionServicer
	windowMode   string
	now          func() time.Time
}

// NewReportService creates a new ReportServicer. windowMode is one of the
// config.BudgetWindow* values.
func NewReportService(users UserServicer, budgets BudgetServicer, transactions TransactionServicer, windowMode string) ReportServicer {
	return &reportService{
		users:        users,
		budgets:      budgets,
		transactions: transactions,
		windowMode:   windowMode,
		now:          time.Now,
	}
}

// windowFor returns the spending window that applies to a budget period.
func (s *reportService) windowFor(period models.BudgetPeriod, now time.Time) engine.Window {
	if s.windowMode == config.BudgetWindowCalendarMonth {
		return engine.MonthWindow(now)
	}
	return engine.PeriodWindow(period, now)
}

// fetchWindow covers every window a budget could be evaluated against.
func (s *reportService) fetchWindow(now time.Time) engine.Window {
	if s.windowMode == config.BudgetWindowCalendarMonth {
		return engine.MonthWindow(now)
	}
	windows := make([]engine.Window, 0, len(budgetPeriods))
	for _, p := range budgetPeriods {
		windows = append(windows, engine.PeriodWindow(p, now))
	}
	span, _ := engine.Span(windows...)
	return span
}

func (s *reportService) spending(userID string, txs []models.Transaction, now time.Time) engine.Spending {
	if s.windowMode == config.BudgetWindowCalendarMonth {
		return engine.AggregateExpenses(userID, txs, engine.MonthWindow(now))
	}
	spending := make(engine.PeriodSpending, len(budgetPeriods))
	for _, p := range budgetPeriods {
		spending[p] = engine.AggregateExpenses(userID, txs, engine.PeriodWindow(p, now))
	}
	return spending
}

func expenseFilter(window engine.Window) TransactionFilter {
	expense := models.TransactionTypeExpense
	return TransactionFilter{Type: &expense, FromDate: &window.Start, ToDate: &window.End}
}

// load fetches active budgets and in-window expenses with two concurrent,
// independent reads. Either failure aborts.
func (s *reportService) load(userID string) ([]models.Budget, engine.Spending, error) {
	now := s.now()
	filter := expenseFilter(s.fetchWindow(now))

	var (
		budgets []models.Budget
		txs     []models.Transaction
		g       errgroup.Group
	)
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.FindActiveBudgets(userID)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.transactions.FindTransactions(userID, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return budgets, s.spending(userID, txs, now), nil
}

// GetBudgetSummary evaluates every active budget of the user.
func (s *reportService) GetBudgetSummary(userID string) ([]engine.BudgetStatus, error) {
	budgets, spending, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	return engine.EvaluateAll(budgets, spending), nil
}

// GetBudgetStatus evaluates a single budget owned by the user.
func (s *reportService) GetBudgetStatus(userID, budgetID string) (*engine.BudgetStatus, error) {
	budget, err := s.budgets.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	window := s.windowFor(budget.Period, now)
	filter := expenseFilter(window)
	filter.Category = &budget.Category

	txs, err := s.transactions.FindTransactions(userID, filter)
	if err != nil {
		return nil, err
	}

	status := engine.Evaluate(*budget, engine.AggregateExpenses(userID, txs, window))
	return &status, nil
}

// CheckBudgetNotifications returns the budgets that reached their threshold.
// Users with notifications disabled get a disabled result and no store reads
// beyond their profile.
func (s *reportService) CheckBudgetNotifications(userID string) (*engine.NotificationResult, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.Preferences.NotificationsEnabled {
		result := engine.DisabledResult()
		return &result, nil
	}

	budgets, spending, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	result := engine.EvaluateNotifications(true, budgets, spending)
	return &result, nil
}

// GetTransactionSummary returns lifetime income and expense totals.
func (s *reportService) GetTransactionSummary(userID string) (*engine.TransactionSummary, error) {
	txs, err := s.transactions.FindTransactions(userID, TransactionFilter{})
	if err != nil {
		return nil, err
	}
	summary := engine.Summarize(txs)
	return &summary, nil
}

// GetCategoryBreakdown groups all of the user's transactions by category.
func (s *reportService) GetCategoryBreakdown(userID string) (engine.Breakdown, error) {
	txs, err := s.transactions.FindTransactions(userID, TransactionFilter{})
	if err != nil {
		return nil, err
	}
	return engine.GroupByCategory(txs), nil
}
