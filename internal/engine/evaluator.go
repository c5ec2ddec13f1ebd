package engine

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
)

// Notification statuses.
const (
	NotificationStatusDisabled  = "disabled"
	NotificationStatusEvaluated = "evaluated"
)

// DisabledMessage explains a disabled notification result.
const DisabledMessage = "Notifications are disabled for this user"

var hundred = decimal.NewFromInt(100)

// Spending resolves the aggregated spend that applies to a budget.
type Spending interface {
	Bucket(budget models.Budget) *CategoryTotal
}

// PeriodSpending holds one breakdown per budget period, so each budget is
// measured against the window of its own period.
type PeriodSpending map[models.BudgetPeriod]Breakdown

// Bucket implements Spending.
func (p PeriodSpending) Bucket(budget models.Budget) *CategoryTotal {
	if b, ok := p[budget.Period]; ok {
		return b.Bucket(budget)
	}
	return nil
}

// BudgetStatus is a budget annotated with its current spend.
type BudgetStatus struct {
	models.Budget
	TotalSpent      decimal.Decimal `json:"total_spent"`
	PercentageSpent float64         `json:"percentage_spent"`
	Remaining       decimal.Decimal `json:"remaining"`
	IsOverBudget    bool            `json:"is_over_budget"`
}

// Evaluate computes the spend status of one budget. A budget amount <= 0
// violates the data model and panics.
func Evaluate(budget models.Budget, spending Spending) BudgetStatus {
	if !budget.Amount.IsPositive() {
		panic(fmt.Sprintf("engine: budget %s has non-positive amount %s", budget.ID, budget.Amount))
	}

	spent := decimal.Zero
	if bucket := spending.Bucket(budget); bucket != nil {
		spent = bucket.Total
	}

	return BudgetStatus{
		Budget:          budget,
		TotalSpent:      spent,
		PercentageSpent: spent.Mul(hundred).Div(budget.Amount).InexactFloat64(),
		Remaining:       budget.Amount.Sub(spent),
		IsOverBudget:    spent.GreaterThan(budget.Amount),
	}
}

// EvaluateAll evaluates budgets in the order given.
func EvaluateAll(budgets []models.Budget, spending Spending) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, Evaluate(b, spending))
	}
	return out
}

// Notification is emitted for a budget whose spend reached its threshold.
type Notification struct {
	BudgetID        string          `json:"budget_id"`
	Category        models.Category `json:"category"`
	BudgetAmount    decimal.Decimal `json:"budget_amount"`
	AmountSpent     decimal.Decimal `json:"amount_spent"`
	PercentageSpent string          `json:"percentage_spent"`
	IsOverBudget    bool            `json:"is_over_budget"`
}

// Triggered reports whether the status reached the budget's notification threshold.
func (s BudgetStatus) Triggered() bool {
	return s.PercentageSpent >= s.NotificationThreshold
}

// Notifications returns one notification per budget at or above its threshold,
// in input order. The result is never nil.
func Notifications(budgets []models.Budget, spending Spending) []Notification {
	out := []Notification{}
	for _, b := range budgets {
		status := Evaluate(b, spending)
		if !status.Triggered() {
			continue
		}
		out = append(out, Notification{
			BudgetID:        b.ID,
			Category:        b.Category,
			BudgetAmount:    b.Amount,
			AmountSpent:     status.TotalSpent,
			PercentageSpent: status.TotalSpent.Mul(hundred).Div(b.Amount).StringFixed(2),
			IsOverBudget:    status.IsOverBudget,
		})
	}
	return out
}

// NotificationResult distinguishes "notifications disabled" from "nothing triggered".
type NotificationResult struct {
	Status        string         `json:"status"`
	Message       string         `json:"message,omitempty"`
	Notifications []Notification `json:"notifications"`
}

// MarshalJSON leaves the notification list out of disabled results.
func (r NotificationResult) MarshalJSON() ([]byte, error) {
	if r.Disabled() {
		return json.Marshal(struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{r.Status, r.Message})
	}
	type plain NotificationResult
	return json.Marshal(plain(r))
}

// Disabled reports whether evaluation was skipped.
func (r NotificationResult) Disabled() bool {
	return r.Status == NotificationStatusDisabled
}

// DisabledResult is the result returned for users with notifications turned off.
func DisabledResult() NotificationResult {
	return NotificationResult{Status: NotificationStatusDisabled, Message: DisabledMessage}
}

// EvaluateNotifications runs notification evaluation when enabled is true.
func EvaluateNotifications(enabled bool, budgets []models.Budget, spending Spending) NotificationResult {
	if !enabled {
		return DisabledResult()
	}
	return NotificationResult{
		Status:        NotificationStatusEvaluated,
		Notifications: Notifications(budgets, spending),
	}
}
