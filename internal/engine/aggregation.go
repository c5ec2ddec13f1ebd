// Package engine holds the pure aggregation and budget evaluation logic.
// Nothing here performs I/O; callers pass in pre-fetched transactions and budgets.
package engine

import (
	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
)

// CategoryTotal is the sum of a category's transactions and the transactions themselves.
type CategoryTotal struct {
	Total        decimal.Decimal      `json:"total"`
	Transactions []models.Transaction `json:"transactions"`
}

// Breakdown maps a category to its total. Every bucket holds at least one transaction.
type Breakdown map[models.Category]*CategoryTotal

func (b Breakdown) add(tx models.Transaction) {
	bucket, ok := b[tx.Category]
	if !ok {
		bucket = &CategoryTotal{Total: decimal.Zero}
		b[tx.Category] = bucket
	}
	bucket.Total = bucket.Total.Add(tx.Amount)
	bucket.Transactions = append(bucket.Transactions, tx)
}

// Total returns the sum for a category, zero when absent.
func (b Breakdown) Total(category models.Category) decimal.Decimal {
	if bucket, ok := b[category]; ok {
		return bucket.Total
	}
	return decimal.Zero
}

// Bucket implements Spending using the same breakdown for every budget.
func (b Breakdown) Bucket(budget models.Budget) *CategoryTotal {
	return b[budget.Category]
}

// AggregateExpenses groups the user's expense transactions dated inside window by category.
// Transactions of other users, income transactions and out-of-window dates are skipped.
func AggregateExpenses(userID string, txs []models.Transaction, window Window) Breakdown {
	out := Breakdown{}
	for _, tx := range txs {
		if tx.UserID != userID || tx.Type != models.TransactionTypeExpense {
			continue
		}
		if !window.Contains(tx.Date) {
			continue
		}
		out.add(tx)
	}
	return out
}

// GroupByCategory partitions every transaction by category, ignoring type and date.
func GroupByCategory(txs []models.Transaction) Breakdown {
	out := Breakdown{}
	for _, tx := range txs {
		out.add(tx)
	}
	return out
}

// TransactionSummary holds lifetime totals for a user.
type TransactionSummary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
}

// Summarize totals income and expense. Anything that is not income counts as expense.
func Summarize(txs []models.Transaction) TransactionSummary {
	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if tx.Type == models.TransactionTypeIncome {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}
	return TransactionSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
	}
}
