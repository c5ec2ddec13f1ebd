package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// DefaultPaymentMethod is used when a transaction is submitted without one.
const DefaultPaymentMethod = "cash"

// Transaction represents a money movement owned by a user.
type Transaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index:idx_transactions_user_date" json:"user_id"`
	Description   string          `gorm:"not null" json:"description"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Type          TransactionType `gorm:"not null" json:"type"`
	Category      Category        `gorm:"not null;index" json:"category"`
	Date          time.Time       `gorm:"not null;index:idx_transactions_user_date" json:"date"`
	PaymentMethod string          `gorm:"not null;default:cash" json:"payment_method"`
	Tags          []string        `gorm:"serializer:json" json:"tags"`
	Location      string          `json:"location,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// BeforeSave keeps stored dates in UTC so range queries compare consistently.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.Date = t.Date.UTC()
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return nil
}
