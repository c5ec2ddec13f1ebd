package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly    BudgetPeriod = "weekly"
	BudgetPeriodMonthly   BudgetPeriod = "monthly"
	BudgetPeriodQuarterly BudgetPeriod = "quarterly"
	BudgetPeriodYearly    BudgetPeriod = "yearly"
)

// DefaultNotificationThreshold is the spend percentage at which a budget alerts
// when no threshold is submitted.
const DefaultNotificationThreshold = 80

// Budget represents a spending limit for a category
type Budget struct {
	Base
	UserID                string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Category              Category        `gorm:"not null" json:"category"`
	Amount                decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Period                BudgetPeriod    `gorm:"not null;default:monthly" json:"period"`
	StartDate             time.Time       `gorm:"not null" json:"start_date"`
	EndDate               *time.Time      `json:"end_date,omitempty"`
	IsActive              bool            `gorm:"default:true" json:"is_active"`
	NotificationThreshold float64         `gorm:"not null" json:"notification_threshold"`
	Notes                 string          `json:"notes,omitempty"`
}
