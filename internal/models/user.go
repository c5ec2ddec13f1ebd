package models

import "github.com/shopspring/decimal"

// Theme is the UI theme a user prefers.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences holds per-user settings. Stored inline on the users table.
type Preferences struct {
	Currency             string `gorm:"size:3;not null;default:USD" json:"currency"`
	Theme                Theme  `gorm:"not null;default:light" json:"theme"`
	NotificationsEnabled bool   `gorm:"not null;default:true" json:"notifications_enabled"`
	PushToken            string `json:"-"`
}

// DefaultPreferences returns the settings a new user starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Currency:             "USD",
		Theme:                ThemeLight,
		NotificationsEnabled: true,
	}
}

// User represents the user model in the database
type User struct {
	Base
	Name          string          `gorm:"not null" json:"name"`
	Email         string          `gorm:"uniqueIndex;not null" json:"email"`
	Password      string          `gorm:"not null" json:"-"`
	Avatar        string          `json:"avatar,omitempty"`
	MonthlyBudget decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"monthly_budget"`
	Preferences   Preferences     `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Transactions  []Transaction   `gorm:"foreignKey:UserID" json:"-"`
	Budgets       []Budget        `gorm:"foreignKey:UserID" json:"-"`
}
