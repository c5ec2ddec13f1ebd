package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"expensetracker/internal/uuid"
)

func init() {
	// Amounts are rendered as JSON numbers, matching the shape clients expect.
	decimal.MarshalJSONWithoutQuotes = true
}

// Base contains common columns for all tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Transaction{},
		&Budget{},
		&AuditLog{},
	}
}
