package models

// AuditAction names a recorded mutation.
type AuditAction string

// Audited mutations.
const (
	AuditCreateTransaction AuditAction = "CREATE_TRANSACTION"
	AuditUpdateTransaction AuditAction = "UPDATE_TRANSACTION"
	AuditDeleteTransaction AuditAction = "DELETE_TRANSACTION"
	AuditCreateBudget      AuditAction = "CREATE_BUDGET"
	AuditDeleteBudget      AuditAction = "DELETE_BUDGET"
)

// AuditResource is the kind of record an audit entry points at.
type AuditResource string

// Audited resources.
const (
	AuditResourceTransaction AuditResource = "transaction"
	AuditResourceBudget      AuditResource = "budget"
)

// AuditLog records a mutation of a user's transactions or budgets.
type AuditLog struct {
	Base
	UserID       string        `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       AuditAction   `gorm:"not null" json:"action"`
	ResourceType AuditResource `gorm:"not null" json:"resource_type"`
	ResourceID   string        `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string        `json:"ip_address"`
	Changes      string        `json:"changes,omitempty"`
}
