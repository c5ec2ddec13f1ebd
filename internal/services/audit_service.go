package services

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

type auditService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// NewAuditService creates an AuditServicer backed by the audit_logs table.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db, log: logger.Named("audit")}
}

// Log records a mutation on one of the user's records. Write failures are
// logged and swallowed; the mutation itself has already succeeded.
func (s *auditService) Log(userID string, action models.AuditAction, resource models.AuditResource, resourceID, ipAddress string, changes map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      s.encodeChanges(action, changes),
	}

	if err := s.db.Create(entry).Error; err != nil {
		s.log.Errorw("failed to write audit entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resource,
			"resource_id", resourceID,
		)
	}
}

// encodeChanges stores changes as JSON; decimals keep their exact form.
// An unencodable map is recorded as "{}" so the entry is still written.
func (s *auditService) encodeChanges(action models.AuditAction, changes map[string]interface{}) string {
	if len(changes) == 0 {
		return ""
	}
	data, err := json.Marshal(changes)
	if err != nil {
		s.log.Warnw("audit changes not encodable", "action", action, "error", err)
		return "{}"
	}
	return string(data)
}
