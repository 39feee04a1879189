package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog represents an audit log entry for a hierarchy mutation
type AuditLog struct {
	ID             uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ActorID        *uuid.UUID        `json:"actor_id,omitempty" gorm:"type:uuid;index"`
	Action         string            `json:"action" gorm:"type:varchar(100);not null;index"`
	OrganizationID uuid.UUID         `json:"organization_id" gorm:"type:uuid;not null;index"`
	ParentOrgID    *uuid.UUID        `json:"parent_org_id,omitempty" gorm:"type:uuid;index"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
