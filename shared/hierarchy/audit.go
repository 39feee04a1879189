package hierarchy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orghierarchy-backend/shared/database/models"
)

const (
	AuditActionChildCreated        = "hierarchy.child_created"
	AuditActionOrganizationDeleted = "hierarchy.organization_deleted"
	AuditActionLogoUpdated         = "hierarchy.logo_updated"
)

// AuditRecord is one entry written next to a hierarchy mutation.
type AuditRecord struct {
	ActorID        uuid.UUID
	Action         string
	OrganizationID uuid.UUID
	ParentOrgID    *uuid.UUID
	Metadata       map[string]interface{}
	OccurredAt     time.Time
}

// AuditSink persists audit records. Record is called inside the store
// transaction of the mutation it describes; an error rolls that mutation back.
type AuditSink interface {
	Record(ctx context.Context, rec AuditRecord) error
}

// GormAuditSink writes records to the audit_logs table.
type GormAuditSink struct {
	db *gorm.DB
}

func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

func (s *GormAuditSink) Record(ctx context.Context, rec AuditRecord) error {
	entry := models.AuditLog{
		Action:         rec.Action,
		OrganizationID: rec.OrganizationID,
		ParentOrgID:    rec.ParentOrgID,
		Metadata:       rec.Metadata,
		CreatedAt:      rec.OccurredAt,
	}
	if rec.ActorID != uuid.Nil {
		actor := rec.ActorID
		entry.ActorID = &actor
	}

	if err := UseTx(ctx, s.db).Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit record %s: %w", rec.Action, err)
	}
	return nil
}
