package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	auditDomain "github.com/lodgio/service-booking/internal/domain/audit"
)

// AuditModel is the GORM model for the append-only audit log.
type AuditModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ActorID       *uuid.UUID      `gorm:"type:uuid;index"`
	Action        string          `gorm:"not null;size:50;index"`
	TargetType    string          `gorm:"not null;size:30"`
	TargetID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	PreviousValue json.RawMessage `gorm:"type:jsonb"`
	NewValue      json.RawMessage `gorm:"type:jsonb"`
	Metadata      json.RawMessage `gorm:"type:jsonb"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AuditModel) TableName() string {
	return "audit_log"
}

// GormAuditRepository is the GORM-based implementation of audit.Repository.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository.
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append writes one audit record. Called inside the transaction of the
// mutation it describes so the two commit together.
func (r *GormAuditRepository) Append(ctx context.Context, rec *auditDomain.Record) error {
	model := AuditModel{
		ID:            rec.ID,
		ActorID:       rec.ActorID,
		Action:        rec.Action,
		TargetType:    rec.TargetType,
		TargetID:      rec.TargetID,
		PreviousValue: rec.PreviousValue,
		NewValue:      rec.NewValue,
		Metadata:      rec.Metadata,
		CreatedAt:     rec.CreatedAt,
	}
	if err := dbFrom(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}
