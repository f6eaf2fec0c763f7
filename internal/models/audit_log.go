package models

import "time"

// AuditLog records field-level changes applied to a model, distinct from the
// task Activity trail. One row per mutation, only dirty fields recorded.
type AuditLog struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	SubjectType string    `gorm:"type:varchar(50);not null;index:idx_audit_subject" json:"subject_type"`
	SubjectID   uint64    `gorm:"not null;index:idx_audit_subject" json:"subject_id"`
	CauserID    *uint64   `json:"causer_id"`
	Changes     JSONMap   `gorm:"type:json" json:"changes"`
	CreatedAt   time.Time `json:"created_at"`
}
