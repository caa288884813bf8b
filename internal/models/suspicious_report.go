package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SuspiciousStatus is the investigation state of a suspicious entity report.
type SuspiciousStatus string

const (
	SuspiciousReported      SuspiciousStatus = "reported"
	SuspiciousInvestigating SuspiciousStatus = "investigating"
	SuspiciousVerified      SuspiciousStatus = "verified"
	SuspiciousFalsePositive SuspiciousStatus = "false_positive"
)

var SuspiciousStatuses = []SuspiciousStatus{
	SuspiciousReported,
	SuspiciousInvestigating,
	SuspiciousVerified,
	SuspiciousFalsePositive,
}

// ParseSuspiciousStatus validates a raw status string.
func ParseSuspiciousStatus(raw string) (SuspiciousStatus, error) {
	for _, s := range SuspiciousStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid suspicious entity status %q", raw)
}

// SuspiciousReport is a report about a suspicious entity (phone number, url, account...),
// mirrored from the suspicious_entities table.
type SuspiciousReport struct {
	ID            string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string           `gorm:"type:uuid;not null;index:idx_suspicious_user_created,priority:1" json:"user_id"`
	EntityType    string           `gorm:"type:text;not null" json:"entity_type"`
	EntityValue   string           `gorm:"type:text;not null" json:"entity_value"`
	Description   string           `gorm:"type:text;not null" json:"description"`
	EvidenceFiles pq.StringArray   `gorm:"type:text[]" json:"evidence_files"`
	ThreatLevel   *string          `gorm:"type:text" json:"threat_level"`
	Status        SuspiciousStatus `gorm:"type:text;not null;default:reported" json:"status"`
	CreatedAt     time.Time        `gorm:"not null;index:idx_suspicious_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"not null" json:"updated_at"`
}

func (SuspiciousReport) TableName() string { return SuspiciousTable }

// BeforeCreate assigns the id and initial status when the caller left them empty.
func (r *SuspiciousReport) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = SuspiciousReported
	}
	return
}

func (r SuspiciousReport) GetID() string           { return r.ID }
func (r SuspiciousReport) GetCreatedAt() time.Time { return r.CreatedAt }
