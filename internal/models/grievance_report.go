package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GrievanceStatus is the review state of a grievance report.
type GrievanceStatus string

const (
	GrievancePending     GrievanceStatus = "pending"
	GrievanceUnderReview GrievanceStatus = "under_review"
	GrievanceResolved    GrievanceStatus = "resolved"
	GrievanceRejected    GrievanceStatus = "rejected"
)

// GrievanceStatuses lists every accepted grievance status.
var GrievanceStatuses = []GrievanceStatus{
	GrievancePending,
	GrievanceUnderReview,
	GrievanceResolved,
	GrievanceRejected,
}

// ParseGrievanceStatus validates a raw status string.
func ParseGrievanceStatus(raw string) (GrievanceStatus, error) {
	for _, s := range GrievanceStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid grievance status %q", raw)
}

// GrievanceReport is a user-submitted grievance, mirrored from the grievance_reports table.
type GrievanceReport struct {
	ID                string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            string          `gorm:"type:uuid;not null;index:idx_grievance_user_created,priority:1" json:"user_id"`
	Title             string          `gorm:"type:text;not null" json:"title"`
	ComplaintCategory string          `gorm:"type:text;not null" json:"complaint_category"`
	Subcategory       *string         `gorm:"type:text" json:"subcategory"`
	Description       string          `gorm:"type:text;not null" json:"description"`
	Location          string          `gorm:"type:text;not null" json:"location"`
	EvidenceFiles     pq.StringArray  `gorm:"type:text[]" json:"evidence_files"`
	PriorityLevel     *string         `gorm:"type:text" json:"priority_level"`
	Status            GrievanceStatus `gorm:"type:text;not null;default:pending" json:"status"`
	CreatedAt         time.Time       `gorm:"not null;index:idx_grievance_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName pins the table name used by queries and change channels.
func (GrievanceReport) TableName() string { return GrievanceTable }

// BeforeCreate assigns the id and initial status when the caller left them empty.
func (r *GrievanceReport) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = GrievancePending
	}
	return
}

func (r GrievanceReport) GetID() string           { return r.ID }
func (r GrievanceReport) GetCreatedAt() time.Time { return r.CreatedAt }
