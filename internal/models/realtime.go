package models

import (
	"encoding/json"
	"time"
)

// Table names double as realtime channel segments.
const (
	GrievanceTable  = "grievance_reports"
	SuspiciousTable = "suspicious_entities"
)

// ChangeType is the kind of row change carried by a realtime event.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Record is implemented by both report kinds.
type Record interface {
	GetID() string
	GetCreatedAt() time.Time
}

// Change is a decoded realtime event for one record kind.
// New is the zero value for DELETE; OldID is set for UPDATE and DELETE.
type Change[T Record] struct {
	Type  ChangeType
	New   T
	OldID string
}

type (
	GrievanceChange  = Change[GrievanceReport]
	SuspiciousChange = Change[SuspiciousReport]
)

// ChangeEnvelope is the wire form of a change published on redis.
type ChangeEnvelope struct {
	Table           string          `json:"table"`
	Type            ChangeType      `json:"type"`
	UserID          string          `json:"user_id"`
	New             json.RawMessage `json:"new,omitempty"`
	OldID           string          `json:"old_id,omitempty"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}
