package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionInsert     = "INSERT"
	ActionUpdate     = "UPDATE"
	ActionTransition = "TRANSITION"
	ActionSoftDelete = "SOFT_DELETE"
)

// AuditLog is an immutable trail entry. Lifecycle transitions write theirs in
// the same transaction as the transition itself.
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TableName string     `json:"table_name" db:"table_name"`
	RecordID  string     `json:"record_id" db:"record_id"`
	Action    string     `json:"action" db:"action"`
	OldValues JSONB      `json:"old_values" db:"old_values"`
	NewValues JSONB      `json:"new_values" db:"new_values"`
	ChangedBy *uuid.UUID `json:"changed_by" db:"changed_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// AuditLogFilters narrows audit queries.
type AuditLogFilters struct {
	TableName *string    `json:"table_name,omitempty"`
	RecordID  *string    `json:"record_id,omitempty"`
	Action    *string    `json:"action,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}
