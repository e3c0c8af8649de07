package models

import (
	"time"

	"github.com/google/uuid"
)

type RequisitionStatus string

const (
	RequisitionOpen   RequisitionStatus = "OPEN"
	RequisitionClosed RequisitionStatus = "CLOSED"
)

// Requisition is an approved purchase request. It is split into one purchase
// order per supplier and auto-closed once every linked order is RECEIVED.
type Requisition struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	Reference string            `json:"reference" db:"reference"`
	Status    RequisitionStatus `json:"status" db:"status"`
	CreatedBy uuid.UUID         `json:"created_by" db:"created_by"`
	ClosedAt  *time.Time        `json:"closed_at" db:"closed_at"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`

	Lines []*RequisitionLine `json:"lines" db:"-"`
}

type RequisitionLine struct {
	ID            uuid.UUID `json:"id" db:"id"`
	RequisitionID uuid.UUID `json:"requisition_id" db:"requisition_id"`
	MaterialID    uuid.UUID `json:"material_id" db:"material_id"`
	Quantity      float64   `json:"quantity" db:"quantity"`
}
