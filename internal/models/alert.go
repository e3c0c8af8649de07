package models

import (
	"time"

	"github.com/google/uuid"
)

type JSONB map[string]interface{}

type AlertType string

const (
	AlertStockOut          AlertType = "STOCK_OUT"
	AlertRuptureImminent   AlertType = "RUPTURE_IMMINENT"
	AlertBelowSafety       AlertType = "BELOW_SAFETY"
	AlertProductionBlocked AlertType = "PRODUCTION_BLOCKED"
	AlertSupplierDegraded  AlertType = "SUPPLIER_DEGRADED"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityCritical AlertSeverity = "CRITICAL"
)

const (
	AlertEntityMaterial = "material"
	AlertEntityRecipe   = "recipe"
	AlertEntitySupplier = "supplier"
)

// Alert is active while acknowledged_at is null. A partial unique index on
// (type, entity_type, entity_id) over active rows backs the dedup rule.
type Alert struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	Type           AlertType     `json:"type" db:"type"`
	Severity       AlertSeverity `json:"severity" db:"severity"`
	EntityType     string        `json:"entity_type" db:"entity_type"`
	EntityID       string        `json:"entity_id" db:"entity_id"`
	Message        string        `json:"message" db:"message"`
	Metadata       JSONB         `json:"metadata" db:"metadata"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at" db:"acknowledged_at"`
	AcknowledgedBy *uuid.UUID    `json:"acknowledged_by" db:"acknowledged_by"`
	PostponedUntil *time.Time    `json:"postponed_until" db:"postponed_until"`
	PostponeReason *string       `json:"postpone_reason" db:"postpone_reason"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

func (a *Alert) Active() bool {
	return a.AcknowledgedAt == nil
}

// AlertPostponement is the rate-limit ledger for critical-alert postponement.
type AlertPostponement struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	MaterialID uuid.UUID     `json:"material_id" db:"material_id"`
	Duration   time.Duration `json:"duration" db:"duration"`
	Reason     string        `json:"reason" db:"reason"`
	ActorID    uuid.UUID     `json:"actor_id" db:"actor_id"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}

// AlertCounts summarizes the active alert surface for dashboards.
type AlertCounts struct {
	Active   int `json:"active"`
	Critical int `json:"critical"`
}
