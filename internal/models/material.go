package models

import (
	"time"

	"github.com/google/uuid"

	"provender/internal/apperrors"
)

// Material is a raw material tracked by the plant. CurrentStock, RiskState and
// ActiveRecipeUsage are derived caches refreshed by the recompute batch; the
// movement ledger stays the source of truth.
type Material struct {
	ID                  uuid.UUID   `json:"id" db:"id"`
	Code                string      `json:"code" db:"code"`
	Name                string      `json:"name" db:"name"`
	Unit                string      `json:"unit" db:"unit"`
	CurrentStock        float64     `json:"current_stock" db:"current_stock"`
	MinStock            float64     `json:"min_stock" db:"min_stock"`
	SafetyThreshold     *float64    `json:"safety_threshold" db:"safety_threshold"`
	OrderThreshold      *float64    `json:"order_threshold" db:"order_threshold"`
	LeadTimeDays        int         `json:"lead_time_days" db:"lead_time_days"`
	AvgDailyConsumption *float64    `json:"avg_daily_consumption" db:"avg_daily_consumption"`
	Criticality         Criticality `json:"criticality" db:"criticality"`
	SupplierID          *uuid.UUID  `json:"supplier_id" db:"supplier_id"`
	StockTracked        bool        `json:"stock_tracked" db:"stock_tracked"`
	ActiveRecipeUsage   int         `json:"active_recipe_usage" db:"active_recipe_usage"`
	RiskState           RiskState   `json:"risk_state" db:"risk_state"`
	Active              bool        `json:"active" db:"active"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

// Validate enforces the write-time threshold invariant.
func (m *Material) Validate() error {
	if m.Code == "" {
		return &apperrors.ValidationError{Field: "code", Reason: "is required"}
	}
	if m.Name == "" {
		return &apperrors.ValidationError{Field: "name", Reason: "is required"}
	}
	if !m.Criticality.Valid() {
		return &apperrors.ValidationError{Field: "criticality", Reason: "unknown level"}
	}
	if m.MinStock < 0 {
		return &apperrors.ValidationError{Field: "min_stock", Reason: "must not be negative"}
	}
	if m.OrderThreshold != nil && m.SafetyThreshold != nil && *m.OrderThreshold <= *m.SafetyThreshold {
		return &apperrors.ValidationError{Field: "order_threshold", Reason: "must exceed safety_threshold"}
	}
	return nil
}

// MaterialRiskSnapshot is the per-material view exposed to the presentation
// layer: current stock plus every derived risk figure.
type MaterialRiskSnapshot struct {
	MaterialID           uuid.UUID   `json:"material_id"`
	Code                 string      `json:"code"`
	Name                 string      `json:"name"`
	Unit                 string      `json:"unit"`
	CurrentStock         float64     `json:"current_stock"`
	MinStock             float64     `json:"min_stock"`
	EffectiveSafety      float64     `json:"effective_safety"`
	EffectiveOrder       float64     `json:"effective_order"`
	RiskState            RiskState   `json:"risk_state"`
	EffectiveCriticality Criticality `json:"effective_criticality"`
	CoverageDays         *float64    `json:"coverage_days"`
	AvgDailyConsumption  *float64    `json:"avg_daily_consumption"`
	LeadTimeDays         int         `json:"lead_time_days"`
	SupplierID           *uuid.UUID  `json:"supplier_id"`
}

// RiskIndex is the aggregated 0-100 plant gauge.
type RiskIndex struct {
	Value     int                `json:"value"`
	Status    RiskIndexStatus    `json:"status"`
	Breakdown RiskIndexBreakdown `json:"breakdown"`
}

type RiskIndexStatus string

const (
	RiskIndexHealthy  RiskIndexStatus = "HEALTHY"
	RiskIndexWatch    RiskIndexStatus = "WATCH"
	RiskIndexCritical RiskIndexStatus = "CRITICAL"
)

type RiskIndexBreakdown struct {
	Blocking    int `json:"blocking"`
	OutOfStock  int `json:"out_of_stock"`
	BelowSafety int `json:"below_safety"`
	ToOrder     int `json:"to_order"`
	Healthy     int `json:"healthy"`
}

// ReorderSuggestion is the advisor's proposal for one material.
type ReorderSuggestion struct {
	MaterialID         uuid.UUID       `json:"material_id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	SuggestedQuantity  float64         `json:"suggested_quantity"`
	Priority           ReorderPriority `json:"priority"`
	SupplierID         *uuid.UUID      `json:"supplier_id"`
	LeadTimeDays       int             `json:"lead_time_days"`
	EstimatedCostCents int64           `json:"estimated_cost_cents"`
}

type ReorderPriority string

const (
	ReorderUrgent ReorderPriority = "URGENT"
	ReorderHigh   ReorderPriority = "HIGH"
	ReorderNormal ReorderPriority = "NORMAL"
)
