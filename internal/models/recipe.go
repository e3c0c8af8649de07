package models

import (
	"time"

	"github.com/google/uuid"
)

type Recipe struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RecipeIngredient binds a material to a recipe. Only mandatory,
// stock-affecting ingredients participate in production gating.
type RecipeIngredient struct {
	ID               uuid.UUID `json:"id" db:"id"`
	RecipeID         uuid.UUID `json:"recipe_id" db:"recipe_id"`
	MaterialID       uuid.UUID `json:"material_id" db:"material_id"`
	PerBatchQuantity float64   `json:"per_batch_quantity" db:"per_batch_quantity"`
	Mandatory        bool      `json:"mandatory" db:"mandatory"`
	StockAffecting   bool      `json:"stock_affecting" db:"stock_affecting"`
}

// ProductionGateResult is the admission decision for a production run.
type ProductionGateResult struct {
	CanStart bool              `json:"can_start"`
	Blockers []ShortageBlocker `json:"blockers"`
}

type ShortageBlocker struct {
	MaterialID uuid.UUID `json:"material_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Required   float64   `json:"required"`
	Available  float64   `json:"available"`
	Shortage   float64   `json:"shortage"`
}
