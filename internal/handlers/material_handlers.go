package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"provender/internal/models"
	"provender/internal/repositories"
	"provender/internal/services"
)

type MaterialHandlers struct {
	materialService services.MaterialService
	materialRepo    repositories.MaterialRepository
	ledger          services.StockLedgerService
}

func NewMaterialHandlers(materialService services.MaterialService, materialRepo repositories.MaterialRepository, ledger services.StockLedgerService) *MaterialHandlers {
	return &MaterialHandlers{materialService: materialService, materialRepo: materialRepo, ledger: ledger}
}

type MaterialRequest struct {
	Code                string             `json:"code" validate:"required"`
	Name                string             `json:"name" validate:"required"`
	Unit                string             `json:"unit" validate:"required"`
	MinStock            float64            `json:"min_stock" validate:"gte=0"`
	SafetyThreshold     *float64           `json:"safety_threshold" validate:"omitempty,gte=0"`
	OrderThreshold      *float64           `json:"order_threshold" validate:"omitempty,gte=0"`
	LeadTimeDays        int                `json:"lead_time_days" validate:"gte=0"`
	AvgDailyConsumption *float64           `json:"avg_daily_consumption" validate:"omitempty,gte=0"`
	Criticality         models.Criticality `json:"criticality" validate:"omitempty,oneof=LOW MEDIUM HIGH BLOCKING"`
	SupplierID          *uuid.UUID         `json:"supplier_id"`
	StockTracked        *bool              `json:"stock_tracked"`
	Active              *bool              `json:"active"`
}

func (r *MaterialRequest) toMaterial() *models.Material {
	material := &models.Material{
		Code:                r.Code,
		Name:                r.Name,
		Unit:                r.Unit,
		MinStock:            r.MinStock,
		SafetyThreshold:     r.SafetyThreshold,
		OrderThreshold:      r.OrderThreshold,
		LeadTimeDays:        r.LeadTimeDays,
		AvgDailyConsumption: r.AvgDailyConsumption,
		Criticality:         r.Criticality,
		SupplierID:          r.SupplierID,
		StockTracked:        true,
		Active:              true,
	}
	if r.StockTracked != nil {
		material.StockTracked = *r.StockTracked
	}
	if r.Active != nil {
		material.Active = *r.Active
	}
	return material
}

// CreateMaterial handles POST /v1/materials.
func (h *MaterialHandlers) CreateMaterial(c echo.Context) error {
	var req MaterialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	material := req.toMaterial()
	if err := h.materialService.Create(c.Request().Context(), material); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, material)
}

// UpdateMaterial handles PUT /v1/materials/:id.
func (h *MaterialHandlers) UpdateMaterial(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid material id")
	}

	var req MaterialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	material := req.toMaterial()
	material.ID = id
	if err := h.materialService.Update(c.Request().Context(), material); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, material)
}

type ListMaterialsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListMaterials handles GET /v1/materials.
func (h *MaterialHandlers) ListMaterials(c echo.Context) error {
	var req ListMaterialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	materials, err := h.materialRepo.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"materials": materials,
		"count":     len(materials),
	})
}

// GetMaterial handles GET /v1/materials/:id.
func (h *MaterialHandlers) GetMaterial(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid material id")
	}
	material, err := h.materialRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "material not found")
	}
	return c.JSON(http.StatusOK, material)
}

type RecordMovementRequest struct {
	Direction models.MovementDirection `json:"direction" validate:"required,oneof=IN OUT"`
	Quantity  float64                  `json:"quantity" validate:"required,gt=0"`
	OriginRef string                   `json:"origin_ref"`
}

// RecordMovement handles POST /v1/materials/:id/movements. The ledger is
// append-only; corrections go through the soft-delete endpoint.
func (h *MaterialHandlers) RecordMovement(c echo.Context) error {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid material id")
	}

	var req RecordMovementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	movement := &models.StockMovement{
		MaterialID: materialID,
		Direction:  req.Direction,
		Quantity:   req.Quantity,
		OriginRef:  req.OriginRef,
	}
	if err := h.ledger.RecordMovement(c.Request().Context(), movement); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, movement)
}

// CorrectMovement handles DELETE /v1/movements/:id: soft-deletes the row and
// leaves the correction in the audit trail.
func (h *MaterialHandlers) CorrectMovement(c echo.Context) error {
	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movement id")
	}
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	if err := h.ledger.CorrectMovement(c.Request().Context(), movementID, actor.ID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "corrected"})
}
