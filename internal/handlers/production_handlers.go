package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"provender/internal/services"
)

type ProductionHandlers struct {
	gate services.ProductionGateService
}

func NewProductionHandlers(gate services.ProductionGateService) *ProductionHandlers {
	return &ProductionHandlers{gate: gate}
}

type CanStartRequest struct {
	RecipeID   uuid.UUID `query:"recipe_id" validate:"required"`
	BatchCount int       `query:"batch_count" validate:"required,gt=0"`
}

// CanStart handles GET /v1/production/can-start.
func (h *ProductionHandlers) CanStart(c echo.Context) error {
	var req CanStartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.gate.CanStart(c.Request().Context(), req.RecipeID, req.BatchCount)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
