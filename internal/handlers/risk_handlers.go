package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"provender/internal/services"
)

// RiskHandlers exposes the read-only risk views: the per-material snapshot
// table and the aggregated plant index.
type RiskHandlers struct {
	ledger    services.StockLedgerService
	riskIndex services.RiskIndexService
}

func NewRiskHandlers(ledger services.StockLedgerService, riskIndex services.RiskIndexService) *RiskHandlers {
	return &RiskHandlers{ledger: ledger, riskIndex: riskIndex}
}

// ListMaterialRisk handles GET /v1/risk/materials.
func (h *RiskHandlers) ListMaterialRisk(c echo.Context) error {
	snapshots, err := h.ledger.RiskSnapshots(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"materials": snapshots,
		"count":     len(snapshots),
	})
}

// PlantIndex handles GET /v1/risk/index.
func (h *RiskHandlers) PlantIndex(c echo.Context) error {
	index, err := h.riskIndex.PlantIndex(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, index)
}
