package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"provender/internal/common"
	"provender/internal/services"
)

type AlertHandlers struct {
	alertService services.AlertService
}

func NewAlertHandlers(alertService services.AlertService) *AlertHandlers {
	return &AlertHandlers{alertService: alertService}
}

type ListAlertsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListAlerts handles GET /v1/alerts. Only active (unacknowledged) alerts are
// returned; acknowledged ones live in the audit trail.
func (h *AlertHandlers) ListAlerts(c echo.Context) error {
	var req ListAlertsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	alerts, err := h.alertService.ListActive(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// AlertCounts handles GET /v1/alerts/counts, the dashboard badge numbers.
func (h *AlertHandlers) AlertCounts(c echo.Context) error {
	counts, err := h.alertService.Counts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

// Acknowledge handles POST /v1/alerts/:id/acknowledge.
func (h *AlertHandlers) Acknowledge(c echo.Context) error {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid alert id")
	}
	actor, ok := common.GetActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing actor")
	}

	if err := h.alertService.Acknowledge(c.Request().Context(), alertID, actor.ID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "acknowledged"})
}

type PostponeAlertsRequest struct {
	DurationHours int    `json:"duration_hours" validate:"required"`
	Reason        string `json:"reason" validate:"required"`
}

// PostponeAlerts handles POST /v1/materials/:id/postpone-alerts.
func (h *AlertHandlers) PostponeAlerts(c echo.Context) error {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid material id")
	}
	actor, ok := common.GetActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing actor")
	}

	var req PostponeAlertsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	duration := time.Duration(req.DurationHours) * time.Hour
	if err := h.alertService.Postpone(c.Request().Context(), materialID, duration, req.Reason, actor.ID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":          "postponed",
		"postponed_until": time.Now().Add(duration),
	})
}
