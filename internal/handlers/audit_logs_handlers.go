package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"provender/internal/models"
	"provender/internal/services"
)

type AuditLogsHandlers struct {
	auditService services.AuditLogsService
}

func NewAuditLogsHandlers(auditService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditService: auditService}
}

type ListAuditLogsRequest struct {
	TableName *string `query:"table_name"`
	RecordID  *string `query:"record_id"`
	Action    *string `query:"action"`
	Limit     int     `query:"limit"`
	Offset    int     `query:"offset"`
}

// ListAuditLogs handles GET /v1/audit-logs.
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	var req ListAuditLogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}

	logs, err := h.auditService.List(c.Request().Context(), &models.AuditLogFilters{
		TableName: req.TableName,
		RecordID:  req.RecordID,
		Action:    req.Action,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"audit_logs": logs,
		"count":      len(logs),
	})
}
