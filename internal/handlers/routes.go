package handlers

import (
	"github.com/labstack/echo/v4"

	custommw "provender/internal/middleware"
)

// Handlers groups every HTTP handler for route registration.
type Handlers struct {
	Risk         *RiskHandlers
	Alerts       *AlertHandlers
	Orders       *PurchaseOrderHandlers
	Requisitions *RequisitionHandlers
	Production   *ProductionHandlers
	Suppliers    *SupplierHandlers
	Materials    *MaterialHandlers
	AuditLogs    *AuditLogsHandlers
	Health       *HealthHandlers
}

// RegisterRoutes wires the /v1 API behind the actor middleware; health stays
// open for probes.
func RegisterRoutes(e *echo.Echo, h *Handlers, jwtSecret string) {
	e.GET("/health", h.Health.HealthCheck)
	e.GET("/health/ready", h.Health.Readiness)

	v1 := e.Group("/v1", custommw.JWT(jwtSecret), custommw.ActorFromToken())

	v1.GET("/risk/materials", h.Risk.ListMaterialRisk)
	v1.GET("/risk/index", h.Risk.PlantIndex)

	v1.GET("/alerts", h.Alerts.ListAlerts)
	v1.GET("/alerts/counts", h.Alerts.AlertCounts)
	v1.POST("/alerts/:id/acknowledge", h.Alerts.Acknowledge)

	v1.GET("/materials", h.Materials.ListMaterials)
	v1.POST("/materials", h.Materials.CreateMaterial)
	v1.GET("/materials/:id", h.Materials.GetMaterial)
	v1.PUT("/materials/:id", h.Materials.UpdateMaterial)
	v1.POST("/materials/:id/movements", h.Materials.RecordMovement)
	v1.POST("/materials/:id/postpone-alerts", h.Alerts.PostponeAlerts)
	v1.DELETE("/movements/:id", h.Materials.CorrectMovement)

	v1.POST("/purchase-orders", h.Orders.CreateOrder)
	v1.POST("/purchase-orders/from-requisition", h.Orders.CreateFromRequisition)
	v1.GET("/purchase-orders", h.Orders.ListOrders)
	v1.GET("/purchase-orders/:id", h.Orders.GetOrder)
	v1.POST("/purchase-orders/:id/send", h.Orders.SendOrder)
	v1.POST("/purchase-orders/:id/confirm", h.Orders.ConfirmOrder)
	v1.POST("/purchase-orders/:id/receive", h.Orders.ReceiveOrder)
	v1.POST("/purchase-orders/:id/cancel", h.Orders.CancelOrder)
	v1.POST("/purchase-orders/:id/lock", h.Orders.LockOrder)
	v1.POST("/purchase-orders/:id/proof", h.Orders.UploadProof)
	v1.GET("/purchase-orders/:id/proof-url", h.Orders.ProofURL)

	v1.POST("/requisitions", h.Requisitions.CreateRequisition)
	v1.GET("/requisitions/suggestions", h.Requisitions.Suggestions)
	v1.GET("/requisitions/:id", h.Requisitions.GetRequisition)
	v1.POST("/requisitions/:id/close", h.Requisitions.CloseRequisition)

	v1.GET("/production/can-start", h.Production.CanStart)

	v1.POST("/suppliers", h.Suppliers.CreateSupplier)
	v1.GET("/suppliers", h.Suppliers.ListSuppliers)
	v1.GET("/suppliers/:id", h.Suppliers.GetSupplier)
	v1.GET("/suppliers/:id/performance", h.Suppliers.Performance)

	v1.GET("/audit-logs", h.AuditLogs.ListAuditLogs)
}
