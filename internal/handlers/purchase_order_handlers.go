package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"provender/internal/common"
	"provender/internal/models"
	"provender/internal/services"
)

type PurchaseOrderHandlers struct {
	orderService services.PurchaseOrderService
	documents    services.DocumentService
}

func NewPurchaseOrderHandlers(orderService services.PurchaseOrderService, documents services.DocumentService) *PurchaseOrderHandlers {
	return &PurchaseOrderHandlers{orderService: orderService, documents: documents}
}

func actorOr401(c echo.Context) (common.Actor, error) {
	actor, ok := common.GetActorFromContext(c.Request().Context())
	if !ok {
		return common.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing actor")
	}
	return actor, nil
}

type CreateOrderRequest struct {
	SupplierID uuid.UUID                 `json:"supplier_id" validate:"required"`
	Lines      []services.OrderLineInput `json:"lines" validate:"required,min=1,dive"`
}

// CreateOrder handles POST /v1/purchase-orders.
func (h *PurchaseOrderHandlers) CreateOrder(c echo.Context) error {
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.orderService.Create(c.Request().Context(), req.SupplierID, req.Lines, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, order)
}

type CreateFromRequisitionRequest struct {
	RequisitionID uuid.UUID `json:"requisition_id" validate:"required"`
}

// CreateFromRequisition handles POST /v1/purchase-orders/from-requisition.
func (h *PurchaseOrderHandlers) CreateFromRequisition(c echo.Context) error {
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var req CreateFromRequisitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	orders, err := h.orderService.CreateFromRequisition(c.Request().Context(), req.RequisitionID, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder handles GET /v1/purchase-orders/:id.
func (h *PurchaseOrderHandlers) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	order, err := h.orderService.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

type ListOrdersRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListOrders handles GET /v1/purchase-orders.
func (h *PurchaseOrderHandlers) ListOrders(c echo.Context) error {
	var req ListOrdersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	orders, err := h.orderService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// SendOrder handles POST /v1/purchase-orders/:id/send.
func (h *PurchaseOrderHandlers) SendOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var input services.SendOrderInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	order, err := h.orderService.Send(c.Request().Context(), id, &input, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

type VersionedRequest struct {
	Version int `json:"version" validate:"required,gte=1"`
}

// ConfirmOrder handles POST /v1/purchase-orders/:id/confirm.
func (h *PurchaseOrderHandlers) ConfirmOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var req VersionedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.orderService.Confirm(c.Request().Context(), id, req.Version, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

type ReceiveOrderRequest struct {
	Version int                         `json:"version" validate:"required,gte=1"`
	Lines   []services.ReceiveLineInput `json:"lines" validate:"required,min=1,dive"`
}

// ReceiveOrder handles POST /v1/purchase-orders/:id/receive.
func (h *PurchaseOrderHandlers) ReceiveOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var req ReceiveOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.orderService.Receive(c.Request().Context(), id, req.Version, req.Lines, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

type CancelOrderRequest struct {
	Version        int    `json:"version" validate:"required,gte=1"`
	Reason         string `json:"reason" validate:"required,min=10"`
	IdempotencyKey string `json:"idempotency_key"`
}

// CancelOrder handles POST /v1/purchase-orders/:id/cancel.
func (h *PurchaseOrderHandlers) CancelOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var req CancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.orderService.Cancel(c.Request().Context(), id, req.Version, req.Reason, req.IdempotencyKey, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

type LockOrderRequest struct {
	Holder string `json:"holder" validate:"required"`
}

// LockOrder handles POST /v1/purchase-orders/:id/lock. The lock is advisory:
// it tells competing edit screens who is working on the order, nothing more.
func (h *PurchaseOrderHandlers) LockOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req LockOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	status, err := h.orderService.TryAdvisoryLock(c.Request().Context(), id, req.Holder)
	if err != nil {
		return httpError(err)
	}
	code := http.StatusOK
	if !status.Granted {
		code = http.StatusConflict
	}
	return c.JSON(code, status)
}

// UploadProof handles POST /v1/purchase-orders/:id/proof, multipart upload of
// a proof-of-send document for manual-channel orders.
func (h *PurchaseOrderHandlers) UploadProof(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.orderService.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if order.SendChannel == nil || *order.SendChannel != models.SendChannelManual {
		return echo.NewHTTPError(http.StatusConflict, "proof documents apply to manual-channel orders only")
	}

	file, err := c.FormFile("document")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing document file")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable document file")
	}
	defer src.Close()

	objectKey, err := h.orderService.AttachProof(c.Request().Context(), id, order.Reference, file.Filename, src, file.Size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"object_key": objectKey})
}

// ProofURL handles GET /v1/purchase-orders/:id/proof-url.
func (h *PurchaseOrderHandlers) ProofURL(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.orderService.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if order.ProofDocument == nil {
		return echo.NewHTTPError(http.StatusNotFound, "order has no proof document")
	}

	url, err := h.documents.ProofURL(c.Request().Context(), *order.ProofDocument, 15*time.Minute)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
