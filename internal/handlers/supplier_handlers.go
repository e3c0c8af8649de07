package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"provender/internal/models"
	"provender/internal/services"
)

type SupplierHandlers struct {
	supplierService services.SupplierService
}

func NewSupplierHandlers(supplierService services.SupplierService) *SupplierHandlers {
	return &SupplierHandlers{supplierService: supplierService}
}

type CreateSupplierRequest struct {
	Name         string  `json:"name" validate:"required"`
	Email        *string `json:"email" validate:"omitempty,email"`
	LeadTimeDays int     `json:"lead_time_days" validate:"gte=0"`
}

// CreateSupplier handles POST /v1/suppliers.
func (h *SupplierHandlers) CreateSupplier(c echo.Context) error {
	var req CreateSupplierRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	supplier := &models.Supplier{
		Name:         req.Name,
		Email:        req.Email,
		LeadTimeDays: req.LeadTimeDays,
		Active:       true,
	}
	if err := h.supplierService.Create(c.Request().Context(), supplier); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, supplier)
}

// ListSuppliers handles GET /v1/suppliers.
func (h *SupplierHandlers) ListSuppliers(c echo.Context) error {
	suppliers, err := h.supplierService.ListActive(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"suppliers": suppliers,
		"count":     len(suppliers),
	})
}

// GetSupplier handles GET /v1/suppliers/:id.
func (h *SupplierHandlers) GetSupplier(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid supplier id")
	}
	supplier, err := h.supplierService.GetByID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "supplier not found")
	}
	return c.JSON(http.StatusOK, supplier)
}

// Performance handles GET /v1/suppliers/:id/performance.
func (h *SupplierHandlers) Performance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid supplier id")
	}
	performance, err := h.supplierService.Performance(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "supplier not found")
	}
	return c.JSON(http.StatusOK, performance)
}
