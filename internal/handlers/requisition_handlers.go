package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/random"

	"provender/internal/models"
	"provender/internal/repositories"
	"provender/internal/services"
)

type RequisitionHandlers struct {
	requisitionRepo repositories.RequisitionRepository
	advisor         services.RequisitionAdvisorService
}

func NewRequisitionHandlers(requisitionRepo repositories.RequisitionRepository, advisor services.RequisitionAdvisorService) *RequisitionHandlers {
	return &RequisitionHandlers{requisitionRepo: requisitionRepo, advisor: advisor}
}

// Suggestions handles GET /v1/requisitions/suggestions: the advisor's
// per-material reorder proposals, worst risk first on the client side.
func (h *RequisitionHandlers) Suggestions(c echo.Context) error {
	suggestions, err := h.advisor.Suggest(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

type CreateRequisitionRequest struct {
	Lines []struct {
		MaterialID uuid.UUID `json:"material_id" validate:"required"`
		Quantity   float64   `json:"quantity" validate:"required,gt=0"`
	} `json:"lines" validate:"required,min=1,dive"`
}

// CreateRequisition handles POST /v1/requisitions.
func (h *RequisitionHandlers) CreateRequisition(c echo.Context) error {
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var req CreateRequisitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	requisition := &models.Requisition{
		ID:        uuid.New(),
		Reference: fmt.Sprintf("REQ-%d-%s", time.Now().Year(), random.String(6, random.Uppercase)),
		Status:    models.RequisitionOpen,
		CreatedBy: actor.ID,
	}
	for _, line := range req.Lines {
		requisition.Lines = append(requisition.Lines, &models.RequisitionLine{
			ID:            uuid.New(),
			RequisitionID: requisition.ID,
			MaterialID:    line.MaterialID,
			Quantity:      line.Quantity,
		})
	}

	if err := h.requisitionRepo.Create(c.Request().Context(), requisition); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, requisition)
}

// CloseRequisition handles POST /v1/requisitions/:id/close: manual close for
// requisitions abandoned before every order arrives. Receiving the final
// order of a requisition closes it automatically.
func (h *RequisitionHandlers) CloseRequisition(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid requisition id")
	}
	requisition, err := h.requisitionRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "requisition not found")
	}
	if requisition.Status != models.RequisitionOpen {
		return echo.NewHTTPError(http.StatusConflict, "requisition is not open")
	}

	if err := h.requisitionRepo.Close(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "closed"})
}

// GetRequisition handles GET /v1/requisitions/:id.
func (h *RequisitionHandlers) GetRequisition(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid requisition id")
	}
	requisition, err := h.requisitionRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "requisition not found")
	}
	return c.JSON(http.StatusOK, requisition)
}
