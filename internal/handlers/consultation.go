package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"agencyio/internal/domain"
	"agencyio/internal/services"
)

// ConsultationHandler exposes the consultation booking resource
type ConsultationHandler struct {
	service *services.BookingService
}

// NewConsultationHandler creates a new consultation handler
func NewConsultationHandler(service *services.BookingService) *ConsultationHandler {
	return &ConsultationHandler{service: service}
}

// Register mounts the consultation routes
func (h *ConsultationHandler) Register(e *echo.Echo) {
	g := e.Group("/api/consultations")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.POST("/bulk_status", h.BulkStatus)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/confirm", h.Confirm)
	g.POST("/:id/cancel", h.Cancel)
}

// Create handles POST /api/consultations
func (h *ConsultationHandler) Create(c echo.Context) error {
	var input services.ConsultationInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	consultation, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, consultation)
}

// List handles GET /api/consultations
func (h *ConsultationHandler) List(c echo.Context) error {
	filters := services.ListFilters{
		Status:      c.QueryParam("status"),
		ProjectType: c.QueryParam("project_type"),
		Budget:      c.QueryParam("budget"),
		Timeline:    c.QueryParam("timeline"),
		Search:      c.QueryParam("search"),
	}
	if skip, err := strconv.Atoi(c.QueryParam("skip")); err == nil {
		filters.Skip = skip
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filters.Limit = limit
	}

	consultations, err := h.service.List(c.Request().Context(), filters)
	if err != nil {
		return writeError(c, err)
	}
	if consultations == nil {
		consultations = []domain.Consultation{}
	}
	return c.JSON(http.StatusOK, consultations)
}

// Get handles GET /api/consultations/:id
func (h *ConsultationHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Consultation not found"})
	}
	consultation, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, consultation)
}

// Update handles PUT /api/consultations/:id
func (h *ConsultationHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Consultation not found"})
	}
	var input services.ConsultationInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	consultation, err := h.service.Update(c.Request().Context(), id, input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, consultation)
}

// Patch handles PATCH /api/consultations/:id
func (h *ConsultationHandler) Patch(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Consultation not found"})
	}
	var patch services.ConsultationPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	consultation, err := h.service.PartialUpdate(c.Request().Context(), id, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, consultation)
}

// Delete handles DELETE /api/consultations/:id
func (h *ConsultationHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Consultation not found"})
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Confirm handles POST /api/consultations/:id/confirm
func (h *ConsultationHandler) Confirm(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Consultation not found"})
	}
	if _, err := h.service.Confirm(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "Consultation confirmed"})
}

// Cancel handles POST /api/consultations/:id/cancel
func (h *ConsultationHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Consultation not found"})
	}
	if _, err := h.service.Cancel(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "Consultation cancelled"})
}

// BulkStatusRequest is the payload for the administrative bulk action
type BulkStatusRequest struct {
	IDs    []uint `json:"ids"`
	Status string `json:"status"`
}

// BulkStatusResponse reports the bulk action outcome
type BulkStatusResponse struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// BulkStatus handles POST /api/consultations/bulk_status
func (h *ConsultationHandler) BulkStatus(c echo.Context) error {
	var req BulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ids must not be empty"})
	}

	updated, skipped, err := h.service.BulkUpdateStatus(c.Request().Context(), req.IDs, domain.Status(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, BulkStatusResponse{Updated: updated, Skipped: skipped})
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
