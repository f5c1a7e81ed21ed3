package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RootHandler serves the service discovery document
type RootHandler struct {
	name    string
	version string
}

// NewRootHandler creates a new root handler
func NewRootHandler(name, version string) *RootHandler {
	return &RootHandler{name: name, version: version}
}

// Register mounts the root route
func (h *RootHandler) Register(e *echo.Echo) {
	e.GET("/", h.Root)
}

// Root handles GET / with an informational endpoint map
func (h *RootHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": h.name,
		"version": h.version,
		"endpoints": map[string]string{
			"health":        "/health",
			"metrics":       "/metrics",
			"consultations": "/api/consultations",
		},
	})
}
