package router

import (
	"github.com/deppfellow/bridge-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the
// record API: health and documentation.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	// Health status endpoint (used by load balancers and monitors).
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/openapi.json", h.OpenAPI.ServeJSON)
	r.GET("/openapi.yaml", h.OpenAPI.ServeYAML)

	// Docs UI endpoint; the page loads /openapi.json.
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
