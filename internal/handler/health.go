package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/bridge-api/internal/lib/monitor"
	"github.com/deppfellow/bridge-api/internal/middleware"
	"github.com/deppfellow/bridge-api/internal/server"
	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 5 * time.Second

type pingFunc func(ctx context.Context) error

// HealthHandler reports whether the service and its dependencies are
// reachable. The database is required; Redis is optional and only
// degrades the status.
type HealthHandler struct {
	Handler
	database pingFunc
	redis    pingFunc
	monitor  *monitor.Monitor
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{
		Handler: NewHandler(s),
		monitor: s.Monitor,
	}
	if s.DB != nil {
		h.database = s.DB.Ping
	}
	if s.Redis != nil {
		h.redis = func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}
	}
	return h
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
	Background  []monitor.Result       `json:"background,omitempty"`
}

// CheckHealth returns 200 when the database answers and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   start.UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]checkResult),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	dbResult := h.check(ctx, "database", h.database)
	response.Checks["database"] = dbResult
	if dbResult.Status != monitor.StatusHealthy {
		response.Status = "unhealthy"
	}

	if h.redis != nil {
		res := h.check(ctx, "redis", h.redis)
		response.Checks["redis"] = res
		if res.Status != monitor.StatusHealthy && response.Status == "healthy" {
			response.Status = "degraded"
		}
	}

	if h.monitor != nil {
		response.Background = h.monitor.Results()
	}

	if response.Status == "unhealthy" {
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthCheckError("overall", "overall_unhealthy", time.Since(start), "")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Str("status", response.Status).
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) check(ctx context.Context, name string, ping pingFunc) checkResult {
	if ping == nil {
		return checkResult{Status: monitor.StatusUnhealthy, ResponseTime: "0s", Error: name + " not configured"}
	}

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.recordHealthCheckError(name, name+"_unhealthy", elapsed, err.Error())
		return checkResult{
			Status:       monitor.StatusUnhealthy,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return checkResult{
		Status:       monitor.StatusHealthy,
		ResponseTime: elapsed.String(),
	}
}

func (h *HealthHandler) recordHealthCheckError(checkType, errorType string, elapsed time.Duration, message string) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}

	attrs := map[string]interface{}{
		"check_type":       checkType,
		"operation":        "health_check",
		"error_type":       errorType,
		"response_time_ms": elapsed.Milliseconds(),
	}
	if message != "" {
		attrs["error_message"] = message
	}
	app.RecordCustomEvent("HealthCheckError", attrs)
}
