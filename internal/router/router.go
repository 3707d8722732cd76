// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"net/http"

	"github.com/deppfellow/bridge-api/internal/handler"
	"github.com/deppfellow/bridge-api/internal/middleware"
	"github.com/deppfellow/bridge-api/internal/model"
	"github.com/deppfellow/bridge-api/internal/server"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// NewRouter builds the Echo instance with the middleware chain, the
// global error handler and every route.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Pre(echoMiddleware.RemoveTrailingSlash())

	// The request id is assigned before the transaction and the request
	// logger read it.
	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.Global.BodyLimit(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)
	registerBridgeRoutes(router, h)

	return router
}

func registerBridgeRoutes(r *echo.Echo, h *handler.Handlers) {
	r.POST("/data_by_bridge_code", handler.Handle(
		h.Bridge.Handler,
		h.Bridge.GetByProjectCode,
		http.StatusOK,
		&model.GetByProjectCodeRequest{},
	))

	r.POST("/all_data", handler.HandleNoBody(
		h.Bridge.Handler,
		h.Bridge.GetAll,
		http.StatusOK,
	))

	r.POST("/predict", handler.Handle(
		h.Prediction.Handler,
		h.Prediction.Predict,
		http.StatusOK,
		&model.PredictRequest{},
	))
}
