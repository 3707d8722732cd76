// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It parses requests, handles input validation using the
// validation package, and calls the appropriate service layer.
package handler

import (
	"github.com/deppfellow/bridge-api/internal/schema"
	"github.com/deppfellow/bridge-api/internal/server"
	"github.com/deppfellow/bridge-api/internal/service"
)

// Handlers groups all HTTP handlers so router setup passes one object around.
type Handlers struct {
	Health     *HealthHandler
	OpenAPI    *OpenAPIHandler
	Bridge     *BridgeHandler
	Prediction *PredictionHandler
}

func NewHandlers(s *server.Server, services *service.Services) (*Handlers, error) {
	openAPI, err := NewOpenAPIHandler(s, schema.Default())
	if err != nil {
		return nil, err
	}

	return &Handlers{
		Health:     NewHealthHandler(s),
		OpenAPI:    openAPI,
		Bridge:     NewBridgeHandler(s, services.Bridge),
		Prediction: NewPredictionHandler(s, services.Prediction),
	}, nil
}
