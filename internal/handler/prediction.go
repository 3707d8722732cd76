package handler

import (
	"github.com/deppfellow/bridge-api/internal/model"
	"github.com/deppfellow/bridge-api/internal/server"
	"github.com/deppfellow/bridge-api/internal/service"
	"github.com/labstack/echo/v4"
)

type PredictionHandler struct {
	Handler
	predictionService *service.PredictionService
}

func NewPredictionHandler(s *server.Server, predictionService *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		Handler:           NewHandler(s),
		predictionService: predictionService,
	}
}

// Predict handles POST /predict.
func (h *PredictionHandler) Predict(c echo.Context, req *model.PredictRequest) (model.PredictResponse, error) {
	return model.PredictResponse{
		Prediction: h.predictionService.Predict(*req.Input1, *req.Output2),
	}, nil
}
