package service

import (
	"github.com/deppfellow/bridge-api/internal/repository"
	"github.com/deppfellow/bridge-api/internal/server"
)

type Services struct {
	Bridge     *BridgeService
	Prediction *PredictionService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Bridge:     NewBridgeService(repos.Bridge, s.Logger),
		Prediction: NewPredictionService(),
	}, nil
}
