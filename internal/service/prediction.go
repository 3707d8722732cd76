package service

// PredictionService is a placeholder: it performs no inference.
type PredictionService struct{}

func NewPredictionService() *PredictionService {
	return &PredictionService{}
}

// Predict joins the two inputs with a "+".
func (s *PredictionService) Predict(input1, output2 string) string {
	return input1 + "+" + output2
}
