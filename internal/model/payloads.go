package model

import "github.com/deppfellow/bridge-api/internal/validation"

// GetByProjectCodeRequest is the body of POST /data_by_bridge_code.
//
// ProjectCode is a pointer so a missing key fails validation while an
// explicit empty string is accepted (it simply matches nothing).
// encoding/json matches keys case-insensitively, so "project_code" binds too.
type GetByProjectCodeRequest struct {
	ProjectCode *string `json:"Project_Code" validate:"required"`
}

func (r *GetByProjectCodeRequest) Validate() error {
	return validation.ValidateStruct(r)
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Input1  *string `json:"input1" validate:"required"`
	Output2 *string `json:"output2" validate:"required"`
}

func (r *PredictRequest) Validate() error {
	return validation.ValidateStruct(r)
}

// PredictResponse is the reply of POST /predict.
type PredictResponse struct {
	Prediction string `json:"prediction"`
}
