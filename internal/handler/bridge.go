package handler

import (
	"github.com/deppfellow/bridge-api/internal/model"
	"github.com/deppfellow/bridge-api/internal/server"
	"github.com/deppfellow/bridge-api/internal/service"
	"github.com/labstack/echo/v4"
)

// BridgeHandler serves bridge survey records.
type BridgeHandler struct {
	Handler
	bridgeService *service.BridgeService
}

func NewBridgeHandler(s *server.Server, bridgeService *service.BridgeService) *BridgeHandler {
	return &BridgeHandler{
		Handler:       NewHandler(s),
		bridgeService: bridgeService,
	}
}

// GetByProjectCode handles POST /data_by_bridge_code.
func (h *BridgeHandler) GetByProjectCode(c echo.Context, req *model.GetByProjectCodeRequest) ([]model.BridgeRecord, error) {
	records, err := h.bridgeService.FetchByProjectCode(c.Request().Context(), *req.ProjectCode)
	return nonNil(records), err
}

// GetAll handles POST /all_data.
func (h *BridgeHandler) GetAll(c echo.Context) ([]model.BridgeRecord, error) {
	records, err := h.bridgeService.FetchAll(c.Request().Context())
	return nonNil(records), err
}

// nonNil makes an empty result encode as [] rather than null.
func nonNil(records []model.BridgeRecord) []model.BridgeRecord {
	if records == nil {
		return []model.BridgeRecord{}
	}
	return records
}
