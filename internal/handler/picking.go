package handler

import (
	"net/http"

	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/service"

	"github.com/gin-gonic/gin"
)

type PickingHandler struct{ svc service.PickingService }

func NewPickingHandler(svc service.PickingService) *PickingHandler {
	return &PickingHandler{svc: svc}
}

func (h *PickingHandler) Optimize(c *gin.Context) {
	var req dto.OptimizePickingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.OptimizePicking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
