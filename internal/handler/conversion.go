package handler

import (
	"net/http"

	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/service"

	"github.com/gin-gonic/gin"
)

type ConversionHandler struct{ svc service.ConversionService }

func NewConversionHandler(svc service.ConversionService) *ConversionHandler {
	return &ConversionHandler{svc: svc}
}

func (h *ConversionHandler) Convert(c *gin.Context) {
	var req dto.ConvertRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Convert(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
