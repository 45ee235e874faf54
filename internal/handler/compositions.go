package handler

import (
	"net/http"
	"os"

	"github.com/Joaovenera/wms-sub005/internal/apierror"
	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CompositionsHandler struct {
	svc        service.CompositionService
	calculator service.CompositionCalculator
}

func NewCompositionsHandler(svc service.CompositionService, calculator service.CompositionCalculator) *CompositionsHandler {
	return &CompositionsHandler{svc: svc, calculator: calculator}
}

// Calculate runs the stateless feasibility calculation without persisting.
func (h *CompositionsHandler) Calculate(c *gin.Context) {
	var req dto.CalculateCompositionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.calculator.Calculate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositionsHandler) Save(c *gin.Context) {
	var req dto.SaveCompositionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CompositionsHandler) List(c *gin.Context) {
	var filter dto.CompositionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositionsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositionsHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositionsHandler) Assemble(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.AssembleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Assemble(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositionsHandler) Disassemble(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.DisassembleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Disassemble(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CompositionsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateReport queues the async PDF render. 202 means "accepted, poll the
// download endpoint".
func (h *CompositionsHandler) GenerateReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.GenerateReport(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// DownloadReport serves the rendered PDF. 404 until the worker has produced
// the file.
func (h *CompositionsHandler) DownloadReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	path := h.svc.ReportPath(id)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("report not generated yet"))
		return
	}
	c.FileAttachment(path, "composition-"+id.String()+".pdf")
}
