package handler

import (
	"net/http"

	"machtrade/internal/apierror"
	"machtrade/internal/dto"
	"machtrade/internal/middleware"
	"machtrade/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MachinesHandler struct{ svc service.MachineService }

func NewMachinesHandler(svc service.MachineService) *MachinesHandler {
	return &MachinesHandler{svc: svc}
}

// Create godoc
// @Summary      Register a machine in inventory
// @Tags         machines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateMachineRequest true "Machine detail"
// @Success      201  {object} dto.MachineResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/machines [post]
func (h *MachinesHandler) Create(c *gin.Context) {
	var req dto.CreateMachineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetActor(c), middleware.GetScope(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary      Update machine data
// @Tags         machines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Machine UUID"
// @Param        body body dto.UpdateMachineRequest true "Fields to update"
// @Success      200  {object} dto.MachineResponse
// @Router       /v1/machines/{id} [put]
func (h *MachinesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateMachineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetScope(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Fetch one machine
// @Tags         machines
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Machine UUID"
// @Success      200 {object} dto.MachineResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/machines/{id} [get]
func (h *MachinesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetScope(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetBySerial godoc
// @Summary      Look up a machine by serial number
// @Tags         machines
// @Produce      json
// @Security     BearerAuth
// @Param        serial path string true "Serial number"
// @Success      200 {object} dto.MachineResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/machines/serial/{serial} [get]
func (h *MachinesHandler) GetBySerial(c *gin.Context) {
	serial := c.Param("serial")
	if serial == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Serial number required"))
		return
	}
	resp, err := h.svc.GetBySerial(c.Request.Context(), middleware.GetScope(c), serial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List machines
// @Tags         machines
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string false "Branch UUID"
// @Param        status    query string false "in_stock | sold | maintenance | all"
// @Param        brand     query string false "Brand substring"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Records per page (default 50)"
// @Success      200 {object} dto.MachineListResponse
// @Router       /v1/machines [get]
func (h *MachinesHandler) List(c *gin.Context) {
	var filter dto.MachineFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.GetScope(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
