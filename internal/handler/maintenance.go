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

type MaintenanceHandler struct{ svc service.MaintenanceService }

func NewMaintenanceHandler(svc service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc}
}

// Create godoc
// @Summary      Register a maintenance job
// @Tags         maintenance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateMaintenanceRequest true "Job detail"
// @Success      201  {object} dto.MaintenanceResponse
// @Router       /v1/maintenance [post]
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req dto.CreateMaintenanceRequest
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

// UpdateStatus godoc
// @Summary      Advance a maintenance job
// @Description  received → in_progress → done. Finishing a linked machine returns it to stock.
// @Tags         maintenance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                             true "Job UUID"
// @Param        body body dto.UpdateMaintenanceStatusRequest true "Target status"
// @Success      200  {object} dto.MaintenanceResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/maintenance/{id}/status [put]
func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateMaintenanceStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), middleware.GetScope(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Fetch one maintenance job
// @Tags         maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Job UUID"
// @Success      200 {object} dto.MaintenanceResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/maintenance/{id} [get]
func (h *MaintenanceHandler) Get(c *gin.Context) {
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

// List godoc
// @Summary      List maintenance jobs
// @Tags         maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string false "Branch UUID"
// @Param        status    query string false "received | in_progress | done | all"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Records per page (default 50)"
// @Success      200 {object} dto.MaintenanceListResponse
// @Router       /v1/maintenance [get]
func (h *MaintenanceHandler) List(c *gin.Context) {
	var filter dto.MaintenanceFilter
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
