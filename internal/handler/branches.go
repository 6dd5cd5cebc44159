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

type BranchesHandler struct{ svc service.BranchService }

func NewBranchesHandler(svc service.BranchService) *BranchesHandler {
	return &BranchesHandler{svc: svc}
}

// Create godoc
// @Summary      Open a branch (global only)
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateBranchRequest true "Branch detail"
// @Success      201  {object} dto.BranchResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/branches [post]
func (h *BranchesHandler) Create(c *gin.Context) {
	var req dto.CreateBranchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary      Update a branch (global only)
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Branch UUID"
// @Param        body body dto.UpdateBranchRequest true "Fields to update"
// @Success      200  {object} dto.BranchResponse
// @Router       /v1/branches/{id} [put]
func (h *BranchesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateBranchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List branches visible to the caller
// @Tags         branches
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.BranchResponse
// @Router       /v1/branches [get]
func (h *BranchesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
