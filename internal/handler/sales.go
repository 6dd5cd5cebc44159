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

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// CreateSale godoc
// @Summary      Register a machine sale
// @Description  One ACID transaction: marks the machine sold, creates the sale, upfront payment, installment schedule and ownership record; dispatches the receipt asynchronously.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Sale detail"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.CreateSale(c.Request.Context(), middleware.GetActor(c), middleware.GetScope(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PayInstallment godoc
// @Summary      Pay one installment
// @Description  Marks the installment paid, records the payment and advances the sale; completes the sale when fully settled.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "Installment UUID"
// @Param        body body dto.PayInstallmentRequest true "Payment detail"
// @Success      200  {object} dto.SaleResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/installments/{id}/pay [post]
func (h *SalesHandler) PayInstallment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.PayInstallmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.PayInstallment(c.Request.Context(), middleware.GetActor(c), middleware.GetScope(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecalculateInstallments godoc
// @Summary      Regenerate the unpaid installment schedule
// @Description  Deletes the unpaid tail and splits the remaining balance over a new number of installments. Paid installments are untouched.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                              true "Sale UUID"
// @Param        body body dto.RecalculateInstallmentsRequest true "New schedule length"
// @Success      200  {object} dto.SaleResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales/{id}/recalculate [post]
func (h *SalesHandler) RecalculateInstallments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.RecalculateInstallmentsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.RecalculateInstallments(c.Request.Context(), middleware.GetActor(c), middleware.GetScope(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VoidSale godoc
// @Summary      Void a sale
// @Description  Unwinds the sale aggregate: deletes payments, installments and ownership, restores the machine to stock. The audit trail keeps a full snapshot.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) VoidSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	if err := h.svc.VoidSale(c.Request.Context(), middleware.GetActor(c), middleware.GetScope(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSale godoc
// @Summary      Fetch one sale with its schedule
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), middleware.GetScope(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSales godoc
// @Summary      List sales
// @Description  Paginated list scoped to the caller's branches.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id   query string false "Branch UUID"
// @Param        customer_id query string false "Customer UUID"
// @Param        status      query string false "ongoing | completed | all"
// @Param        kind        query string false "cash | installment"
// @Param        page        query int    false "Page (default 1)"
// @Param        limit       query int    false "Records per page (default 50)"
// @Success      200 {object} dto.SaleListResponse
// @Router       /v1/sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), middleware.GetScope(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
