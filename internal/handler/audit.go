package handler

import (
	"net/http"

	"machtrade/internal/dto"
	"machtrade/internal/middleware"
	"machtrade/internal/service"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct{ svc service.AuditService }

func NewAuditHandler(svc service.AuditService) *AuditHandler { return &AuditHandler{svc: svc} }

// List godoc
// @Summary      List audit entries
// @Description  Paginated audit trail scoped to the caller's branches.
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string false "Branch UUID"
// @Param        action    query string false "e.g. sale.create"
// @Param        entity    query string false "e.g. machine_sale"
// @Param        entity_id query string false "Entity UUID"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Records per page (default 50)"
// @Success      200 {object} dto.AuditListResponse
// @Router       /v1/audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter dto.AuditFilter
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
