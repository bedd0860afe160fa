package handler

import (
	"net/http"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Resumen godoc
// @Summary      Dashboard
// @Description  Ventas, costo y ganancia por producto del día y del mes, con totales de caja.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        mes query string false "Mes YYYY-MM (default: actual)"
// @Param        dia query string false "Día YYYY-MM-DD (default: hoy)"
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Resumen(c *gin.Context) {
	var filter dto.DashboardFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
