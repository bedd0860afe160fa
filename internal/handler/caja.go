package handler

import (
	"net/http"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/middleware"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajaHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarMovimiento godoc
// @Summary      Eliminar movimiento de caja
// @Description  Si el movimiento corresponde a una venta, borra también la venta, sus detalles y su venta fiada. Los pagos se conservan.
// @Tags         caja
// @Security     BearerAuth
// @Param        id path string true "UUID del movimiento"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/caja/movimientos/{id} [delete]
func (h *CajaHandler) EliminarMovimiento(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.EliminarMovimiento(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Resumen godoc
// @Summary      Resumen de caja
// @Description  Totales del mes por tipo, caja disponible histórica y deuda pendiente de fiados.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        mes query string false "Mes YYYY-MM (default: actual)"
// @Success      200 {object} dto.ResumenCajaResponse
// @Router       /v1/caja/resumen [get]
func (h *CajaHandler) Resumen(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), filter.Mes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
