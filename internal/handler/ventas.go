package handler

import (
	"net/http"
	"path/filepath"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// ListarVentas godoc
// @Summary      Listar ventas
// @Description  Lista paginada de ventas, más recientes primero.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        desde query string false "Fecha inicial YYYY-MM-DD"
// @Param        hasta query string false "Fecha final YYYY-MM-DD (inclusive)"
// @Param        page  query int    false "Página (default 1)"
// @Param        limit query int    false "Registros por página (default 50)"
// @Success      200   {object} dto.VentaListResponse
// @Failure      422   {object} apierror.APIError
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket streams the PDF receipt of a sale.
func (h *VentasHandler) Ticket(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	path, err := h.svc.TicketPDF(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
