package handler

import (
	"net/http"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/middleware"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// CarritoHandler serves the acting user's cart and its confirmation.
type CarritoHandler struct {
	carrito service.CarritoService
	ventas  service.VentaService
}

func NewCarritoHandler(carrito service.CarritoService, ventas service.VentaService) *CarritoHandler {
	return &CarritoHandler{carrito: carrito, ventas: ventas}
}

func (h *CarritoHandler) Obtener(c *gin.Context) {
	resp, err := h.carrito.Obtener(c.Request.Context(), middleware.UsuarioID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) AgregarProducto(c *gin.Context) {
	var req dto.AgregarProductoCarritoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.carrito.AgregarProducto(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) AgregarPromocion(c *gin.Context) {
	var req dto.AgregarPromocionCarritoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.carrito.AgregarPromocion(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) Quitar(c *gin.Context) {
	resp, err := h.carrito.Quitar(c.Request.Context(), middleware.UsuarioID(c), c.Param("key"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) Vaciar(c *gin.Context) {
	if err := h.carrito.Vaciar(c.Request.Context(), middleware.UsuarioID(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Confirmar godoc
// @Summary      Confirmar venta
// @Description  Convierte el carrito en una venta en una sola transacción: detalles, descuento de stock, movimiento de caja y, con cliente_id, la venta fiada.
// @Tags         carrito
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ConfirmarVentaRequest true "Datos de cierre"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/carrito/confirmar [post]
func (h *CarritoHandler) Confirmar(c *gin.Context) {
	var req dto.ConfirmarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ventas.ConfirmarVenta(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
