package handler

import (
	"net/http"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/middleware"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type PromocionesHandler struct{ svc service.PromocionService }

func NewPromocionesHandler(svc service.PromocionService) *PromocionesHandler {
	return &PromocionesHandler{svc: svc}
}

func (h *PromocionesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary      Crear promoción
// @Description  Crea el encabezado y sus productos en una sola transacción.
// @Tags         promociones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPromocionRequest true "Promoción"
// @Success      201  {object} dto.PromocionResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/promociones [post]
func (h *PromocionesHandler) Crear(c *gin.Context) {
	var req dto.CrearPromocionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PromocionesHandler) Alternar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Alternar(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PromocionesHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Disponibilidad godoc
// @Summary      Combos disponibles
// @Description  Cantidad de combos que aún pueden venderse, descontando lo reservado en el carrito del usuario.
// @Tags         promociones
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la promoción"
// @Success      200 {object} dto.DisponibilidadResponse
// @Router       /v1/promociones/{id}/disponibilidad [get]
func (h *PromocionesHandler) Disponibilidad(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Disponibilidad(c.Request.Context(), id, middleware.UsuarioID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
