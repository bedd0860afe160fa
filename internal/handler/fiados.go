package handler

import (
	"net/http"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/middleware"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type FiadosHandler struct{ svc service.FiadoService }

func NewFiadosHandler(svc service.FiadoService) *FiadosHandler { return &FiadosHandler{svc: svc} }

func (h *FiadosHandler) Listar(c *gin.Context) {
	var filter dto.FiadoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarFiados(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarPago godoc
// @Summary      Registrar pago de fiado
// @Description  Registra el pago y su movimiento de caja; la venta fiada pasa a pagada cuando los pagos alcanzan el total.
// @Tags         fiados
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID de la venta fiada"
// @Param        body body dto.RegistrarPagoRequest true "Pago"
// @Success      201  {object} dto.RegistrarPagoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/fiados/{id}/pagos [post]
func (h *FiadosHandler) RegistrarPago(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.RegistrarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPago(c.Request.Context(), middleware.UsuarioID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *FiadosHandler) ListarPagos(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarPagos(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FiadosHandler) VerificarSaldo(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.VerificarSaldo(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
