package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=1,max=120"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=40"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion" validate:"omitempty,max=200"`
	Notas     *string `json:"notas"     validate:"omitempty,max=1000"`
}

type ActualizarClienteRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=1,max=120"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=40"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion" validate:"omitempty,max=200"`
	Notas     *string `json:"notas"     validate:"omitempty,max=1000"`
}

type RegistrarPagoRequest struct {
	Monto      decimal.Decimal `json:"monto"       validate:"required"`
	MetodoPago *string         `json:"metodo_pago" validate:"omitempty,oneof=efectivo debito credito transferencia"`
	Nota       *string         `json:"nota"        validate:"omitempty,max=500"`
}

type FiadoFilter struct {
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
	Estado    string `form:"estado"     validate:"omitempty,oneof=pendiente pagada vencida"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	Telefono      *string         `json:"telefono"`
	Email         *string         `json:"email"`
	Direccion     *string         `json:"direccion"`
	Notas         *string         `json:"notas"`
	FechaRegistro time.Time       `json:"fecha_registro"`
	Deuda         decimal.Decimal `json:"deuda"`
}

type FiadoResponse struct {
	ID               string          `json:"id"`
	VentaID          string          `json:"venta_id"`
	NumeroVenta      int64           `json:"numero_venta"`
	ClienteID        string          `json:"cliente_id"`
	Cliente          string          `json:"cliente"`
	Estado           string          `json:"estado"`
	Total            decimal.Decimal `json:"total"`
	Pagado           decimal.Decimal `json:"pagado"`
	Saldo            decimal.Decimal `json:"saldo"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento"`
	Nota             *string         `json:"nota"`
	CreatedAt        time.Time       `json:"created_at"`
}

type PagoResponse struct {
	ID           string          `json:"id"`
	VentaFiadaID *string         `json:"venta_fiada_id"`
	Monto        decimal.Decimal `json:"monto"`
	MetodoPago   *string         `json:"metodo_pago"`
	Nota         *string         `json:"nota"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RegistrarPagoResponse reports the credit sale state after the payment.
type RegistrarPagoResponse struct {
	Pago  PagoResponse  `json:"pago"`
	Fiado FiadoResponse `json:"fiado"`
}
