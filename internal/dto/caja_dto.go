package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MovimientoManualRequest registers a manual ingreso or egreso. Sale-linked
// kinds are only written by sale confirmation and payment registration.
type MovimientoManualRequest struct {
	Tipo        string          `json:"tipo"        validate:"required,oneof=ingreso egreso"`
	Descripcion string          `json:"descripcion" validate:"required,min=3,max=255"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
	Categoria   *string         `json:"categoria"   validate:"omitempty,max=60"`
	Nota        *string         `json:"nota"        validate:"omitempty,max=500"`
	MetodoPago  *string         `json:"metodo_pago" validate:"omitempty,oneof=efectivo debito credito transferencia"`
}

type MovimientoFilter struct {
	Mes  string `form:"mes"  validate:"omitempty,datetime=2006-01"`
	Tipo string `form:"tipo" validate:"omitempty,oneof=ingreso egreso venta_fiada pago_fiado"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID           string          `json:"id"`
	Tipo         string          `json:"tipo"`
	Descripcion  string          `json:"descripcion"`
	Monto        decimal.Decimal `json:"monto"`
	Categoria    *string         `json:"categoria"`
	Nota         *string         `json:"nota"`
	MetodoPago   *string         `json:"metodo_pago"`
	UsuarioID    *string         `json:"usuario_id"`
	ClienteID    *string         `json:"cliente_id"`
	VentaID      *string         `json:"venta_id"`
	VentaFiadaID *string         `json:"venta_fiada_id"`
	Fecha        string          `json:"fecha"` // local calendar date
	CreatedAt    time.Time       `json:"created_at"`
}

// TotalesPorTipo sums movement amounts per kind.
type TotalesPorTipo struct {
	Ingresos     decimal.Decimal `json:"ingresos"`
	Egresos      decimal.Decimal `json:"egresos"`
	VentasFiadas decimal.Decimal `json:"ventas_fiadas"`
	PagosFiado   decimal.Decimal `json:"pagos_fiado"`
	Movimientos  int             `json:"cantidad_movimientos"`
}

// ResumenCajaResponse mixes a month window (Mes) with all-time figures.
type ResumenCajaResponse struct {
	Mes                 string          `json:"mes"`
	Mensual             TotalesPorTipo  `json:"mensual"`
	CajaDisponible      decimal.Decimal `json:"caja_disponible"`
	FiadoPendienteTotal decimal.Decimal `json:"fiado_pendiente_total"`
}
