package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AgregarProductoCarritoRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type AgregarPromocionCarritoRequest struct {
	PromocionID string `json:"promocion_id" validate:"required,uuid"`
	Cantidad    int    `json:"cantidad"     validate:"required,min=1"`
}

// ConfirmarVentaRequest closes the cart. A present ClienteID makes it a credit sale.
type ConfirmarVentaRequest struct {
	ClienteID        *string `json:"cliente_id"        validate:"omitempty,uuid"`
	FechaVencimiento *string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
	Nota             *string `json:"nota"              validate:"omitempty,max=500"`
	NotaFiado        *string `json:"nota_fiado"        validate:"omitempty,max=500"`
	MetodoPago       *string `json:"metodo_pago"       validate:"omitempty,oneof=efectivo debito credito transferencia"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CarritoItemResponse struct {
	Clave          string          `json:"clave"`
	Tipo           string          `json:"tipo"` // producto | promocion
	ReferenciaID   string          `json:"referencia_id"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type CarritoResponse struct {
	Items []CarritoItemResponse `json:"items"`
	Total decimal.Decimal       `json:"total"`
}
