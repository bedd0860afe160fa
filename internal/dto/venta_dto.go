package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type VentaFilter struct {
	Desde string `form:"desde" validate:"omitempty,datetime=2006-01-02"`
	Hasta string `form:"hasta" validate:"omitempty,datetime=2006-01-02"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaDetalleResponse struct {
	ProductoID     string           `json:"producto_id"`
	Producto       string           `json:"producto"`
	PromocionID    *string          `json:"promocion_id"`
	Cantidad       int              `json:"cantidad"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	PrecioCosto    *decimal.Decimal `json:"precio_costo"`
}

type VentaResponse struct {
	ID           string                 `json:"id"`
	Numero       int64                  `json:"numero"`
	Total        decimal.Decimal        `json:"total"`
	Nota         *string                `json:"nota"`
	Fiada        bool                   `json:"fiada"`
	VentaFiadaID *string                `json:"venta_fiada_id,omitempty"`
	Detalles     []VentaDetalleResponse `json:"detalles"`
	CreatedAt    time.Time              `json:"created_at"`
}

type VentaListResponse struct {
	Data       []VentaResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
