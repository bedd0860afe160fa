package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre      string           `json:"nombre"       validate:"required,min=1,max=120"`
	PrecioVenta decimal.Decimal  `json:"precio_venta" validate:"required"`
	PrecioCosto *decimal.Decimal `json:"precio_costo"`
	Stock       int              `json:"stock"        validate:"min=0"`
	Descripcion *string          `json:"descripcion"`
}

type ActualizarProductoRequest struct {
	Nombre      *string          `json:"nombre"       validate:"omitempty,min=1,max=120"`
	PrecioVenta *decimal.Decimal `json:"precio_venta"`
	PrecioCosto *decimal.Decimal `json:"precio_costo"`
	Descripcion *string          `json:"descripcion"`
}

// ActualizarStockRequest sets the stock counter to an absolute value.
type ActualizarStockRequest struct {
	Stock *int `json:"stock" validate:"required"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre string `form:"nombre"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string           `json:"id"`
	Nombre      string           `json:"nombre"`
	PrecioVenta decimal.Decimal  `json:"precio_venta"`
	PrecioCosto *decimal.Decimal `json:"precio_costo"`
	Stock       int              `json:"stock"`
	Descripcion *string          `json:"descripcion"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
