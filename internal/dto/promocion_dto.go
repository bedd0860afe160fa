package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PromocionComponenteRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type CrearPromocionRequest struct {
	Nombre            string                       `json:"nombre"             validate:"required,min=1,max=120"`
	PrecioPromocional decimal.Decimal              `json:"precio_promocional" validate:"required"`
	FechaInicio       *time.Time                   `json:"fecha_inicio"`
	FechaFin          *time.Time                   `json:"fecha_fin"`
	LimiteUsos        *int                         `json:"limite_usos"        validate:"omitempty,min=1"`
	Productos         []PromocionComponenteRequest `json:"productos"          validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PromocionComponenteResponse struct {
	ProductoID  string          `json:"producto_id"`
	Nombre      string          `json:"nombre"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	Cantidad    int             `json:"cantidad"`
}

type PromocionResponse struct {
	ID                string                        `json:"id"`
	Nombre            string                        `json:"nombre"`
	PrecioPromocional decimal.Decimal               `json:"precio_promocional"`
	Activo            bool                          `json:"activo"`
	Vigente           bool                          `json:"vigente"`
	FechaInicio       *time.Time                    `json:"fecha_inicio"`
	FechaFin          *time.Time                    `json:"fecha_fin"`
	LimiteUsos        *int                          `json:"limite_usos"`
	Usos              int                           `json:"usos"`
	Productos         []PromocionComponenteResponse `json:"productos"`
}

type DisponibilidadResponse struct {
	PromocionID    string `json:"promocion_id"`
	Disponibilidad int    `json:"disponibilidad"`
}
