package dto

import "github.com/shopspring/decimal"

type DashboardFilter struct {
	Mes string `form:"mes" validate:"omitempty,datetime=2006-01"`
	Dia string `form:"dia" validate:"omitempty,datetime=2006-01-02"`
}

// ProductoVendido aggregates sale lines of one product in one period.
// Costo and Ganancia only include lines with cost data; CostoFaltante flags the rest.
type ProductoVendido struct {
	ProductoID    string          `json:"producto_id"`
	Nombre        string          `json:"nombre"`
	Cantidad      int             `json:"cantidad"`
	Ingresos      decimal.Decimal `json:"ingresos"`
	Costo         decimal.Decimal `json:"costo"`
	Ganancia      decimal.Decimal `json:"ganancia"`
	ConCosto      bool            `json:"con_costo"`
	CostoFaltante bool            `json:"costo_faltante"`
}

type PeriodoResumen struct {
	Periodo       string            `json:"periodo"`
	Movimientos   TotalesPorTipo    `json:"movimientos"`
	Ventas        int               `json:"ventas"`
	Ingresos      decimal.Decimal   `json:"ingresos"`
	Costo         decimal.Decimal   `json:"costo"`
	Ganancia      decimal.Decimal   `json:"ganancia"`
	CostoFaltante bool              `json:"costo_faltante"`
	Productos     []ProductoVendido `json:"productos"`
}

type DashboardResponse struct {
	Dia            PeriodoResumen  `json:"dia"`
	Mes            PeriodoResumen  `json:"mes"`
	CajaDisponible decimal.Decimal `json:"caja_disponible"`
}
