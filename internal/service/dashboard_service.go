package service

import (
	"context"
	"sort"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DashboardService interface {
	// Resumen reports the day and the month: ledger sums by kind plus
	// per-product sales, cost and profit.
	Resumen(ctx context.Context, filter dto.DashboardFilter) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	cajaRepo  repository.CajaRepository
	ventaRepo repository.VentaRepository
	loc       *time.Location
	now       func() time.Time
}

func NewDashboardService(cajaRepo repository.CajaRepository, ventaRepo repository.VentaRepository, loc *time.Location) DashboardService {
	return &dashboardService{
		cajaRepo:  cajaRepo,
		ventaRepo: ventaRepo,
		loc:       ubicacion(loc),
		now:       time.Now,
	}
}

func (s *dashboardService) Resumen(ctx context.Context, filter dto.DashboardFilter) (*dto.DashboardResponse, error) {
	now := s.now()
	mes, mesDesde, mesHasta, err := rangoMes(filter.Mes, now, s.loc)
	if err != nil {
		return nil, err
	}
	dia := filter.Dia
	if dia == "" {
		dia = diaLocal(now, s.loc)
	}
	diaDesde, err := parseDia(dia, s.loc)
	if err != nil {
		return nil, err
	}
	diaHasta := diaDesde.AddDate(0, 0, 1)

	desde, hasta := mesDesde, mesHasta
	if diaDesde.Before(desde) {
		desde = diaDesde
	}
	if diaHasta.After(hasta) {
		hasta = diaHasta
	}
	movs, err := s.cajaRepo.ListMovimientos(ctx, repository.MovimientoListFilter{
		Desde: desde.Add(-margenVentana),
		Hasta: hasta.Add(margenVentana),
	})
	if err != nil {
		return nil, err
	}
	movsDia := filtrarPorPeriodo(movs, dia, s.loc)
	movsMes := filtrarPorPeriodo(movs, mes, s.loc)

	ids := ventasReferidas(append(append([]model.MovimientoCaja(nil), movsDia...), movsMes...), nil)
	primerPago, err := s.cajaRepo.PrimerosPagosFiado(ctx, ids)
	if err != nil {
		return nil, err
	}
	ventas, err := s.ventaRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	porID := make(map[uuid.UUID]*model.Venta, len(ventas))
	for i := range ventas {
		porID[ventas[i].ID] = &ventas[i]
	}

	historico, err := s.cajaRepo.SumPorTipo(ctx, repository.MovimientoListFilter{})
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		Dia:            ResumirPeriodo(dia, movsDia, porID, primerPago),
		Mes:            ResumirPeriodo(mes, movsMes, porID, primerPago),
		CajaDisponible: CajaDisponible(totalesDesdeAgregado(historico)),
	}, nil
}

// ventasReferidas returns, once each, the sales referenced by ingreso or
// pago_fiado movements. When primerPago names a sale's earliest payment,
// later payments of that sale do not reference it.
func ventasReferidas(movs []model.MovimientoCaja, primerPago map[uuid.UUID]uuid.UUID) []uuid.UUID {
	vistos := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, m := range movs {
		if m.VentaID == nil || (m.Tipo != model.MovIngreso && m.Tipo != model.MovPagoFiado) {
			continue
		}
		if primero, ok := primerPago[*m.VentaID]; ok && m.Tipo == model.MovPagoFiado && primero != m.ID {
			continue
		}
		if !vistos[*m.VentaID] {
			vistos[*m.VentaID] = true
			ids = append(ids, *m.VentaID)
		}
	}
	return ids
}

// costoUnitario prefers the cost captured at sale time and falls back to
// the current catalog cost. ok is false when neither is known.
func costoUnitario(d *model.VentaDetalle) (decimal.Decimal, bool) {
	if d.PrecioCosto != nil {
		return *d.PrecioCosto, true
	}
	if d.Producto != nil && d.Producto.PrecioCosto != nil {
		return *d.Producto.PrecioCosto, true
	}
	return decimal.Zero, false
}

// ResumirPeriodo aggregates one period. Each referenced sale is counted
// once however many movements point at it, and a credit sale's lines belong
// to the period of its first payment (primerPago, keyed by sale). Profit
// only covers lines with cost data; the rest are flagged through
// CostoFaltante.
func ResumirPeriodo(periodo string, movs []model.MovimientoCaja, ventas map[uuid.UUID]*model.Venta, primerPago map[uuid.UUID]uuid.UUID) dto.PeriodoResumen {
	r := dto.PeriodoResumen{
		Periodo:     periodo,
		Movimientos: SumarMovimientos(movs),
		Ingresos:    decimal.Zero,
		Costo:       decimal.Zero,
		Ganancia:    decimal.Zero,
		Productos:   []dto.ProductoVendido{},
	}

	type acumulado struct {
		dto.ProductoVendido
		ingresosConCosto decimal.Decimal
	}
	productos := make(map[uuid.UUID]*acumulado)
	for _, id := range ventasReferidas(movs, primerPago) {
		v := ventas[id]
		if v == nil {
			continue
		}
		r.Ventas++
		for i := range v.Detalles {
			d := &v.Detalles[i]
			a := productos[d.ProductoID]
			if a == nil {
				a = &acumulado{
					ProductoVendido: dto.ProductoVendido{
						ProductoID: d.ProductoID.String(),
						Ingresos:   decimal.Zero,
						Costo:      decimal.Zero,
						Ganancia:   decimal.Zero,
					},
					ingresosConCosto: decimal.Zero,
				}
				if d.Producto != nil {
					a.Nombre = d.Producto.Nombre
				}
				productos[d.ProductoID] = a
			}
			a.Cantidad += d.Cantidad
			a.Ingresos = a.Ingresos.Add(d.Subtotal)
			r.Ingresos = r.Ingresos.Add(d.Subtotal)

			unit, ok := costoUnitario(d)
			if !ok {
				a.CostoFaltante = true
				r.CostoFaltante = true
				continue
			}
			costo := unit.Mul(decimal.NewFromInt(int64(d.Cantidad)))
			a.ConCosto = true
			a.Costo = a.Costo.Add(costo)
			a.ingresosConCosto = a.ingresosConCosto.Add(d.Subtotal)
			r.Costo = r.Costo.Add(costo)
			r.Ganancia = r.Ganancia.Add(d.Subtotal.Sub(costo))
		}
	}

	for _, a := range productos {
		a.Ganancia = a.ingresosConCosto.Sub(a.Costo)
		r.Productos = append(r.Productos, a.ProductoVendido)
	}
	sort.Slice(r.Productos, func(i, j int) bool {
		pi, pj := r.Productos[i], r.Productos[j]
		if !pi.Ingresos.Equal(pj.Ingresos) {
			return pi.Ingresos.GreaterThan(pj.Ingresos)
		}
		return pi.Nombre < pj.Nombre
	})
	return r
}
