package service

import (
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"

	"github.com/shopspring/decimal"
)

// CajaDisponible is cash on hand: ingresos + pagos de fiado − egresos.
// Credit sales move no cash until they are paid.
func CajaDisponible(t dto.TotalesPorTipo) decimal.Decimal {
	return t.Ingresos.Add(t.PagosFiado).Sub(t.Egresos)
}

// SumarMovimientos replays movements one by one into per-kind totals.
func SumarMovimientos(movs []model.MovimientoCaja) dto.TotalesPorTipo {
	t := totalesVacios()
	for _, m := range movs {
		acumular(&t, m.Tipo, m.Monto, 1)
	}
	return t
}

// totalesDesdeAgregado folds the grouped SQL sums into the same shape.
func totalesDesdeAgregado(rows []repository.TotalTipo) dto.TotalesPorTipo {
	t := totalesVacios()
	for _, r := range rows {
		acumular(&t, r.Tipo, r.Total, r.Cantidad)
	}
	return t
}

func totalesVacios() dto.TotalesPorTipo {
	return dto.TotalesPorTipo{
		Ingresos:     decimal.Zero,
		Egresos:      decimal.Zero,
		VentasFiadas: decimal.Zero,
		PagosFiado:   decimal.Zero,
	}
}

func acumular(t *dto.TotalesPorTipo, tipo string, monto decimal.Decimal, n int) {
	switch tipo {
	case model.MovIngreso:
		t.Ingresos = t.Ingresos.Add(monto)
	case model.MovEgreso:
		t.Egresos = t.Egresos.Add(monto)
	case model.MovVentaFiada:
		t.VentasFiadas = t.VentasFiadas.Add(monto)
	case model.MovPagoFiado:
		t.PagosFiado = t.PagosFiado.Add(monto)
	default:
		return
	}
	t.Movimientos += n
}

// filtrarPorPeriodo keeps the movements whose local calendar date starts
// with periodo ("2006-01" for a month, "2006-01-02" for a day).
func filtrarPorPeriodo(movs []model.MovimientoCaja, periodo string, loc *time.Location) []model.MovimientoCaja {
	var out []model.MovimientoCaja
	for _, m := range movs {
		if enPeriodo(m.CreatedAt, periodo, loc) {
			out = append(out, m)
		}
	}
	return out
}

func enPeriodo(t time.Time, periodo string, loc *time.Location) bool {
	dia := diaLocal(t, loc)
	return len(periodo) <= len(dia) && dia[:len(periodo)] == periodo
}

// margenVentana widens SQL time bounds so rows stored with a different UTC
// offset are still fetched; the exact local-date cut happens in Go.
const margenVentana = 48 * time.Hour
