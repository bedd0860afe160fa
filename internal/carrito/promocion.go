package carrito

import (
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Disponibilidad returns how many bundles can still be sold: for each
// component floor((stock - reservado) / cantidad), the minimum of those,
// never below zero, capped by the remaining usage allowance.
func Disponibilidad(promo *model.Promocion, stock, reservado map[uuid.UUID]int) int {
	if len(promo.Productos) == 0 {
		return 0
	}
	menor := -1
	for _, comp := range promo.Productos {
		if comp.Cantidad <= 0 {
			continue
		}
		restante := stock[comp.ProductoID] - reservado[comp.ProductoID]
		if restante < 0 {
			restante = 0
		}
		n := restante / comp.Cantidad
		if menor < 0 || n < menor {
			menor = n
		}
	}
	if menor < 0 {
		menor = 0
	}
	if restantes, limitado := promo.UsosRestantes(); limitado && restantes < menor {
		menor = restantes
	}
	return menor
}

// Asignacion is the share of a bundle sale attributed to one component.
type Asignacion struct {
	ProductoID     uuid.UUID
	Unidades       int
	Subtotal       decimal.Decimal
	PrecioUnitario decimal.Decimal
}

// AsignarPrecios splits cantidad × precioPromocional across the components
// pro rata to their list value (precio_venta × cantidad). Each share is
// rounded to cents and the last component takes the remainder, so the
// subtotals add up to the bundle total exactly. When every component has a
// zero list value the split is by units.
func AsignarPrecios(precioPromocional decimal.Decimal, comps []Componente, cantidad int) ([]Asignacion, error) {
	if len(comps) == 0 {
		return nil, apierror.Validation("La promoción no tiene productos")
	}
	if cantidad <= 0 {
		return nil, apierror.Validation("La cantidad debe ser mayor a cero")
	}

	q := decimal.NewFromInt(int64(cantidad))
	total := precioPromocional.Mul(q)

	base := decimal.Zero
	unidadesBase := 0
	pesos := make([]decimal.Decimal, len(comps))
	for i, comp := range comps {
		pesos[i] = comp.PrecioVenta.Mul(decimal.NewFromInt(int64(comp.Cantidad)))
		base = base.Add(pesos[i])
		unidadesBase += comp.Cantidad
	}
	if base.IsZero() {
		if unidadesBase == 0 {
			return nil, apierror.Validation("La promoción no tiene unidades")
		}
		for i, comp := range comps {
			pesos[i] = decimal.NewFromInt(int64(comp.Cantidad))
		}
		base = decimal.NewFromInt(int64(unidadesBase))
	}

	out := make([]Asignacion, len(comps))
	asignado := decimal.Zero
	for i, comp := range comps {
		unidades := comp.Cantidad * cantidad
		var sub decimal.Decimal
		if i == len(comps)-1 {
			sub = total.Sub(asignado)
		} else {
			sub = total.Mul(pesos[i]).Div(base).Round(2)
			asignado = asignado.Add(sub)
		}
		unit := decimal.Zero
		if unidades > 0 {
			unit = sub.Div(decimal.NewFromInt(int64(unidades))).Round(2)
		}
		out[i] = Asignacion{
			ProductoID:     comp.ProductoID,
			Unidades:       unidades,
			Subtotal:       sub,
			PrecioUnitario: unit,
		}
	}
	return out, nil
}
