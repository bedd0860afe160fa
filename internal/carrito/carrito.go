// Package carrito holds the per-user shopping cart. Every operation here is
// a pure in-memory transition; nothing touches the database until the sale
// is confirmed by the service layer.
package carrito

import (
	"fmt"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TipoItem string

const (
	ItemProducto  TipoItem = "producto"
	ItemPromocion TipoItem = "promocion"
)

// Componente is one product inside a promo line, per bundle.
type Componente struct {
	ProductoID  uuid.UUID       `json:"producto_id"`
	Nombre      string          `json:"nombre"`
	Cantidad    int             `json:"cantidad"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
}

// Item is a cart line. Promo lines carry the bundle composition captured
// when the line was first added.
type Item struct {
	Clave          string          `json:"clave"`
	Tipo           TipoItem        `json:"tipo"`
	ReferenciaID   uuid.UUID       `json:"referencia_id"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Componentes    []Componente    `json:"componentes,omitempty"`
}

// Carrito is an ordered list of lines.
type Carrito struct {
	Items []Item `json:"items"`
}

func clave(tipo TipoItem, id uuid.UUID) string {
	return string(tipo) + ":" + id.String()
}

// Vacio reports whether the cart has no lines.
func (c *Carrito) Vacio() bool { return len(c.Items) == 0 }

func (c *Carrito) buscar(k string) int {
	for i := range c.Items {
		if c.Items[i].Clave == k {
			return i
		}
	}
	return -1
}

// Reservado returns the units of a product already committed by the cart,
// counting plain lines and promo components alike.
func (c *Carrito) Reservado(productoID uuid.UUID) int {
	return c.Unidades()[productoID]
}

// Unidades returns units per product across all lines.
func (c *Carrito) Unidades() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, it := range c.Items {
		switch it.Tipo {
		case ItemProducto:
			out[it.ReferenciaID] += it.Cantidad
		case ItemPromocion:
			for _, comp := range it.Componentes {
				out[comp.ProductoID] += comp.Cantidad * it.Cantidad
			}
		}
	}
	return out
}

// AgregarProducto adds n units of p, merging with an existing line.
// The line price follows the current catalog price.
func (c *Carrito) AgregarProducto(p *model.Producto, n int) error {
	if n <= 0 {
		return apierror.Validation("La cantidad debe ser mayor a cero")
	}
	disponible := p.Stock - c.Reservado(p.ID)
	if n > disponible {
		if disponible < 0 {
			disponible = 0
		}
		return apierror.Validation(fmt.Sprintf("Stock insuficiente para %s (disponible: %d)", p.Nombre, disponible))
	}

	k := clave(ItemProducto, p.ID)
	if i := c.buscar(k); i >= 0 {
		it := &c.Items[i]
		it.Cantidad += n
		it.Nombre = p.Nombre
		it.PrecioUnitario = p.PrecioVenta
		it.Subtotal = it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		return nil
	}
	c.Items = append(c.Items, Item{
		Clave:          k,
		Tipo:           ItemProducto,
		ReferenciaID:   p.ID,
		Nombre:         p.Nombre,
		Cantidad:       n,
		PrecioUnitario: p.PrecioVenta,
		Subtotal:       p.PrecioVenta.Mul(decimal.NewFromInt(int64(n))),
	})
	return nil
}

// AgregarPromocion adds n bundles of promo. The promotion must be in force
// and have enough availability once this cart's reservations are counted.
// promo.Productos must be loaded with their Producto.
func (c *Carrito) AgregarPromocion(promo *model.Promocion, n int, now time.Time) error {
	if n <= 0 {
		return apierror.Validation("La cantidad debe ser mayor a cero")
	}
	if !promo.Vigente(now) {
		return apierror.Validation(fmt.Sprintf("La promoción %s no está vigente", promo.Nombre))
	}
	if len(promo.Productos) == 0 {
		return apierror.Validation(fmt.Sprintf("La promoción %s no tiene productos", promo.Nombre))
	}

	stock := make(map[uuid.UUID]int, len(promo.Productos))
	for _, comp := range promo.Productos {
		if comp.Producto == nil {
			return apierror.Validation(fmt.Sprintf("La promoción %s tiene un producto inexistente", promo.Nombre))
		}
		stock[comp.ProductoID] = comp.Producto.Stock
	}
	k := clave(ItemPromocion, promo.ID)
	yaEnCarrito := 0
	if i := c.buscar(k); i >= 0 {
		yaEnCarrito = c.Items[i].Cantidad
	}
	// Usage limits count bundles, so this cart's own bundles reduce the allowance too.
	disponible := Disponibilidad(promo, stock, c.Unidades())
	if restantes, limitado := promo.UsosRestantes(); limitado {
		if r := restantes - yaEnCarrito; r < disponible {
			disponible = r
		}
	}
	if disponible < 0 {
		disponible = 0
	}
	if n > disponible {
		return apierror.Validation(fmt.Sprintf("Disponibilidad insuficiente para %s (disponible: %d)", promo.Nombre, disponible))
	}

	if i := c.buscar(k); i >= 0 {
		it := &c.Items[i]
		it.Cantidad += n
		it.Subtotal = it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		return nil
	}
	comps := make([]Componente, 0, len(promo.Productos))
	for _, pp := range promo.Productos {
		comps = append(comps, Componente{
			ProductoID:  pp.ProductoID,
			Nombre:      pp.Producto.Nombre,
			Cantidad:    pp.Cantidad,
			PrecioVenta: pp.Producto.PrecioVenta,
		})
	}
	c.Items = append(c.Items, Item{
		Clave:          k,
		Tipo:           ItemPromocion,
		ReferenciaID:   promo.ID,
		Nombre:         promo.Nombre,
		Cantidad:       n,
		PrecioUnitario: promo.PrecioPromocional,
		Subtotal:       promo.PrecioPromocional.Mul(decimal.NewFromInt(int64(n))),
		Componentes:    comps,
	})
	return nil
}

// Quitar removes the line with the given key.
func (c *Carrito) Quitar(k string) error {
	i := c.buscar(k)
	if i < 0 {
		return apierror.NotFound("El ítem no está en el carrito")
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

// Vaciar drops every line.
func (c *Carrito) Vaciar() { c.Items = nil }

// Total is Σ line subtotals.
func (c *Carrito) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// Clone returns a deep copy.
func (c *Carrito) Clone() *Carrito {
	out := &Carrito{Items: make([]Item, len(c.Items))}
	for i, it := range c.Items {
		it.Componentes = append([]Componente(nil), it.Componentes...)
		out.Items[i] = it
	}
	return out
}
