package carrito

import (
	"testing"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func producto(nombre, precio string, stock int) *model.Producto {
	return &model.Producto{ID: uuid.New(), Nombre: nombre, PrecioVenta: dec(precio), Stock: stock}
}

func promo(nombre, precio string, comps ...model.PromocionProducto) *model.Promocion {
	return &model.Promocion{
		ID:                uuid.New(),
		Nombre:            nombre,
		PrecioPromocional: dec(precio),
		Activo:            true,
		Productos:         comps,
	}
}

func comp(p *model.Producto, n int) model.PromocionProducto {
	return model.PromocionProducto{ProductoID: p.ID, Cantidad: n, Producto: p}
}

func TestAgregarProducto_MergesLinesAndRecomputesSubtotal(t *testing.T) {
	a := producto("A", "10", 5)
	c := &Carrito{}

	require.NoError(t, c.AgregarProducto(a, 2))
	require.NoError(t, c.AgregarProducto(a, 1))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Cantidad)
	assert.True(t, c.Items[0].Subtotal.Equal(dec("30")))
	assert.True(t, c.Total().Equal(dec("30")))
}

func TestAgregarProducto_RejectsMoreThanStock(t *testing.T) {
	a := producto("A", "10", 3)
	c := &Carrito{}
	require.NoError(t, c.AgregarProducto(a, 2))

	err := c.AgregarProducto(a, 2)
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.Equal(t, 2, c.Items[0].Cantidad, "failed add must not change the line")
}

func TestAgregarProducto_CountsUnitsReservedByPromos(t *testing.T) {
	a := producto("A", "10", 3)
	c := &Carrito{}
	require.NoError(t, c.AgregarPromocion(promo("2xA", "15", comp(a, 2)), 1, time.Now()))

	assert.Error(t, c.AgregarProducto(a, 2))
	assert.NoError(t, c.AgregarProducto(a, 1))
	assert.Equal(t, 3, c.Reservado(a.ID))
}

func TestAgregarProducto_RejectsNonPositiveQuantity(t *testing.T) {
	c := &Carrito{}
	assert.Error(t, c.AgregarProducto(producto("A", "10", 5), 0))
	assert.True(t, c.Vacio())
}

func TestAgregarPromocion_RequiresVigente(t *testing.T) {
	a := producto("A", "10", 10)
	p := promo("Promo", "8", comp(a, 1))
	p.Activo = false

	c := &Carrito{}
	assert.Error(t, c.AgregarPromocion(p, 1, time.Now()))

	p.Activo = true
	fin := time.Now().Add(-time.Hour)
	p.FechaFin = &fin
	assert.Error(t, c.AgregarPromocion(p, 1, time.Now()))
}

func TestAgregarPromocion_RespectsUsageLimitIncludingOwnBundles(t *testing.T) {
	a := producto("A", "10", 100)
	p := promo("Promo", "8", comp(a, 1))
	limite := 3
	p.LimiteUsos = &limite
	p.Usos = 1

	c := &Carrito{}
	require.NoError(t, c.AgregarPromocion(p, 2, time.Now()))
	err := c.AgregarPromocion(p, 1, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disponible: 0")
}

func TestAgregarPromocion_SnapshotsComposition(t *testing.T) {
	a := producto("A", "10", 10)
	b := producto("B", "5", 10)
	p := promo("Combo", "12", comp(a, 1), comp(b, 2))

	c := &Carrito{}
	require.NoError(t, c.AgregarPromocion(p, 2, time.Now()))

	it := c.Items[0]
	assert.Equal(t, ItemPromocion, it.Tipo)
	assert.True(t, it.Subtotal.Equal(dec("24")))
	require.Len(t, it.Componentes, 2)
	assert.Equal(t, 2, c.Unidades()[a.ID])
	assert.Equal(t, 4, c.Unidades()[b.ID])
}

func TestQuitar(t *testing.T) {
	a := producto("A", "10", 5)
	c := &Carrito{}
	require.NoError(t, c.AgregarProducto(a, 1))

	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(c.Quitar("producto:otro")))
	require.NoError(t, c.Quitar(c.Items[0].Clave))
	assert.True(t, c.Vacio())
}

func TestClone_IsDeep(t *testing.T) {
	a := producto("A", "10", 10)
	c := &Carrito{}
	require.NoError(t, c.AgregarPromocion(promo("P", "8", comp(a, 1)), 1, time.Now()))

	cp := c.Clone()
	cp.Items[0].Componentes[0].Cantidad = 99
	cp.Items[0].Cantidad = 7
	assert.Equal(t, 1, c.Items[0].Componentes[0].Cantidad)
	assert.Equal(t, 1, c.Items[0].Cantidad)
}
