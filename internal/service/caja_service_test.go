package service

import (
	"context"
	"testing"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movimientoDe(t *testing.T, e *testEnv, tipo string) model.MovimientoCaja {
	t.Helper()
	for _, m := range e.movimientos(t) {
		if m.Tipo == tipo {
			return m
		}
	}
	t.Fatalf("no hay movimiento %s", tipo)
	return model.MovimientoCaja{}
}

func TestRegistrarMovimiento_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.MovimientoManualRequest
	}{
		{"sale kind", dto.MovimientoManualRequest{Tipo: model.MovVentaFiada, Descripcion: "x", Monto: dec("10")}},
		{"payment kind", dto.MovimientoManualRequest{Tipo: model.MovPagoFiado, Descripcion: "x", Monto: dec("10")}},
		{"zero", dto.MovimientoManualRequest{Tipo: model.MovEgreso, Descripcion: "Luz", Monto: dec("0")}},
		{"negative", dto.MovimientoManualRequest{Tipo: model.MovIngreso, Descripcion: "Aporte", Monto: dec("-1")}},
		{"blank description", dto.MovimientoManualRequest{Tipo: model.MovEgreso, Descripcion: "   ", Monto: dec("5")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.caja.RegistrarMovimiento(ctx, e.usuario, tc.req)
			assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
		})
	}
	assert.Empty(t, e.movimientos(t))

	m, err := e.caja.RegistrarMovimiento(ctx, e.usuario, dto.MovimientoManualRequest{
		Tipo:        model.MovEgreso,
		Descripcion: " Pago de luz ",
		Monto:       dec("1500.456"),
		Categoria:   ptr("servicios"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Pago de luz", m.Descripcion)
	assert.Equal(t, "1500.46", m.Monto.StringFixed(2))
	require.NotNil(t, m.UsuarioID)
	assert.Equal(t, e.usuario.String(), *m.UsuarioID)
	assert.True(t, e.pub.has(realtime.TablaMovimientos, realtime.Insert))
}

func TestResumen_CashOnHandMatchesReplay(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "100", nil, 10)
	cli := e.cliente(t, "Juan", nil)

	e.agregar(t, a, 2)
	_, err := e.ventas.ConfirmarVenta(ctx, e.usuario, dto.ConfirmarVentaRequest{})
	require.NoError(t, err)
	_, fiadoID := e.ventaFiada(t, a, 1, cli.ID)
	pagar(t, e, fiadoID, "30")
	_, err = e.caja.RegistrarMovimiento(ctx, e.usuario, dto.MovimientoManualRequest{
		Tipo: model.MovEgreso, Descripcion: "Flete", Monto: dec("50"),
	})
	require.NoError(t, err)

	r, err := e.caja.Resumen(ctx, "")
	require.NoError(t, err)

	replay := CajaDisponible(SumarMovimientos(e.movimientos(t)))
	assert.True(t, r.CajaDisponible.Equal(replay), "aggregate %s replay %s", r.CajaDisponible, replay)
	assert.Equal(t, "180.00", r.CajaDisponible.StringFixed(2)) // 200 + 30 - 50
	assert.Equal(t, "100.00", r.Mensual.VentasFiadas.StringFixed(2))
	assert.Equal(t, 4, r.Mensual.Movimientos)
	assert.Equal(t, "100.00", r.FiadoPendienteTotal.StringFixed(2))

	_, err = e.caja.Resumen(ctx, "2024-13")
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestListarMovimientos_FiltersByTipo(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	for _, tipo := range []string{model.MovIngreso, model.MovEgreso, model.MovEgreso} {
		_, err := e.caja.RegistrarMovimiento(ctx, e.usuario, dto.MovimientoManualRequest{
			Tipo: tipo, Descripcion: "manual", Monto: dec("1"),
		})
		require.NoError(t, err)
	}

	egresos, err := e.caja.ListarMovimientos(ctx, dto.MovimientoFilter{Tipo: model.MovEgreso})
	require.NoError(t, err)
	assert.Len(t, egresos, 2)

	_, err = e.caja.ListarMovimientos(ctx, dto.MovimientoFilter{Tipo: "retiro"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestEliminarMovimiento_CreditSaleCascade(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "100", nil, 10)
	cli := e.cliente(t, "Juan", nil)
	_, fiadoID := e.ventaFiada(t, a, 1, cli.ID)
	pagar(t, e, fiadoID, "40")

	mov := movimientoDe(t, e, model.MovVentaFiada)
	require.NoError(t, e.caja.EliminarMovimiento(ctx, mov.ID))

	assert.Zero(t, count(t, e.db, &model.Venta{}))
	assert.Zero(t, count(t, e.db, &model.VentaDetalle{}))
	assert.Zero(t, count(t, e.db, &model.VentaFiada{}))

	var pagos []model.PagoFiado
	require.NoError(t, e.db.Find(&pagos).Error)
	require.Len(t, pagos, 1, "payments survive the sale")
	assert.Nil(t, pagos[0].VentaFiadaID)

	restantes := e.movimientos(t)
	require.Len(t, restantes, 1)
	assert.Equal(t, model.MovPagoFiado, restantes[0].Tipo)
	assert.Nil(t, restantes[0].VentaID)
	assert.Nil(t, restantes[0].VentaFiadaID)

	assert.Equal(t, 9, e.stock(t, a.ID), "stock is not restored")
	assert.Equal(t, "0.00", deudaDe(t, e, cli.ID))
	assert.True(t, e.pub.has(realtime.TablaVentas, realtime.Delete))
}

func TestEliminarMovimiento_IngresoRemovesItsSale(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "10", nil, 10)
	e.agregar(t, a, 1)
	_, err := e.ventas.ConfirmarVenta(ctx, e.usuario, dto.ConfirmarVentaRequest{})
	require.NoError(t, err)
	e.agregar(t, a, 2)
	_, err = e.ventas.ConfirmarVenta(ctx, e.usuario, dto.ConfirmarVentaRequest{})
	require.NoError(t, err)

	movs := e.movimientos(t)
	require.Len(t, movs, 2)
	require.NoError(t, e.caja.EliminarMovimiento(ctx, movs[0].ID))

	assert.EqualValues(t, 1, count(t, e.db, &model.Venta{}))
	assert.Len(t, e.movimientos(t), 1)
}

func TestEliminarMovimiento_ManualOnlyRemovesItself(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "10", nil, 10)
	e.agregar(t, a, 1)
	_, err := e.ventas.ConfirmarVenta(ctx, e.usuario, dto.ConfirmarVentaRequest{})
	require.NoError(t, err)
	m, err := e.caja.RegistrarMovimiento(ctx, e.usuario, dto.MovimientoManualRequest{
		Tipo: model.MovEgreso, Descripcion: "Bolsas", Monto: dec("3"),
	})
	require.NoError(t, err)

	require.NoError(t, e.caja.EliminarMovimiento(ctx, uuid.MustParse(m.ID)))
	assert.EqualValues(t, 1, count(t, e.db, &model.Venta{}))
	assert.Len(t, e.movimientos(t), 1)

	err = e.caja.EliminarMovimiento(ctx, uuid.MustParse(m.ID))
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestEliminarMovimiento_PaymentKeepsCreditSale(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "100", nil, 10)
	cli := e.cliente(t, "Juan", nil)
	_, fiadoID := e.ventaFiada(t, a, 1, cli.ID)
	pagar(t, e, fiadoID, "40")

	mov := movimientoDe(t, e, model.MovPagoFiado)
	require.NoError(t, e.caja.EliminarMovimiento(ctx, mov.ID))

	assert.EqualValues(t, 1, count(t, e.db, &model.Venta{}))
	assert.EqualValues(t, 1, count(t, e.db, &model.VentaFiada{}))
	assert.EqualValues(t, 1, count(t, e.db, &model.PagoFiado{}))
	assert.Len(t, e.movimientos(t), 1)
}
