package service

import (
	"context"
	"testing"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagar(t *testing.T, e *testEnv, fiadoID uuid.UUID, monto string) *dto.RegistrarPagoResponse {
	t.Helper()
	r, err := e.fiados.RegistrarPago(context.Background(), e.usuario, fiadoID, dto.RegistrarPagoRequest{
		Monto:      dec(monto),
		MetodoPago: ptr("efectivo"),
	})
	require.NoError(t, err)
	return r
}

func deudaDe(t *testing.T, e *testEnv, clienteID string) string {
	t.Helper()
	c, err := e.clientes.ObtenerPorID(context.Background(), uuid.MustParse(clienteID))
	require.NoError(t, err)
	return c.Deuda.StringFixed(2)
}

func TestRegistrarPago_PartialThenFull(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "100", nil, 5)
	cli := e.cliente(t, "Juan", nil)
	v, fiadoID := e.ventaFiada(t, a, 1, cli.ID)

	r := pagar(t, e, fiadoID, "60")
	assert.Equal(t, model.FiadoPendiente, r.Fiado.Estado)
	assert.Equal(t, "60.00", r.Fiado.Pagado.StringFixed(2))
	assert.Equal(t, "40.00", r.Fiado.Saldo.StringFixed(2))
	assert.Equal(t, "100.00", deudaDe(t, e, cli.ID), "debt counts the full total until paid")

	total, err := e.fiados.DeudaPendienteTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100.00", total.StringFixed(2))

	r = pagar(t, e, fiadoID, "40")
	assert.Equal(t, model.FiadoPagada, r.Fiado.Estado)
	assert.True(t, r.Fiado.Saldo.IsZero())
	assert.Equal(t, "0.00", deudaDe(t, e, cli.ID))
	assert.True(t, e.pub.has(realtime.TablaVentasFiadas, realtime.Update))

	var pagos []model.MovimientoCaja
	for _, m := range e.movimientos(t) {
		if m.Tipo == model.MovPagoFiado {
			pagos = append(pagos, m)
		}
	}
	require.Len(t, pagos, 2)
	for _, m := range pagos {
		assert.Equal(t, "Pago de deuda venta #1", m.Descripcion)
		require.NotNil(t, m.VentaID)
		assert.Equal(t, v.ID, m.VentaID.String())
	}

	resumen, err := e.caja.Resumen(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "100.00", resumen.CajaDisponible.StringFixed(2))
}

func TestRegistrarPago_SettledSaleRejectsFurtherPayments(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "100", nil, 5)
	cli := e.cliente(t, "Juan", nil)
	_, fiadoID := e.ventaFiada(t, a, 1, cli.ID)
	pagar(t, e, fiadoID, "100")

	_, err := e.fiados.RegistrarPago(ctx, e.usuario, fiadoID, dto.RegistrarPagoRequest{Monto: dec("5")})
	assert.ErrorIs(t, err, ErrFiadoPagado)

	pagos, err := e.fiados.ListarPagos(ctx, fiadoID)
	require.NoError(t, err)
	assert.Len(t, pagos, 1, "rejected payment leaves no row")
}

func TestRegistrarPago_RejectsNonPositiveAmount(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "100", nil, 5)
	cli := e.cliente(t, "Juan", nil)
	_, fiadoID := e.ventaFiada(t, a, 1, cli.ID)

	for _, monto := range []string{"0", "-10"} {
		_, err := e.fiados.RegistrarPago(ctx, e.usuario, fiadoID, dto.RegistrarPagoRequest{Monto: dec(monto)})
		require.Error(t, err)
		assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	}
	_, err := e.fiados.RegistrarPago(ctx, e.usuario, uuid.New(), dto.RegistrarPagoRequest{Monto: dec("1")})
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestRegistrarPago_OverpaymentSettlesWithZeroSaldo(t *testing.T) {
	e := newTestEnv(t)
	a := e.producto(t, "A", "100", nil, 5)
	cli := e.cliente(t, "Juan", nil)
	_, fiadoID := e.ventaFiada(t, a, 1, cli.ID)

	r := pagar(t, e, fiadoID, "120")
	assert.Equal(t, model.FiadoPagada, r.Fiado.Estado)
	assert.True(t, r.Fiado.Saldo.IsZero())
	assert.Equal(t, "120.00", r.Fiado.Pagado.StringFixed(2))
}

func TestVerificarSaldo_IsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "100", nil, 5)
	cli := e.cliente(t, "Juan", nil)
	_, fiadoID := e.ventaFiada(t, a, 1, cli.ID)

	f, err := e.fiados.VerificarSaldo(ctx, fiadoID)
	require.NoError(t, err)
	assert.Equal(t, model.FiadoPendiente, f.Estado)

	pagar(t, e, fiadoID, "100")
	for i := 0; i < 3; i++ {
		f, err = e.fiados.VerificarSaldo(ctx, fiadoID)
		require.NoError(t, err)
		assert.Equal(t, model.FiadoPagada, f.Estado)
		assert.Equal(t, "100.00", f.Pagado.StringFixed(2))
	}

	saldado, err := e.fiadoRepo.MarcarPagadaSiSaldadaTx(ctx, nil, fiadoID)
	require.NoError(t, err)
	assert.False(t, saldado, "the transition happens once")
}

func TestRegistrarPago_QueuesReceiptForCustomersWithEmail(t *testing.T) {
	e := newTestEnv(t)
	a := e.producto(t, "A", "100", nil, 5)
	conMail := e.cliente(t, "Ana", ptr("ana@example.com"))
	sinMail := e.cliente(t, "Beto", nil)
	_, f1 := e.ventaFiada(t, a, 1, conMail.ID)
	_, f2 := e.ventaFiada(t, a, 1, sinMail.ID)

	pagar(t, e, f1, "30")
	pagar(t, e, f2, "30")

	require.Len(t, e.recibos.jobs, 1)
	job := e.recibos.jobs[0]
	assert.Equal(t, "ana@example.com", job.ToEmail)
	assert.Equal(t, "Ana", job.Cliente)
	assert.Equal(t, "30.00", job.Monto.StringFixed(2))
	assert.Equal(t, "70.00", job.Saldo.StringFixed(2))
	assert.Equal(t, "efectivo", job.MetodoPago)
}

func TestRegistrarPago_QueueFailureDoesNotFailPayment(t *testing.T) {
	e := newTestEnv(t)
	e.recibos.err = worker.ErrSinCola
	a := e.producto(t, "A", "100", nil, 5)
	cli := e.cliente(t, "Ana", ptr("ana@example.com"))
	_, fiadoID := e.ventaFiada(t, a, 1, cli.ID)

	r := pagar(t, e, fiadoID, "10")
	assert.Equal(t, "10.00", r.Pago.Monto.StringFixed(2))
}

func TestMarcarVencidos(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "10", nil, 10)
	cli := e.cliente(t, "Juan", nil)
	now := time.Date(2030, 3, 10, 15, 0, 0, 0, time.UTC)

	vender := func(vence string) uuid.UUID {
		e.agregar(t, a, 1)
		v, err := e.ventas.ConfirmarVenta(ctx, e.usuario, dto.ConfirmarVentaRequest{
			ClienteID:        &cli.ID,
			FechaVencimiento: &vence,
		})
		require.NoError(t, err)
		return uuid.MustParse(*v.VentaFiadaID)
	}
	ayer := vender("2030-03-09")
	hoy := vender("2030-03-10")
	pagadaAyer := vender("2030-03-09")
	pagar(t, e, pagadaAyer, "10")

	n, err := e.fiados.MarcarVencidos(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	estado := func(id uuid.UUID) string {
		f, err := e.fiadoRepo.FindByID(ctx, id)
		require.NoError(t, err)
		return f.Estado
	}
	assert.Equal(t, model.FiadoVencida, estado(ayer))
	assert.Equal(t, model.FiadoPendiente, estado(hoy), "due today is not overdue yet")
	assert.Equal(t, model.FiadoPagada, estado(pagadaAyer))

	n, err = e.fiados.MarcarVencidos(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Overdue sales still count as debt and can still be paid off.
	assert.Equal(t, "20.00", deudaDe(t, e, cli.ID))
	r := pagar(t, e, ayer, "10")
	assert.Equal(t, model.FiadoPagada, r.Fiado.Estado)
}

func TestListarFiados_Filters(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "10", nil, 10)
	ana := e.cliente(t, "Ana", nil)
	beto := e.cliente(t, "Beto", nil)
	_, fAna := e.ventaFiada(t, a, 1, ana.ID)
	e.ventaFiada(t, a, 2, beto.ID)
	pagar(t, e, fAna, "10")

	todos, err := e.fiados.ListarFiados(ctx, dto.FiadoFilter{})
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	deAna, err := e.fiados.ListarFiados(ctx, dto.FiadoFilter{ClienteID: ana.ID})
	require.NoError(t, err)
	require.Len(t, deAna, 1)
	assert.Equal(t, "Ana", deAna[0].Cliente)

	pendientes, err := e.fiados.ListarFiados(ctx, dto.FiadoFilter{Estado: model.FiadoPendiente})
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	assert.Equal(t, "20.00", pendientes[0].Saldo.StringFixed(2))

	_, err = e.fiados.ListarFiados(ctx, dto.FiadoFilter{Estado: "anulada"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}
