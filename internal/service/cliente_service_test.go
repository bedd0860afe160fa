package service

import (
	"context"
	"testing"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClienteCrear_RequiresName(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.clientes.Crear(context.Background(), dto.CrearClienteRequest{Nombre: "  "})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestClienteListar_DerivesDebt(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "25", nil, 10)
	ana := e.cliente(t, "Ana", nil)
	e.cliente(t, "Beto", nil)
	e.ventaFiada(t, a, 2, ana.ID)

	lista, err := e.clientes.Listar(ctx, "")
	require.NoError(t, err)
	require.Len(t, lista, 2)
	deudas := map[string]string{}
	for _, c := range lista {
		deudas[c.Nombre] = c.Deuda.StringFixed(2)
	}
	assert.Equal(t, "50.00", deudas["Ana"])
	assert.Equal(t, "0.00", deudas["Beto"])

	filtrada, err := e.clientes.Listar(ctx, "an")
	require.NoError(t, err)
	require.Len(t, filtrada, 1)
	assert.Equal(t, "Ana", filtrada[0].Nombre)
}

func TestClienteActualizar_ClearsBlankFields(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.cliente(t, "Ana", ptr("ana@example.com"))
	id := uuid.MustParse(c.ID)

	r, err := e.clientes.Actualizar(ctx, id, dto.ActualizarClienteRequest{
		Email:    ptr(""),
		Telefono: ptr(" 351-555 "),
	})
	require.NoError(t, err)
	assert.Nil(t, r.Email)
	require.NotNil(t, r.Telefono)
	assert.Equal(t, "351-555", *r.Telefono)
	assert.Equal(t, "Ana", r.Nombre)

	_, err = e.clientes.Actualizar(ctx, id, dto.ActualizarClienteRequest{Nombre: ptr("")})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestClienteEliminar(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.producto(t, "A", "25", nil, 10)
	deudor := e.cliente(t, "Ana", nil)
	libre := e.cliente(t, "Beto", nil)
	e.ventaFiada(t, a, 1, deudor.ID)

	err := e.clientes.Eliminar(ctx, uuid.MustParse(deudor.ID))
	assert.ErrorIs(t, err, ErrClienteConFiados)

	require.NoError(t, e.clientes.Eliminar(ctx, uuid.MustParse(libre.ID)))
	_, err = e.clientes.ObtenerPorID(ctx, uuid.MustParse(libre.ID))
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}
