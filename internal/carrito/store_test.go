package carrito

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IsolatesCallersFromStoredState(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	uid := uuid.New()

	c, err := s.Get(ctx, uid)
	require.NoError(t, err)
	assert.True(t, c.Vacio())

	require.NoError(t, c.AgregarProducto(producto("A", "10", 5), 1))
	got, err := s.Get(ctx, uid)
	require.NoError(t, err)
	assert.True(t, got.Vacio(), "unsaved changes must not leak into the store")

	require.NoError(t, s.Save(ctx, uid, c))
	got, err = s.Get(ctx, uid)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)

	other, err := s.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, other.Vacio())

	require.NoError(t, s.Delete(ctx, uid))
	got, err = s.Get(ctx, uid)
	require.NoError(t, err)
	assert.True(t, got.Vacio())
}
