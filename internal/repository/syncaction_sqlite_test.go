package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/store"
)

func TestAppendAndPending(t *testing.T) {
	repo := NewSQLiteSyncActionRepository(openTestStore(t))
	ctx := context.Background()

	id, err := repo.Append(ctx, model.TipoCarritoActualizado, model.ActionData{
		ProductoID: "A",
		Accion:     model.AccionAgregar,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.TipoCarritoActualizado, pending[0].Tipo)
	assert.False(t, pending[0].Sincronizado)
	assert.Nil(t, pending[0].FechaSincronizacion)
	assert.JSONEq(t, `{"productoId":"A","accion":"agregar"}`, string(pending[0].Datos))
}

func TestMarkSyncedRemovesFromPending(t *testing.T) {
	repo := NewSQLiteSyncActionRepository(openTestStore(t))
	ctx := context.Background()

	id, err := repo.Append(ctx, model.TipoCarritoVaciado, struct{}{})
	require.NoError(t, err)

	require.NoError(t, repo.MarkSynced(ctx, id))

	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "resolved actions leave the pending set but stay in the log")

	n, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMarkSyncedUnknownID(t *testing.T) {
	repo := NewSQLiteSyncActionRepository(openTestStore(t))

	err := repo.MarkSynced(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPendingOrderIsOldestFirst(t *testing.T) {
	repo := NewSQLiteSyncActionRepository(openTestStore(t))
	ctx := context.Background()

	first, err := repo.Append(ctx, model.TipoCarritoActualizado, model.ActionData{ProductoID: "A", Accion: model.AccionAgregar})
	require.NoError(t, err)
	second, err := repo.Append(ctx, model.TipoCarritoActualizado, model.ActionData{ProductoID: "B", Accion: model.AccionAgregar})
	require.NoError(t, err)

	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, second, pending[1].ID)
}
