package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/repository"
	"tienda-local-api/internal/store"
)

// stubReplayer fails replay for the product ids in failFor.
type stubReplayer struct {
	failFor  map[string]bool
	pingErr  error
	replayed []int64
}

func (r *stubReplayer) Replay(_ context.Context, action model.SyncAction) error {
	var data model.ActionData
	_ = json.Unmarshal(action.Datos, &data)
	if r.failFor[data.ProductoID] {
		return errors.New("remote rejected action")
	}
	r.replayed = append(r.replayed, action.ID)
	return nil
}

func (r *stubReplayer) Ping(context.Context) error { return r.pingErr }

func newSyncQueue(t *testing.T, replayer Replayer) (*SyncQueue, repository.SyncActionRepository) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := repository.NewSQLiteSyncActionRepository(s)
	return NewSyncQueue(repo, replayer), repo
}

func TestReplayAllResolvesOnlySuccesses(t *testing.T) {
	replayer := &stubReplayer{failFor: map[string]bool{"B": true}}
	queue, repo := newSyncQueue(t, replayer)
	ctx := context.Background()

	require.NoError(t, queue.Record(ctx, model.TipoCarritoActualizado, model.ActionData{ProductoID: "A", Accion: model.AccionAgregar}))
	require.NoError(t, queue.Record(ctx, model.TipoCarritoActualizado, model.ActionData{ProductoID: "B", Accion: model.AccionAgregar}))
	require.NoError(t, queue.Record(ctx, model.TipoCarritoActualizado, model.ActionData{ProductoID: "C", Accion: model.AccionEliminar}))

	resolved, err := queue.ReplayAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)

	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1, "the failed action stays pending")

	var data model.ActionData
	require.NoError(t, json.Unmarshal(pending[0].Datos, &data))
	assert.Equal(t, "B", data.ProductoID)

	// Next reconnect picks up the leftover.
	replayer.failFor = nil
	resolved, err = queue.ReplayAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	n, err := queue.repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestReplayAllWithoutReplayerIsAuditLog(t *testing.T) {
	queue, _ := newSyncQueue(t, nil)
	ctx := context.Background()

	require.NoError(t, queue.Record(ctx, model.TipoCarritoVaciado, struct{}{}))

	resolved, err := queue.ReplayAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, resolved)

	pending, err := queue.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "without a remote endpoint entries stay recorded")
}

func TestReplayAllEmptyQueue(t *testing.T) {
	queue, _ := newSyncQueue(t, &stubReplayer{})

	resolved, err := queue.ReplayAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resolved)
}

func TestResolveDirectly(t *testing.T) {
	queue, repo := newSyncQueue(t, nil)
	ctx := context.Background()

	id, err := repo.Append(ctx, model.TipoCarritoActualizado, model.ActionData{ProductoID: "A", Accion: model.AccionAgregar})
	require.NoError(t, err)

	require.NoError(t, queue.Resolve(ctx, id))
	assert.ErrorIs(t, queue.Resolve(ctx, id+100), store.ErrNotFound)
}

func TestHTTPReplayerPostsActions(t *testing.T) {
	var got model.SyncAction
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	replayer := NewHTTPReplayer(server.URL, 0)
	ctx := context.Background()

	require.NoError(t, replayer.Ping(ctx))
	assert.Equal(t, http.MethodHead, method)

	action := model.SyncAction{ID: 7, Tipo: model.TipoCarritoActualizado, Datos: json.RawMessage(`{"productoId":"A","accion":"agregar"}`)}
	require.NoError(t, replayer.Replay(ctx, action))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, model.TipoCarritoActualizado, got.Tipo)
}

func TestHTTPReplayerNon2xxLeavesPending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	replayer := NewHTTPReplayer(server.URL, 0)
	err := replayer.Replay(context.Background(), model.SyncAction{ID: 1, Tipo: model.TipoCarritoVaciado, Datos: json.RawMessage(`{}`)})
	assert.Error(t, err)
}

func TestSchedulerOnlineTransitions(t *testing.T) {
	replayer := &stubReplayer{pingErr: errors.New("unreachable")}
	queue, _ := newSyncQueue(t, replayer)

	scheduler := NewSyncScheduler(queue, replayer, 0)
	assert.False(t, scheduler.Online())

	scheduler.tick()
	assert.False(t, scheduler.Online())

	replayer.pingErr = nil
	scheduler.tick()
	assert.True(t, scheduler.Online())

	replayer.pingErr = errors.New("gone again")
	scheduler.tick()
	assert.False(t, scheduler.Online())

	scheduler.Stop()
	scheduler.Stop() // idempotent
}

func TestSchedulerTickReplaysWhenOnline(t *testing.T) {
	replayer := &stubReplayer{}
	queue, repo := newSyncQueue(t, replayer)
	ctx := context.Background()

	require.NoError(t, queue.Record(ctx, model.TipoCarritoActualizado, model.ActionData{ProductoID: "A", Accion: model.AccionAgregar}))

	scheduler := NewSyncScheduler(queue, replayer, 0)
	scheduler.tick()

	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Len(t, replayer.replayed, 1)
}
