package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/notify"
	"tienda-local-api/internal/repository"
	"tienda-local-api/internal/store"
)

type cartFixture struct {
	cart     *CartService
	queue    *SyncQueue
	syncRepo repository.SyncActionRepository
	notifier *notify.MemoryNotifier
	config   repository.ConfigRepository
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	syncRepo := repository.NewSQLiteSyncActionRepository(s)
	configRepo := repository.NewSQLiteConfigRepository(s)
	queue := NewSyncQueue(syncRepo, nil)
	notifier := notify.NewMemoryNotifier()

	cart := NewCartService(repository.NewSQLiteCartRepository(s), configRepo, queue, notifier)
	require.NotNil(t, cart)
	return &cartFixture{cart: cart, queue: queue, syncRepo: syncRepo, notifier: notifier, config: configRepo}
}

func producto(id string, precio int64) model.Product {
	return model.Product{ID: id, Titulo: "Producto " + id, Precio: precio}
}

// The full add/add/decrement/decrement walk from an empty cart.
func TestCartLifecycle(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	item, err := f.cart.AddItem(ctx, producto("A", 1000))
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.Cantidad)

	total, err := f.cart.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total)

	item, err = f.cart.AddItem(ctx, producto("A", 1000))
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Cantidad)

	total, err = f.cart.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), total)
	count, err := f.cart.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	item, err = f.cart.DecrementQuantity(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, int64(1), item.Cantidad)

	item, err = f.cart.DecrementQuantity(ctx, "A")
	require.NoError(t, err)
	assert.Nil(t, item, "decrementing the last unit removes the line")

	items, err := f.cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	total, err = f.cart.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

// After any operation sequence the invariants hold: one line per id,
// cantidad >= 1, and Total matches the recomputed sum.
func TestCartInvariantsAcrossSequences(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	ops := []func() error{
		func() error { _, err := f.cart.AddItem(ctx, producto("A", 1000)); return err },
		func() error { _, err := f.cart.AddItem(ctx, producto("B", 2500)); return err },
		func() error { _, err := f.cart.AddItem(ctx, producto("A", 1000)); return err },
		func() error { _, err := f.cart.IncrementQuantity(ctx, "B"); return err },
		func() error { _, err := f.cart.DecrementQuantity(ctx, "A"); return err },
		func() error { _, err := f.cart.AddItem(ctx, producto("C", 500)); return err },
		func() error { return f.cart.RemoveItem(ctx, "B") },
		func() error { _, err := f.cart.DecrementQuantity(ctx, "C"); return err },
	}

	for i, op := range ops {
		require.NoError(t, op(), "op %d", i)

		items, err := f.cart.Items(ctx)
		require.NoError(t, err)

		seen := map[string]bool{}
		var recomputed int64
		for _, item := range items {
			assert.False(t, seen[item.ID], "duplicate line for %s after op %d", item.ID, i)
			seen[item.ID] = true
			assert.GreaterOrEqual(t, item.Cantidad, int64(1), "cantidad below 1 after op %d", i)
			recomputed += item.Subtotal()
		}

		total, err := f.cart.Total(ctx)
		require.NoError(t, err)
		assert.Equal(t, recomputed, total, "total drifted after op %d", i)
	}
}

func TestIncrementMissingItem(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.cart.IncrementQuantity(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrItemNotInCart)
	_, err = f.cart.DecrementQuantity(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrItemNotInCart)
}

func TestRemoveMissingItemIsSilentSuccess(t *testing.T) {
	f := newCartFixture(t)

	assert.NoError(t, f.cart.RemoveItem(context.Background(), "missing"))
}

func TestClearResetsAggregates(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, producto("A", 1000))
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, producto("B", 2000))
	require.NoError(t, err)

	require.NoError(t, f.cart.Clear(ctx))

	summary, err := f.cart.Summary(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Equal(t, int64(0), summary.Total)
	assert.Equal(t, int64(0), summary.Cantidad)
}

// Every mutating operation appends exactly one pending action.
func TestMutationsRecordOnePendingActionEach(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, producto("A", 1000))
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, producto("A", 1000))
	require.NoError(t, err)
	require.NoError(t, f.cart.RemoveItem(ctx, "A"))
	require.NoError(t, f.cart.Clear(ctx))

	pending, err := f.queue.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 4)

	assert.Equal(t, model.TipoCarritoActualizado, pending[0].Tipo)
	assert.Equal(t, model.TipoCarritoActualizado, pending[2].Tipo)
	assert.Equal(t, model.TipoCarritoVaciado, pending[3].Tipo)
	for _, a := range pending {
		assert.False(t, a.Sincronizado)
	}
}

func TestMutationsBroadcastCount(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	var got []int64
	f.notifier.Subscribe(func(total int64) { got = append(got, total) })

	_, err := f.cart.AddItem(ctx, producto("A", 1000))
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, producto("A", 1000))
	require.NoError(t, err)
	require.NoError(t, f.cart.Clear(ctx))

	assert.Equal(t, []int64{1, 2, 0}, got)
}

func TestMigrateLegacyRunsOnce(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	dir := t.TempDir()
	legacy := filepath.Join(dir, "carrito-legacy.json")
	writeFile(t, legacy, `[
		{"id":"A","titulo":"Producto A","precio":1000,"cantidad":3,
		 "fechaAgregado":"2024-01-10T12:00:00Z","fechaActualizacion":"2024-01-10T12:00:00Z"},
		{"id":"","titulo":"invalid","precio":1,"cantidad":1}
	]`)

	require.NoError(t, f.cart.MigrateLegacy(ctx, legacy))

	items, err := f.cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Cantidad)

	// Second run is a no-op even if the cart changed in between.
	require.NoError(t, f.cart.RemoveItem(ctx, "A"))
	require.NoError(t, f.cart.MigrateLegacy(ctx, legacy))

	items, err = f.cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "flagged migration must not re-import")
}

func TestMigrateLegacyMissingFileSetsFlag(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	missing := filepath.Join(t.TempDir(), "nope.json")
	require.NoError(t, f.cart.MigrateLegacy(ctx, missing))

	flag, err := f.config.Get(ctx, "legacy_cart_migrated", "")
	require.NoError(t, err)
	assert.Equal(t, "true", flag)
}
