package repository

import (
	"context"

	"tienda-local-api/internal/model"
)

// ProductRepository defines catalog data access methods. Products are
// immutable reference data replaced in bulk on catalog load.
type ProductRepository interface {
	// ReplaceAll clears the collection and inserts products atomically.
	ReplaceAll(ctx context.Context, products []model.Product) error

	// GetAll returns every product.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID returns one product or store.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByCategory returns the products in a category via the secondary index.
	GetByCategory(ctx context.Context, categoryID string) ([]model.Product, error)

	// Count returns the number of stored products.
	Count(ctx context.Context) (int64, error)
}

// CartRepository defines cart line-item data access. All read-modify-write
// methods run inside a single transaction so concurrent instances sharing the
// store file cannot lose updates.
type CartRepository interface {
	// Get returns one line or store.ErrNotFound.
	Get(ctx context.Context, id string) (*model.CartItem, error)

	// GetAll returns every line, ordered by fecha_agregado for stable display.
	GetAll(ctx context.Context) ([]model.CartItem, error)

	// AddOrIncrement inserts a new line with cantidad 1, or bumps cantidad of
	// the existing line for the same product, in one transaction.
	AddOrIncrement(ctx context.Context, product model.Product) (*model.CartItem, error)

	// AdjustQuantity applies delta to cantidad in one transaction. Reaching 0
	// deletes the line and returns nil. Returns store.ErrNotFound if absent.
	AdjustQuantity(ctx context.Context, id string, delta int64) (*model.CartItem, error)

	// Put upserts a full line, keyed by id.
	Put(ctx context.Context, item model.CartItem) error

	// Delete removes a line. Returns store.ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Clear removes every line in one transaction.
	Clear(ctx context.Context) error

	// Count returns the sum of cantidad across all lines, 0 when empty.
	Count(ctx context.Context) (int64, error)

	// Total returns the sum of precio*cantidad in minor units, 0 when empty.
	Total(ctx context.Context) (int64, error)
}

// ConfigRepository defines last-write-wins settings access.
type ConfigRepository interface {
	// Get returns the stored value, or defaultValue if the key is absent.
	Get(ctx context.Context, key, defaultValue string) (string, error)

	// Set stores the value and stamps the write time.
	Set(ctx context.Context, key, value string) error
}

// SyncActionRepository defines access to the append-only pending-action log.
type SyncActionRepository interface {
	// Append records a pending action with sincronizado=false and returns its id.
	Append(ctx context.Context, tipo string, datos any) (int64, error)

	// Pending returns every action with sincronizado=false.
	Pending(ctx context.Context) ([]model.SyncAction, error)

	// MarkSynced flips sincronizado and stamps fecha_sincronizacion.
	// Returns store.ErrNotFound if the id does not exist.
	MarkSynced(ctx context.Context, id int64) error

	// CountPending returns the number of unresolved actions.
	CountPending(ctx context.Context) (int64, error)
}

// PurchaseRepository defines purchase-history access. Purchases are written
// once at checkout hand-off and never mutated.
type PurchaseRepository interface {
	// Add inserts a purchase. Returns store.ErrDuplicateKey on id reuse.
	Add(ctx context.Context, purchase model.Purchase) error

	// GetAll returns every purchase, newest first.
	GetAll(ctx context.Context) ([]model.Purchase, error)

	// GetByEstado returns purchases in a given state via the secondary index.
	GetByEstado(ctx context.Context, estado string) ([]model.Purchase, error)
}
