package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/store"
)

// SQLitePurchaseRepository implements PurchaseRepository. Purchases are
// write-once history; there is no update path.
type SQLitePurchaseRepository struct {
	store *store.Store
}

// NewSQLitePurchaseRepository creates a purchase repository.
func NewSQLitePurchaseRepository(s *store.Store) *SQLitePurchaseRepository {
	return &SQLitePurchaseRepository{store: s}
}

// Add inserts a purchase with its cart snapshot serialized as JSON.
// Returns store.ErrDuplicateKey on id reuse.
func (r *SQLitePurchaseRepository) Add(ctx context.Context, purchase model.Purchase) error {
	snapshot, err := json.Marshal(purchase.Productos)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase snapshot: %w", err)
	}

	return r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO compras (id, fecha, productos, total, cantidad, estado) VALUES (?, ?, ?, ?, ?, ?)",
			purchase.ID, purchase.Fecha, string(snapshot),
			purchase.Total, purchase.Cantidad, purchase.Estado)
		if err != nil {
			return fmt.Errorf("failed to insert purchase %s: %w", purchase.ID, err)
		}
		return nil
	})
}

// GetAll returns every purchase, newest first.
func (r *SQLitePurchaseRepository) GetAll(ctx context.Context) ([]model.Purchase, error) {
	return r.queryPurchases(ctx,
		"SELECT id, fecha, productos, total, cantidad, estado FROM compras ORDER BY fecha DESC")
}

// GetByEstado returns purchases in a given state via idx_compras_estado.
func (r *SQLitePurchaseRepository) GetByEstado(ctx context.Context, estado string) ([]model.Purchase, error) {
	return r.queryPurchases(ctx,
		"SELECT id, fecha, productos, total, cantidad, estado FROM compras WHERE estado = ? ORDER BY fecha DESC",
		estado)
}

func (r *SQLitePurchaseRepository) queryPurchases(ctx context.Context, query string, args ...any) ([]model.Purchase, error) {
	rows, err := r.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query compras: %w", err)
	}
	defer rows.Close()

	purchases := []model.Purchase{}
	for rows.Next() {
		var p model.Purchase
		var snapshot string
		if err := rows.Scan(&p.ID, &p.Fecha, &snapshot, &p.Total, &p.Cantidad, &p.Estado); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		if err := json.Unmarshal([]byte(snapshot), &p.Productos); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot for purchase %s: %w", p.ID, err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

var _ PurchaseRepository = (*SQLitePurchaseRepository)(nil)
