package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/store"
)

// SQLiteSyncActionRepository implements SyncActionRepository. The table is an
// append-only audit log: rows are never deleted, replay only flips the
// sincronizado flag.
type SQLiteSyncActionRepository struct {
	store *store.Store
}

// NewSQLiteSyncActionRepository creates a sync-action repository.
func NewSQLiteSyncActionRepository(s *store.Store) *SQLiteSyncActionRepository {
	return &SQLiteSyncActionRepository{store: s}
}

// Append records a pending action and returns its auto-increment id.
func (r *SQLiteSyncActionRepository) Append(ctx context.Context, tipo string, datos any) (int64, error) {
	payload, err := json.Marshal(datos)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal action data: %w", err)
	}

	var id int64
	err = r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO sincronizacion (tipo, datos, timestamp, sincronizado) VALUES (?, ?, ?, 0)",
			tipo, string(payload), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to append sync action: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

const syncColumns = "id, tipo, datos, timestamp, sincronizado, fecha_sincronizacion"

// Pending returns every unresolved action, oldest first.
func (r *SQLiteSyncActionRepository) Pending(ctx context.Context) ([]model.SyncAction, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		"SELECT "+syncColumns+" FROM sincronizacion WHERE sincronizado = 0 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pending actions: %w", err)
	}
	defer rows.Close()

	actions := []model.SyncAction{}
	for rows.Next() {
		var a model.SyncAction
		var datos string
		var synced int
		var resolvedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.Tipo, &datos, &a.Timestamp, &synced, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync action: %w", err)
		}
		a.Datos = json.RawMessage(datos)
		a.Sincronizado = synced != 0
		if resolvedAt.Valid {
			t := resolvedAt.Time
			a.FechaSincronizacion = &t
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// MarkSynced resolves one action, store.ErrNotFound if the id does not exist.
func (r *SQLiteSyncActionRepository) MarkSynced(ctx context.Context, id int64) error {
	return r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE sincronizacion SET sincronizado = 1, fecha_sincronizacion = ? WHERE id = ?",
			time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("failed to mark action %d synced: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// CountPending returns the number of unresolved actions.
func (r *SQLiteSyncActionRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sincronizacion WHERE sincronizado = 0").Scan(&n)
	return n, err
}

var _ SyncActionRepository = (*SQLiteSyncActionRepository)(nil)
