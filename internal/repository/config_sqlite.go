package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tienda-local-api/internal/store"
)

// SQLiteConfigRepository implements ConfigRepository. Last write wins.
type SQLiteConfigRepository struct {
	store *store.Store
}

// NewSQLiteConfigRepository creates a config repository.
func NewSQLiteConfigRepository(s *store.Store) *SQLiteConfigRepository {
	return &SQLiteConfigRepository{store: s}
}

// Get returns the stored value, or defaultValue if the key is absent.
func (r *SQLiteConfigRepository) Get(ctx context.Context, key, defaultValue string) (string, error) {
	var value string
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultValue, nil
		}
		return defaultValue, fmt.Errorf("failed to get config %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the value and stamps the write time.
func (r *SQLiteConfigRepository) Set(ctx context.Context, key, value string) error {
	return r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO config (key, value, timestamp) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, timestamp = excluded.timestamp`,
			key, value, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to set config %q: %w", key, err)
		}
		return nil
	})
}

var _ ConfigRepository = (*SQLiteConfigRepository)(nil)
