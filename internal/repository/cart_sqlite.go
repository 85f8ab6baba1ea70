package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/store"
)

// SQLiteCartRepository implements CartRepository over the shared store.
// Every read-modify-write runs inside one store.WithTx scope; this is what
// keeps two instances incrementing the same line from losing an update.
type SQLiteCartRepository struct {
	store *store.Store
}

// NewSQLiteCartRepository creates a cart repository.
func NewSQLiteCartRepository(s *store.Store) *SQLiteCartRepository {
	return &SQLiteCartRepository{store: s}
}

const cartColumns = "id, titulo, precio, imagen, cantidad, fecha_agregado, fecha_actualizacion"

func scanCartItem(row interface{ Scan(...any) error }) (*model.CartItem, error) {
	var item model.CartItem
	err := row.Scan(&item.ID, &item.Titulo, &item.Precio, &item.Imagen,
		&item.Cantidad, &item.FechaAgregado, &item.FechaActualizacion)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Get returns one line or store.ErrNotFound.
func (r *SQLiteCartRepository) Get(ctx context.Context, id string) (*model.CartItem, error) {
	row := r.store.DB().QueryRowContext(ctx,
		"SELECT "+cartColumns+" FROM carrito WHERE id = ?", id)
	item, err := scanCartItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return item, nil
}

// GetAll returns every line ordered by fecha_agregado. The engine itself has
// no insertion-order guarantee, so display order is made explicit here.
func (r *SQLiteCartRepository) GetAll(ctx context.Context) ([]model.CartItem, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		"SELECT "+cartColumns+" FROM carrito ORDER BY fecha_agregado, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query carrito: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// AddOrIncrement inserts a new line with cantidad 1 or bumps the existing one,
// select and write in the same transaction.
func (r *SQLiteCartRepository) AddOrIncrement(ctx context.Context, product model.Product) (*model.CartItem, error) {
	var result *model.CartItem
	err := r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		now := time.Now().UTC()

		row := tx.QueryRowContext(ctx, "SELECT "+cartColumns+" FROM carrito WHERE id = ?", product.ID)
		existing, err := scanCartItem(row)
		switch {
		case err == nil:
			existing.Cantidad++
			existing.FechaActualizacion = now
			_, err = tx.ExecContext(ctx,
				"UPDATE carrito SET cantidad = ?, fecha_actualizacion = ? WHERE id = ?",
				existing.Cantidad, now, existing.ID)
			if err != nil {
				return fmt.Errorf("failed to update cantidad: %w", err)
			}
			result = existing
			return nil
		case errors.Is(err, sql.ErrNoRows):
			item := model.CartItem{
				ID:                 product.ID,
				Titulo:             product.Titulo,
				Precio:             product.Precio,
				Imagen:             product.Imagen,
				Cantidad:           1,
				FechaAgregado:      now,
				FechaActualizacion: now,
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO carrito ("+cartColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
				item.ID, item.Titulo, item.Precio, item.Imagen,
				item.Cantidad, item.FechaAgregado, item.FechaActualizacion)
			if err != nil {
				return fmt.Errorf("failed to insert cart item: %w", err)
			}
			result = &item
			return nil
		default:
			return fmt.Errorf("failed to read cart item: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustQuantity applies delta inside one transaction. A resulting cantidad of
// 0 or less deletes the line (returns nil, nil). Absent lines return
// store.ErrNotFound.
func (r *SQLiteCartRepository) AdjustQuantity(ctx context.Context, id string, delta int64) (*model.CartItem, error) {
	var result *model.CartItem
	err := r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, "SELECT "+cartColumns+" FROM carrito WHERE id = ?", id)
		item, err := scanCartItem(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNotFound
			}
			return fmt.Errorf("failed to read cart item: %w", err)
		}

		item.Cantidad += delta
		if item.Cantidad < 1 {
			if _, err := tx.ExecContext(ctx, "DELETE FROM carrito WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to delete cart item: %w", err)
			}
			result = nil
			return nil
		}

		item.FechaActualizacion = time.Now().UTC()
		_, err = tx.ExecContext(ctx,
			"UPDATE carrito SET cantidad = ?, fecha_actualizacion = ? WHERE id = ?",
			item.Cantidad, item.FechaActualizacion, id)
		if err != nil {
			return fmt.Errorf("failed to update cantidad: %w", err)
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Put upserts a full line, keyed by id.
func (r *SQLiteCartRepository) Put(ctx context.Context, item model.CartItem) error {
	return r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO carrito (`+cartColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				titulo = excluded.titulo,
				precio = excluded.precio,
				imagen = excluded.imagen,
				cantidad = excluded.cantidad,
				fecha_actualizacion = excluded.fecha_actualizacion`,
			item.ID, item.Titulo, item.Precio, item.Imagen,
			item.Cantidad, item.FechaAgregado, item.FechaActualizacion)
		if err != nil {
			return fmt.Errorf("failed to upsert cart item: %w", err)
		}
		return nil
	})
}

// Delete removes a line, store.ErrNotFound if absent.
func (r *SQLiteCartRepository) Delete(ctx context.Context, id string) error {
	return r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM carrito WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete cart item: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// Clear removes every line in one transaction.
func (r *SQLiteCartRepository) Clear(ctx context.Context) error {
	return r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM carrito"); err != nil {
			return fmt.Errorf("failed to clear carrito: %w", err)
		}
		return nil
	})
}

// Count returns the sum of cantidad, 0 for an empty cart.
func (r *SQLiteCartRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT COALESCE(SUM(cantidad), 0) FROM carrito").Scan(&n)
	return n, err
}

// Total returns the sum of precio*cantidad in minor units, 0 for an empty cart.
func (r *SQLiteCartRepository) Total(ctx context.Context) (int64, error) {
	var total int64
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT COALESCE(SUM(precio * cantidad), 0) FROM carrito").Scan(&total)
	return total, err
}

var _ CartRepository = (*SQLiteCartRepository)(nil)
