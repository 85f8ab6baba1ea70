package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/store"
)

// SQLiteProductRepository implements ProductRepository over the shared store.
type SQLiteProductRepository struct {
	store *store.Store
}

// NewSQLiteProductRepository creates a product repository.
func NewSQLiteProductRepository(s *store.Store) *SQLiteProductRepository {
	return &SQLiteProductRepository{store: s}
}

// ReplaceAll clears the productos table and inserts the given products inside
// one transaction, so a failed catalog load never leaves a half-empty catalog.
func (r *SQLiteProductRepository) ReplaceAll(ctx context.Context, products []model.Product) error {
	err := r.store.WithTx(ctx, store.ReadWrite, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM productos"); err != nil {
			return fmt.Errorf("failed to clear productos: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO productos (id, titulo, precio, imagen, categoria_id, categoria_nombre, fecha_actualizacion)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, p := range products {
			_, err := stmt.ExecContext(ctx, p.ID, p.Titulo, p.Precio, p.Imagen,
				p.Categoria.ID, p.Categoria.Nombre, now)
			if err != nil {
				return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[ProductRepository] Replaced catalog with %d products", len(products))
	return nil
}

const productColumns = "id, titulo, precio, imagen, categoria_id, categoria_nombre, fecha_actualizacion"

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Titulo, &p.Precio, &p.Imagen,
		&p.Categoria.ID, &p.Categoria.Nombre, &p.FechaActualizacion)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAll returns every product.
func (r *SQLiteProductRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx, "SELECT "+productColumns+" FROM productos")
}

// GetByID returns one product or store.ErrNotFound.
func (r *SQLiteProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	row := r.store.DB().QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM productos WHERE id = ?", id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// GetByCategory returns the products of a category via idx_productos_categoria.
func (r *SQLiteProductRepository) GetByCategory(ctx context.Context, categoryID string) ([]model.Product, error) {
	return r.queryProducts(ctx,
		"SELECT "+productColumns+" FROM productos WHERE categoria_id = ?", categoryID)
}

// Count returns the number of stored products.
func (r *SQLiteProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM productos").Scan(&n)
	return n, err
}

func (r *SQLiteProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query productos: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

var _ ProductRepository = (*SQLiteProductRepository)(nil)
