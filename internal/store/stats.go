package store

import "context"

// Stats aggregates store-wide counters for the admin surface.
type Stats struct {
	TotalProductos     int64 `json:"total_productos"`
	ProductosEnCarrito int64 `json:"productos_en_carrito"`
	ValorTotalCarrito  int64 `json:"valor_total_carrito"`
	AccionesPendientes int64 `json:"acciones_pendientes"`
	ComprasRegistradas int64 `json:"compras_registradas"`
	SchemaVersion      int   `json:"schema_version"`
	SizeBytes          int64 `json:"db_size_bytes"`
}

// Stats recomputes the aggregates from the live tables.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{SchemaVersion: SchemaVersion}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM productos", &stats.TotalProductos},
		{"SELECT COUNT(*) FROM carrito", &stats.ProductosEnCarrito},
		{"SELECT COALESCE(SUM(precio * cantidad), 0) FROM carrito", &stats.ValorTotalCarrito},
		{"SELECT COUNT(*) FROM sincronizacion WHERE sincronizado = 0", &stats.AccionesPendientes},
		{"SELECT COUNT(*) FROM compras", &stats.ComprasRegistradas},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	var pageCount, pageSize int64
	s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats.SizeBytes = pageCount * pageSize

	return stats, nil
}
