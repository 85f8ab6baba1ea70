package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/repository"
)

// CatalogService loads and serves the product catalog. Products come from a
// bundled JSON file on first run and from the store afterwards, so the catalog
// stays available without network or filesystem access.
type CatalogService struct {
	productRepo repository.ProductRepository
	filePath    string
}

// NewCatalogService creates a catalog service. filePath points at the bundled
// productos.json used to seed the store.
func NewCatalogService(productRepo repository.ProductRepository, filePath string) *CatalogService {
	if productRepo == nil {
		return nil
	}
	return &CatalogService{productRepo: productRepo, filePath: filePath}
}

// EnsureLoaded seeds the store from the catalog file when the productos
// collection is empty. A missing or unreadable file is not fatal: the catalog
// serves the explicit empty state instead.
func (s *CatalogService) EnsureLoaded(ctx context.Context) error {
	count, err := s.productRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("[CatalogService] Catalog already loaded (%d products)", count)
		return nil
	}

	products, err := s.loadFromFile()
	if err != nil {
		log.Printf("[CatalogService] Warning: catalog file unavailable, serving empty catalog: %v", err)
		return nil
	}
	if len(products) == 0 {
		return nil
	}

	if err := s.productRepo.ReplaceAll(ctx, products); err != nil {
		return fmt.Errorf("failed to persist catalog: %w", err)
	}
	return nil
}

// Reload replaces the stored catalog from the file unconditionally.
func (s *CatalogService) Reload(ctx context.Context) (int, error) {
	products, err := s.loadFromFile()
	if err != nil {
		return 0, err
	}
	if err := s.productRepo.ReplaceAll(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}

func (s *CatalogService) loadFromFile() ([]model.Product, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", s.filePath, err)
	}
	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", s.filePath, err)
	}
	return products, nil
}

// Products returns the full catalog, or the products of one category when
// categoryID is non-empty.
func (s *CatalogService) Products(ctx context.Context, categoryID string) ([]model.Product, error) {
	if categoryID != "" && categoryID != "todos" {
		return s.productRepo.GetByCategory(ctx, categoryID)
	}
	return s.productRepo.GetAll(ctx)
}

// Product returns one product by id.
func (s *CatalogService) Product(ctx context.Context, id string) (*model.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}
