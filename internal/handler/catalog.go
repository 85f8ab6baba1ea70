package handler

import (
	"errors"
	"net/http"

	"tienda-local-api/internal/service"
	"tienda-local-api/internal/store"
	"tienda-local-api/pkg/apierror"
	"tienda-local-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler handles product catalog HTTP requests.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts handles GET /api/v1/productos?categoria=<id>
// A failed catalog load degrades to an empty list, never a crash.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context(), r.URL.Query().Get("categoria"))
	if err != nil {
		response.OK(w, map[string]interface{}{
			"productos": []interface{}{},
			"total":     0,
		})
		return
	}

	response.OK(w, map[string]interface{}{
		"productos": products,
		"total":     len(products),
	})
}

// GetProduct handles GET /api/v1/productos/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("product id is required"))
		return
	}

	product, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, apierror.NotFound("product not found"))
			return
		}
		response.Error(w, err)
		return
	}

	response.OK(w, product)
}

// ReloadCatalog handles POST /api/v1/admin/catalog/reload
func (h *CatalogHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.Reload(r.Context())
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("catalog file unavailable"))
		return
	}

	response.OK(w, map[string]interface{}{
		"status":    "reloaded",
		"productos": n,
	})
}
