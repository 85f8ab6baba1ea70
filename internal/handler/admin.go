package handler

import (
	"net/http"

	"tienda-local-api/internal/store"
	"tienda-local-api/pkg/response"
)

// AdminHandler handles store maintenance requests.
type AdminHandler struct {
	store *store.Store
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(s *store.Store) *AdminHandler {
	return &AdminHandler{store: s}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, stats)
}

// Purge handles POST /api/v1/admin/purge - clears every collection in one
// transaction.
func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if err := h.store.PurgeAll(r.Context()); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]string{"status": "purged"})
}
