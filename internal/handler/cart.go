package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/service"
	"tienda-local-api/pkg/apierror"
	"tienda-local-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CartHandler translates cart HTTP requests into CartService calls. It is the
// thin adapter between user gestures and the service - no cart logic lives here.
type CartHandler struct {
	cart *service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart handles GET /api/v1/carrito
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.cart.Summary(r.Context())
	if err != nil {
		// Degrade to the explicit empty state rather than failing the page.
		response.OK(w, &model.CartSummary{Items: []model.CartItem{}})
		return
	}
	response.OK(w, summary)
}

// GetCount handles GET /api/v1/carrito/contador
func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.cart.Count(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]int64{"total": count})
}

// AddItem handles POST /api/v1/carrito/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	var details []apierror.FieldError
	if product.ID == "" {
		details = append(details, apierror.FieldError{Field: "id", Message: "required"})
	}
	if product.Precio < 0 {
		details = append(details, apierror.FieldError{Field: "precio", Message: "must be >= 0"})
	}
	if len(details) > 0 {
		response.Error(w, apierror.ValidationError("invalid product", details...))
		return
	}

	item, err := h.cart.AddItem(r.Context(), product)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, item)
}

// IncrementItem handles POST /api/v1/carrito/items/{id}/incrementar
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjustItem(w, r, h.cart.IncrementQuantity)
}

// DecrementItem handles POST /api/v1/carrito/items/{id}/decrementar
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjustItem(w, r, h.cart.DecrementQuantity)
}

func (h *CartHandler) adjustItem(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id string) (*model.CartItem, error)) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("item id is required"))
		return
	}

	item, err := op(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrItemNotInCart) {
			response.Error(w, apierror.NotFound("item not in cart"))
			return
		}
		response.Error(w, err)
		return
	}

	if item == nil {
		// The decrement removed the last unit.
		response.NoContent(w)
		return
	}
	response.OK(w, item)
}

// RemoveItem handles DELETE /api/v1/carrito/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("item id is required"))
		return
	}

	if err := h.cart.RemoveItem(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}

// ClearCart handles DELETE /api/v1/carrito
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
