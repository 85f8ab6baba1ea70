package handler

import (
	"errors"
	"net/http"

	"tienda-local-api/internal/service"
	"tienda-local-api/pkg/apierror"
	"tienda-local-api/pkg/response"
)

// CheckoutHandler handles checkout hand-off and purchase history requests.
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Checkout handles POST /api/v1/checkout
// A failed hand-off leaves the cart untouched; the client shows a transient
// notification and the user can retry.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	handoff, err := h.checkout.Checkout(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			response.Error(w, apierror.BadRequest("cart is empty"))
			return
		}
		response.Error(w, err)
		return
	}

	response.OK(w, handoff)
}

// ListPurchases handles GET /api/v1/compras
func (h *CheckoutHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.checkout.Purchases(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"compras": purchases,
		"total":   len(purchases),
	})
}
