package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/repository"
)

// ErrEmptyCart means checkout was requested with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutConfig holds the hand-off settings.
type CheckoutConfig struct {
	// WhatsAppNumber is the destination number in international format,
	// digits only.
	WhatsAppNumber string

	// StoreName appears in the order message.
	StoreName string
}

// CheckoutService builds the WhatsApp order hand-off: a formatted order
// message, the wa.me URL that opens it, and the immutable purchase record.
// The cart is cleared only after the purchase is durably recorded; a failed
// hand-off leaves the cart untouched.
type CheckoutService struct {
	cart         *CartService
	purchaseRepo repository.PurchaseRepository
	config       CheckoutConfig
	printer      *message.Printer
}

// NewCheckoutService creates a checkout service. Amounts are formatted with
// es-CO digit grouping, matching the storefront's currency display.
func NewCheckoutService(cart *CartService, purchaseRepo repository.PurchaseRepository, config CheckoutConfig) *CheckoutService {
	if cart == nil || purchaseRepo == nil {
		return nil
	}
	return &CheckoutService{
		cart:         cart,
		purchaseRepo: purchaseRepo,
		config:       config,
		printer:      message.NewPrinter(language.MustParse("es-CO")),
	}
}

// HandOff is the result of a completed checkout.
type HandOff struct {
	URL     string         `json:"url"`
	Mensaje string         `json:"mensaje"`
	Compra  model.Purchase `json:"compra"`
}

// Checkout snapshots the cart, records the purchase, builds the WhatsApp URL
// and clears the cart, in that order.
func (s *CheckoutService) Checkout(ctx context.Context) (*HandOff, error) {
	items, err := s.cart.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var total, count int64
	for _, item := range items {
		total += item.Subtotal()
		count += item.Cantidad
	}

	now := time.Now().UTC()
	purchase := model.Purchase{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Fecha:     now,
		Productos: items,
		Total:     total,
		Cantidad:  count,
		Estado:    model.EstadoEnviadoWhatsApp,
	}

	if err := s.purchaseRepo.Add(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	msg := s.BuildMessage(items, total, count, now)
	handoff := &HandOff{
		URL:     s.WhatsAppURL(msg),
		Mensaje: msg,
		Compra:  purchase,
	}

	if err := s.cart.Clear(ctx); err != nil {
		// The purchase is recorded; a failed clear is surfaced but the
		// hand-off itself succeeded.
		log.Printf("[CheckoutService] Failed to clear cart after hand-off: %v", err)
	}

	return handoff, nil
}

// BuildMessage renders the human-readable order summary sent over WhatsApp.
func (s *CheckoutService) BuildMessage(items []model.CartItem, total, count int64, fecha time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s* - Nueva Orden de Compra\n\n", s.config.StoreName)
	fmt.Fprintf(&b, "*Fecha:* %s\n", fecha.Format("02/01/2006"))
	fmt.Fprintf(&b, "*Productos solicitados:* %d\n\n", count)
	b.WriteString("*DETALLE DEL PEDIDO:*\n")

	for i, item := range items {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, item.Titulo)
		fmt.Fprintf(&b, "   Cantidad: %d\n", item.Cantidad)
		fmt.Fprintf(&b, "   Precio unitario: $%s\n", s.formatAmount(item.Precio))
		fmt.Fprintf(&b, "   Subtotal: $%s\n\n", s.formatAmount(item.Subtotal()))
	}

	fmt.Fprintf(&b, "*TOTAL A PAGAR: $%s*\n\n", s.formatAmount(total))
	b.WriteString("*Solicito cotización y disponibilidad*\n")
	fmt.Fprintf(&b, "¡Gracias por elegir %s!", s.config.StoreName)

	return b.String()
}

// WhatsAppURL builds the wa.me link with the message pre-filled.
func (s *CheckoutService) WhatsAppURL(msg string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s",
		s.config.WhatsAppNumber, url.QueryEscape(msg))
}

// Purchases returns the recorded purchase history, newest first.
func (s *CheckoutService) Purchases(ctx context.Context) ([]model.Purchase, error) {
	return s.purchaseRepo.GetAll(ctx)
}

// formatAmount renders a minor-unit amount with es-CO digit grouping.
func (s *CheckoutService) formatAmount(amount int64) string {
	return s.printer.Sprintf("%d", amount)
}
