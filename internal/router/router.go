package router

import (
	"tienda-local-api/internal/handler"
	"tienda-local-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler         *handler.Handler
	CatalogHandler  *handler.CatalogHandler
	CartHandler     *handler.CartHandler
	CheckoutHandler *handler.CheckoutHandler
	SyncHandler     *handler.SyncHandler
	AdminHandler    *handler.AdminHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.CatalogHandler != nil {
			r.Route("/productos", func(r chi.Router) {
				r.Get("/", cfg.CatalogHandler.ListProducts)
				r.Get("/{id}", cfg.CatalogHandler.GetProduct)
			})
		}

		if cfg.CartHandler != nil {
			r.Route("/carrito", func(r chi.Router) {
				r.Get("/", cfg.CartHandler.GetCart)
				r.Get("/contador", cfg.CartHandler.GetCount)
				r.Delete("/", cfg.CartHandler.ClearCart)
				r.Route("/items", func(r chi.Router) {
					r.Post("/", cfg.CartHandler.AddItem)
					r.Post("/{id}/incrementar", cfg.CartHandler.IncrementItem)
					r.Post("/{id}/decrementar", cfg.CartHandler.DecrementItem)
					r.Delete("/{id}", cfg.CartHandler.RemoveItem)
				})
			})
		}

		if cfg.CheckoutHandler != nil {
			r.Post("/checkout", cfg.CheckoutHandler.Checkout)
			r.Get("/compras", cfg.CheckoutHandler.ListPurchases)
		}

		if cfg.SyncHandler != nil {
			r.Route("/sync", func(r chi.Router) {
				r.Get("/pendientes", cfg.SyncHandler.ListPending)
				r.Post("/replay", cfg.SyncHandler.Replay)
			})
		}

		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", cfg.AdminHandler.GetStats)
				r.Post("/purge", cfg.AdminHandler.Purge)
				if cfg.CatalogHandler != nil {
					r.Post("/catalog/reload", cfg.CatalogHandler.ReloadCatalog)
				}
			})
		}
	})

	return r
}
