package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tienda-local-api/internal/config"
	"tienda-local-api/internal/handler"
	"tienda-local-api/internal/notify"
	"tienda-local-api/internal/repository"
	"tienda-local-api/internal/router"
	"tienda-local-api/internal/service"
	"tienda-local-api/internal/store"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting tienda-local-api...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Open the shared store. Failure here is fatal: there is no degraded
	// mode without the local database.
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	// Repositories over the shared store
	productRepo := repository.NewSQLiteProductRepository(db)
	cartRepo := repository.NewSQLiteCartRepository(db)
	configRepo := repository.NewSQLiteConfigRepository(db)
	syncRepo := repository.NewSQLiteSyncActionRepository(db)
	purchaseRepo := repository.NewSQLitePurchaseRepository(db)

	// Cross-instance notifier: Redis pub/sub when reachable, in-process
	// fallback otherwise (single-instance consistency only).
	var notifier notify.Notifier
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Notify.RedisAddress(),
		Password: cfg.Notify.RedisPassword,
		DB:       cfg.Notify.RedisDB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis unavailable, cart counter broadcasts are local-only: %v", err)
		redisClient.Close()
		notifier = notify.NewMemoryNotifier()
	} else {
		notifier = notify.NewRedisNotifier(redisClient, cfg.Notify.Channel)
		defer redisClient.Close()
		log.Println("Redis notifier initialized")
	}
	cancelPing()
	defer notifier.Close()

	// Sync queue: with no endpoint configured the queue records a local
	// audit log and nothing is ever replayed.
	var replayer service.Replayer
	if cfg.Sync.Endpoint != "" {
		replayer = service.NewHTTPReplayer(cfg.Sync.Endpoint, cfg.Sync.Timeout)
		log.Printf("Sync replay endpoint: %s", cfg.Sync.Endpoint)
	} else {
		log.Println("No sync endpoint configured; pending actions kept as local audit log")
	}
	queue := service.NewSyncQueue(syncRepo, replayer)

	var scheduler *service.SyncScheduler
	if replayer != nil {
		scheduler = service.NewSyncScheduler(queue, replayer, cfg.Sync.Interval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Services
	catalogService := service.NewCatalogService(productRepo, cfg.Catalog.Path)
	cartService := service.NewCartService(cartRepo, configRepo, queue, notifier)
	checkoutService := service.NewCheckoutService(cartService, purchaseRepo, service.CheckoutConfig{
		WhatsAppNumber: cfg.Checkout.WhatsAppNumber,
		StoreName:      cfg.Checkout.StoreName,
	})

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := catalogService.EnsureLoaded(startCtx); err != nil {
		log.Printf("Warning: catalog load failed: %v", err)
	}
	if err := cartService.MigrateLegacy(startCtx, cfg.Store.LegacyCartPath); err != nil {
		log.Printf("Warning: legacy cart migration failed: %v", err)
	}
	cancelStart()

	// Handlers
	healthHandler := handler.New(db)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	syncHandler := handler.NewSyncHandler(queue, scheduler)
	adminHandler := handler.NewAdminHandler(db)

	// Create router
	r := router.New(router.Config{
		Handler:         healthHandler,
		CatalogHandler:  catalogHandler,
		CartHandler:     cartHandler,
		CheckoutHandler: checkoutHandler,
		SyncHandler:     syncHandler,
		AdminHandler:    adminHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
