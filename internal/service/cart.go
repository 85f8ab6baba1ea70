package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/notify"
	"tienda-local-api/internal/repository"
	"tienda-local-api/internal/store"
)

// ErrItemNotInCart is the caller-visible condition for increment/decrement on
// a product that has no cart line.
var ErrItemNotInCart = errors.New("item not in cart")

// legacyMigratedKey gates the one-time legacy cart import.
const legacyMigratedKey = "legacy_cart_migrated"

// CartService owns cart line-item lifecycle and aggregates. It keeps a small
// in-memory projection of the lines, refreshed from the store after every
// mutation; the store is always the source of truth. Constructed once in main
// and passed by reference - no ambient singletons.
type CartService struct {
	cartRepo   repository.CartRepository
	configRepo repository.ConfigRepository
	queue      *SyncQueue
	notifier   notify.Notifier

	mu    sync.RWMutex
	items []model.CartItem
}

// NewCartService creates a cart service. queue and notifier are optional:
// a nil queue skips action recording, a nil notifier skips broadcasts.
func NewCartService(
	cartRepo repository.CartRepository,
	configRepo repository.ConfigRepository,
	queue *SyncQueue,
	notifier notify.Notifier,
) *CartService {
	if cartRepo == nil {
		return nil
	}
	return &CartService{
		cartRepo:   cartRepo,
		configRepo: configRepo,
		queue:      queue,
		notifier:   notifier,
	}
}

// AddItem adds one unit of the product: an existing line gets cantidad+1, a
// new line starts at 1. One pending action is recorded per call.
func (s *CartService) AddItem(ctx context.Context, product model.Product) (*model.CartItem, error) {
	if product.ID == "" {
		return nil, fmt.Errorf("product id is required")
	}

	item, err := s.cartRepo.AddOrIncrement(ctx, product)
	if err != nil {
		return nil, err
	}

	s.recordAction(ctx, model.TipoCarritoActualizado, model.ActionData{
		ProductoID: product.ID,
		Accion:     model.AccionAgregar,
	})
	s.afterMutation(ctx)
	return item, nil
}

// IncrementQuantity bumps cantidad by 1. Returns ErrItemNotInCart if absent.
func (s *CartService) IncrementQuantity(ctx context.Context, id string) (*model.CartItem, error) {
	item, err := s.cartRepo.AdjustQuantity(ctx, id, +1)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotInCart
		}
		return nil, err
	}
	s.afterMutation(ctx)
	return item, nil
}

// DecrementQuantity lowers cantidad by 1; at cantidad==1 the line is deleted
// and (nil, nil) is returned. Returns ErrItemNotInCart if absent.
func (s *CartService) DecrementQuantity(ctx context.Context, id string) (*model.CartItem, error) {
	item, err := s.cartRepo.AdjustQuantity(ctx, id, -1)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotInCart
		}
		return nil, err
	}
	if item == nil {
		// The decrement removed the line; record it like an explicit removal.
		s.recordAction(ctx, model.TipoCarritoActualizado, model.ActionData{
			ProductoID: id,
			Accion:     model.AccionEliminar,
		})
	}
	s.afterMutation(ctx)
	return item, nil
}

// RemoveItem deletes the line unconditionally. Deleting an absent line is
// silent success.
func (s *CartService) RemoveItem(ctx context.Context, id string) error {
	if err := s.cartRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	s.recordAction(ctx, model.TipoCarritoActualizado, model.ActionData{
		ProductoID: id,
		Accion:     model.AccionEliminar,
	})
	s.afterMutation(ctx)
	return nil
}

// Clear deletes every line in one transaction and records a single
// carrito_vaciado action.
func (s *CartService) Clear(ctx context.Context) error {
	if err := s.cartRepo.Clear(ctx); err != nil {
		return err
	}
	s.recordAction(ctx, model.TipoCarritoVaciado, struct{}{})
	s.afterMutation(ctx)
	return nil
}

// Items returns the current lines read through from the store.
func (s *CartService) Items(ctx context.Context) ([]model.CartItem, error) {
	items, err := s.cartRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return items, nil
}

// CachedItems returns the last refreshed projection without touching the
// store. Display-only; mutations always go back through the repository.
func (s *CartService) CachedItems() []model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count returns the sum of cantidad across all lines, 0 for an empty cart.
func (s *CartService) Count(ctx context.Context) (int64, error) {
	return s.cartRepo.Count(ctx)
}

// Total returns the sum of precio*cantidad in minor units, 0 for an empty cart.
func (s *CartService) Total(ctx context.Context) (int64, error) {
	return s.cartRepo.Total(ctx)
}

// Summary returns items, total and count in one call for the UI adapter.
func (s *CartService) Summary(ctx context.Context) (*model.CartSummary, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	var total, count int64
	for _, item := range items {
		total += item.Subtotal()
		count += item.Cantidad
	}
	return &model.CartSummary{Items: items, Total: total, Cantidad: count}, nil
}

// MigrateLegacy imports a pre-store JSON cart file at most once, gated by a
// persisted config flag, no matter how many times initialization runs.
// A missing file still sets the flag so the check never repeats.
func (s *CartService) MigrateLegacy(ctx context.Context, path string) error {
	if s.configRepo == nil || path == "" {
		return nil
	}

	migrated, err := s.configRepo.Get(ctx, legacyMigratedKey, "")
	if err != nil {
		return err
	}
	if migrated == "true" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read legacy cart %s: %w", path, err)
		}
	} else {
		var legacy []model.CartItem
		if err := json.Unmarshal(data, &legacy); err != nil {
			return fmt.Errorf("failed to decode legacy cart %s: %w", path, err)
		}
		for _, item := range legacy {
			if item.ID == "" || item.Cantidad < 1 {
				continue
			}
			if err := s.cartRepo.Put(ctx, item); err != nil {
				return fmt.Errorf("failed to import legacy item %s: %w", item.ID, err)
			}
		}
		log.Printf("[CartService] Imported %d legacy cart items", len(legacy))
	}

	return s.configRepo.Set(ctx, legacyMigratedKey, "true")
}

// recordAction appends a pending action. Recording is best-effort telemetry of
// intent: the mutation is already durable, so a failure here is only logged.
func (s *CartService) recordAction(ctx context.Context, tipo string, datos any) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Record(ctx, tipo, datos); err != nil {
		log.Printf("[CartService] Failed to record sync action %q: %v", tipo, err)
	}
}

// afterMutation refreshes the projection and broadcasts the new count.
func (s *CartService) afterMutation(ctx context.Context) {
	items, err := s.cartRepo.GetAll(ctx)
	if err != nil {
		log.Printf("[CartService] Failed to refresh cart projection: %v", err)
	} else {
		s.mu.Lock()
		s.items = items
		s.mu.Unlock()
	}

	if s.notifier == nil {
		return
	}
	count, err := s.cartRepo.Count(ctx)
	if err != nil {
		log.Printf("[CartService] Failed to read cart count: %v", err)
		return
	}
	if err := s.notifier.Publish(ctx, count); err != nil {
		log.Printf("[CartService] Failed to broadcast cart count: %v", err)
	}
}
