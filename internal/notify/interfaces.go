package notify

import "context"

// DefaultChannel is the broadcast topic for cart counter updates.
const DefaultChannel = "carrito-updates"

// TypeCarritoActualizado is the message type carried on the channel.
const TypeCarritoActualizado = "carrito-actualizado"

// Message is the payload broadcast to every subscribed instance.
type Message struct {
	Type  string `json:"type"`
	Total int64  `json:"total"`
}

// Handler receives the broadcast cart count. The count is display-only: it is
// never a source of truth for subsequent mutations and carries no ordering
// guarantee relative to the store.
type Handler func(total int64)

// Notifier propagates cart-count changes to every running instance sharing
// the store. Whether a publisher hears its own message is unspecified;
// subscribers must not rely on self-delivery either way.
type Notifier interface {
	// Publish broadcasts the current cart count.
	Publish(ctx context.Context, total int64) error

	// Subscribe registers a handler for counts published by other instances.
	Subscribe(handler Handler)

	// Close releases the channel on teardown.
	Close() error
}
