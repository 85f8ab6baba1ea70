package notify

import (
	"context"
	"sync"
)

// MemoryNotifier is an in-process Notifier. It is the silent-degrade fallback
// when no broadcast transport is available: consistency shrinks to the single
// running instance, nothing else changes.
type MemoryNotifier struct {
	mu       sync.RWMutex
	handlers []Handler
	closed   bool
}

// NewMemoryNotifier creates an in-process notifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

// Publish delivers the count to every registered handler synchronously.
func (n *MemoryNotifier) Publish(ctx context.Context, total int64) error {
	n.mu.RLock()
	handlers := make([]Handler, len(n.handlers))
	copy(handlers, n.handlers)
	closed := n.closed
	n.mu.RUnlock()

	if closed {
		return nil
	}
	for _, h := range handlers {
		h(total)
	}
	return nil
}

// Subscribe registers a handler.
func (n *MemoryNotifier) Subscribe(handler Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, handler)
}

// Close drops all handlers.
func (n *MemoryNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.handlers = nil
	return nil
}

var _ Notifier = (*MemoryNotifier)(nil)
