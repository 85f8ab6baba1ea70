package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier broadcasts cart counts over a Redis pub/sub channel so every
// running instance sharing the store file sees counter updates from the
// others. Delivery is best-effort and not transactional with the store.
type RedisNotifier struct {
	client  *redis.Client
	channel string

	mu       sync.RWMutex
	handlers []Handler

	pubsub   *redis.PubSub
	stopOnce sync.Once
	done     chan struct{}
}

// NewRedisNotifier creates a notifier on the given channel and starts the
// subscription loop. The client is owned by the caller.
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}

	n := &RedisNotifier{
		client:  client,
		channel: channel,
		done:    make(chan struct{}),
	}

	n.pubsub = client.Subscribe(context.Background(), channel)
	go n.listen()

	log.Printf("[Notifier] Subscribed to channel %q", channel)
	return n
}

// Publish broadcasts the count. A failed publish is non-fatal to the mutation
// that triggered it; the caller only logs it.
func (n *RedisNotifier) Publish(ctx context.Context, total int64) error {
	payload, err := json.Marshal(Message{Type: TypeCarritoActualizado, Total: total})
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.channel, payload).Err()
}

// Subscribe registers a handler for counts from other instances.
func (n *RedisNotifier) Subscribe(handler Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, handler)
}

func (n *RedisNotifier) listen() {
	ch := n.pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var m Message
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				log.Printf("[Notifier] Dropping malformed message: %v", err)
				continue
			}
			if m.Type != TypeCarritoActualizado {
				continue
			}
			n.mu.RLock()
			handlers := make([]Handler, len(n.handlers))
			copy(handlers, n.handlers)
			n.mu.RUnlock()
			for _, h := range handlers {
				h(m.Total)
			}
		case <-n.done:
			return
		}
	}
}

// Close tears down the subscription. The Redis client stays open for its owner.
func (n *RedisNotifier) Close() error {
	var err error
	n.stopOnce.Do(func() {
		close(n.done)
		err = n.pubsub.Close()
	})
	return err
}

var _ Notifier = (*RedisNotifier)(nil)
