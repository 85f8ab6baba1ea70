package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"tienda-local-api/internal/model"
	"tienda-local-api/internal/repository"
	"tienda-local-api/internal/store"
)

// Replayer is the collaborator-provided remote step of sync replay.
type Replayer interface {
	// Replay delivers one recorded action. A non-nil error leaves the action
	// pending for the next reconnect.
	Replay(ctx context.Context, action model.SyncAction) error

	// Ping reports whether the remote side is reachable.
	Ping(ctx context.Context) error
}

// SyncQueue records every mutating cart action and replays pending entries
// once connectivity returns. With a nil replayer the queue degrades to a
// local-only audit log: entries are recorded but never resolved.
type SyncQueue struct {
	repo     repository.SyncActionRepository
	replayer Replayer
}

// NewSyncQueue creates a sync queue.
func NewSyncQueue(repo repository.SyncActionRepository, replayer Replayer) *SyncQueue {
	if repo == nil {
		return nil
	}
	return &SyncQueue{repo: repo, replayer: replayer}
}

// Record appends a pending action.
func (q *SyncQueue) Record(ctx context.Context, tipo string, datos any) error {
	_, err := q.repo.Append(ctx, tipo, datos)
	return err
}

// Pending returns every unresolved action.
func (q *SyncQueue) Pending(ctx context.Context) ([]model.SyncAction, error) {
	return q.repo.Pending(ctx)
}

// Resolve marks one action as synchronized.
func (q *SyncQueue) Resolve(ctx context.Context, id int64) error {
	return q.repo.MarkSynced(ctx, id)
}

// ReplayAll replays the current pending batch. Actions recorded while the
// batch runs are simply picked up on the next invocation. Per-action failures
// are logged and skipped; the loop continues. Returns how many actions were
// resolved.
func (q *SyncQueue) ReplayAll(ctx context.Context) (int, error) {
	if q.replayer == nil {
		return 0, nil
	}

	pending, err := q.repo.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending actions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	resolved := 0
	for _, action := range pending {
		if err := q.replayer.Replay(ctx, action); err != nil {
			log.Printf("[SyncQueue] Replay of action %d (%s) failed, left pending: %v",
				action.ID, action.Tipo, err)
			continue
		}
		if err := q.repo.MarkSynced(ctx, action.ID); err != nil {
			// A vanished id is non-fatal to the rest of the batch.
			if errors.Is(err, store.ErrNotFound) {
				log.Printf("[SyncQueue] Action %d disappeared before resolve", action.ID)
				continue
			}
			return resolved, err
		}
		resolved++
	}

	log.Printf("[SyncQueue] Replayed %d/%d pending actions", resolved, len(pending))
	return resolved, nil
}

// HTTPReplayer posts recorded actions to a remote endpoint.
type HTTPReplayer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPReplayer creates a replayer for the given endpoint URL.
func NewHTTPReplayer(endpoint string, timeout time.Duration) *HTTPReplayer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPReplayer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Replay posts one action as JSON. Any non-2xx status leaves it pending.
func (r *HTTPReplayer) Replay(ctx context.Context, action model.SyncAction) error {
	body, err := json.Marshal(action)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sync endpoint returned %s", resp.Status)
	}
	return nil
}

// Ping probes the endpoint with a HEAD request.
func (r *HTTPReplayer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

var _ Replayer = (*HTTPReplayer)(nil)

// SyncScheduler periodically probes the replayer and replays pending actions
// when the remote side becomes reachable - the reconnect trigger of a
// process that has no online/offline events to listen to.
type SyncScheduler struct {
	queue    *SyncQueue
	replayer Replayer
	interval time.Duration

	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	online bool
}

// NewSyncScheduler creates a scheduler. interval defaults to 30s.
func NewSyncScheduler(queue *SyncQueue, replayer Replayer, interval time.Duration) *SyncScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SyncScheduler{
		queue:    queue,
		replayer: replayer,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the probe loop.
func (s *SyncScheduler) Start() {
	s.ticker = time.NewTicker(s.interval)
	go s.run()
	log.Printf("[SyncScheduler] Started (interval: %v)", s.interval)
}

func (s *SyncScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.tick()
		case <-s.stopCh:
			return
		}
	}
}

func (s *SyncScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	err := s.replayer.Ping(ctx)

	s.mu.Lock()
	wasOnline := s.online
	s.online = err == nil
	s.mu.Unlock()

	if err != nil {
		if wasOnline {
			log.Printf("[SyncScheduler] Connection lost: %v", err)
		}
		return
	}
	if !wasOnline {
		log.Printf("[SyncScheduler] Connection restored")
	}

	if _, err := s.queue.ReplayAll(ctx); err != nil {
		log.Printf("[SyncScheduler] Replay error: %v", err)
	}
}

// Online reports the result of the last probe.
func (s *SyncScheduler) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Stop halts the loop. Safe to call more than once.
func (s *SyncScheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
	})
}
