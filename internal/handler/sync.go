package handler

import (
	"net/http"

	"tienda-local-api/internal/service"
	"tienda-local-api/pkg/response"
)

// SyncHandler exposes the pending-action queue for inspection and manual replay.
type SyncHandler struct {
	queue     *service.SyncQueue
	scheduler *service.SyncScheduler
}

// NewSyncHandler creates a new sync handler. scheduler may be nil when the
// queue runs as a local-only audit log.
func NewSyncHandler(queue *service.SyncQueue, scheduler *service.SyncScheduler) *SyncHandler {
	return &SyncHandler{queue: queue, scheduler: scheduler}
}

// ListPending handles GET /api/v1/sync/pendientes
func (h *SyncHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.queue.Pending(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	online := false
	if h.scheduler != nil {
		online = h.scheduler.Online()
	}

	response.OK(w, map[string]interface{}{
		"pendientes": pending,
		"total":      len(pending),
		"online":     online,
	})
}

// Replay handles POST /api/v1/sync/replay - a manual reconnect trigger.
func (h *SyncHandler) Replay(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.queue.ReplayAll(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"status":   "replayed",
		"resolved": resolved,
	})
}
