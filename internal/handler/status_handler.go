package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orderdesk/internal/backend"
	"orderdesk/internal/state"
	"orderdesk/internal/status"
)

// ClusterStatus is the pull-based status provider behind the health panel.
type ClusterStatus interface {
	Snapshot() status.Snapshot
	Refresh(ctx context.Context) (status.Snapshot, error)
	TriggerReplication(ctx context.Context) (*backend.ReplicationRun, error)
}

type StatsSource interface {
	Stats() state.Stats
}

// StatusHandler serves the cluster health panel and the dashboard counters.
type StatusHandler struct {
	cluster ClusterStatus
	stats   StatsSource
}

func NewStatusHandler(cluster ClusterStatus, stats StatsSource) *StatusHandler {
	return &StatusHandler{cluster: cluster, stats: stats}
}

func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.handleStatus)
	r.Post("/status/refresh", h.handleRefresh)
	r.Post("/replication/run", h.handleReplication)
	r.Get("/stats", h.handleStats)
}

// handleStatus returns the last snapshot without touching the network.
func (h *StatusHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  h.cluster.Snapshot(),
	})
}

// handleRefresh is the on-demand probe trigger.
func (h *StatusHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cluster.Refresh(r.Context())
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  snap,
	})
}

func (h *StatusHandler) handleReplication(w http.ResponseWriter, r *http.Request) {
	run, err := h.cluster.TriggerReplication(r.Context())
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"logsReplicated": run.LogsReplicated,
		"results":        run.Results,
	})
}

func (h *StatusHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   h.stats.Stats(),
	})
}
