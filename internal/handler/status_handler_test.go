package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/backend"
	"orderdesk/internal/state"
	"orderdesk/internal/status"
)

type mockClusterStatus struct {
	snap        status.Snapshot
	refreshFunc func(ctx context.Context) (status.Snapshot, error)
	runFunc     func(ctx context.Context) (*backend.ReplicationRun, error)
}

func (m *mockClusterStatus) Snapshot() status.Snapshot {
	return m.snap
}

func (m *mockClusterStatus) Refresh(ctx context.Context) (status.Snapshot, error) {
	return m.refreshFunc(ctx)
}

func (m *mockClusterStatus) TriggerReplication(ctx context.Context) (*backend.ReplicationRun, error) {
	return m.runFunc(ctx)
}

type mockStats struct {
	stats state.Stats
}

func (m *mockStats) Stats() state.Stats {
	return m.stats
}

func newStatusRouter(cluster *mockClusterStatus, stats *mockStats) *chi.Mux {
	r := chi.NewRouter()
	NewStatusHandler(cluster, stats).RegisterRoutes(r)
	return r
}

func TestStatusHandler_Status(t *testing.T) {
	cluster := &mockClusterStatus{
		snap: status.Snapshot{
			CurrentNode: "node-1",
			Replicas:    []backend.ReplicaStatus{{URL: "http://node-2:5000", State: "active"}},
			ActiveNodes: 2,
			CheckedAt:   time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		},
	}
	router := newStatusRouter(cluster, &mockStats{})

	w := doJSON(t, router, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"currentNode":"node-1"`)
	assert.Contains(t, w.Body.String(), `"activeNodes":2`)
}

func TestStatusHandler_Refresh(t *testing.T) {
	cluster := &mockClusterStatus{
		refreshFunc: func(ctx context.Context) (status.Snapshot, error) {
			return status.Snapshot{CurrentNode: "node-1", ActiveNodes: 1}, nil
		},
	}
	router := newStatusRouter(cluster, &mockStats{})

	w := doJSON(t, router, http.MethodPost, "/status/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestStatusHandler_RefreshFailure(t *testing.T) {
	cluster := &mockClusterStatus{
		refreshFunc: func(ctx context.Context) (status.Snapshot, error) {
			return status.Snapshot{}, errors.New("probe failed")
		},
	}
	router := newStatusRouter(cluster, &mockStats{})

	w := doJSON(t, router, http.MethodPost, "/status/refresh", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestStatusHandler_Replication(t *testing.T) {
	cluster := &mockClusterStatus{
		runFunc: func(ctx context.Context) (*backend.ReplicationRun, error) {
			return &backend.ReplicationRun{
				LogsReplicated: 3,
				Results:        []backend.ReplicationResult{{Node: "http://node-2:5000", Status: "success"}},
			}, nil
		},
	}
	router := newStatusRouter(cluster, &mockStats{})

	w := doJSON(t, router, http.MethodPost, "/replication/run", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"logsReplicated":3`)
}

func TestStatusHandler_Stats(t *testing.T) {
	stats := &mockStats{stats: state.Stats{Customers: 2, Products: 5, Orders: 9}}
	router := newStatusRouter(&mockClusterStatus{}, stats)

	w := doJSON(t, router, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "stats": {"customers": 2, "products": 5, "orders": 9}}`, w.Body.String())
}
