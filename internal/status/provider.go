// Package status exposes the cluster health panel as a pull-based provider:
// callers read the last snapshot and trigger refreshes on demand, and an
// optional loop drives refreshes on a fixed interval. The backend does the
// actual probing; this side only displays what it reports.
package status

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"orderdesk/internal/backend"
)

// Prober is the slice of the backend the provider consumes.
type Prober interface {
	VerifyReplicas(ctx context.Context) (*backend.ClusterProbe, error)
	RunReplication(ctx context.Context) (*backend.ReplicationRun, error)
}

// Snapshot is the last known cluster state. ActiveNodes counts replicas
// reporting active plus the node that answered the probe, matching how the
// original panel counted.
type Snapshot struct {
	CurrentNode string                  `json:"currentNode"`
	Replicas    []backend.ReplicaStatus `json:"replicas"`
	ActiveNodes int                     `json:"activeNodes"`
	CheckedAt   time.Time               `json:"checkedAt"`
	LastError   string                  `json:"lastError,omitempty"`
}

type Provider struct {
	prober   Prober
	interval time.Duration

	mu   sync.RWMutex
	snap Snapshot
}

func NewProvider(prober Prober, interval time.Duration) *Provider {
	return &Provider{
		prober:   prober,
		interval: interval,
	}
}

// Refresh probes the cluster once and replaces the snapshot. A failed probe
// keeps the previous replica list but records the error and check time.
func (p *Provider) Refresh(ctx context.Context) (Snapshot, error) {
	probe, err := p.prober.VerifyReplicas(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.snap.CheckedAt = time.Now()
	if err != nil {
		p.snap.LastError = err.Error()
		log.Warn().Err(err).Msg("status: replica probe failed")
		return p.snap, fmt.Errorf("status: failed to probe replicas: %w", err)
	}

	active := 1 // the node that answered
	for _, r := range probe.Replicas {
		if r.State == backend.ReplicaActive {
			active++
		}
	}

	p.snap = Snapshot{
		CurrentNode: probe.CurrentNode,
		Replicas:    probe.Replicas,
		ActiveNodes: active,
		CheckedAt:   p.snap.CheckedAt,
	}
	return p.snap, nil
}

// Snapshot returns the last refresh result without touching the network.
func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Run refreshes immediately and then on every interval tick until ctx is
// cancelled. Errors are recorded in the snapshot, never fatal.
func (p *Provider) Run(ctx context.Context) {
	if _, err := p.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("status: initial refresh failed")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("status: refresh loop stopped")
			return
		case <-ticker.C:
			if _, err := p.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("status: periodic refresh failed")
			}
		}
	}
}

// TriggerReplication asks the backend to run a replication pass now and
// returns its per-node results.
func (p *Provider) TriggerReplication(ctx context.Context) (*backend.ReplicationRun, error) {
	run, err := p.prober.RunReplication(ctx)
	if err != nil {
		return nil, fmt.Errorf("status: replication run failed: %w", err)
	}
	log.Info().Int("logs_replicated", run.LogsReplicated).Msg("status: replication pass completed")
	return run, nil
}
