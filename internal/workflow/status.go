package workflow

import (
	"context"
	"time"

	"jobpilot-engine/internal/domain"
)

// Health levels for the status rollup.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// Snapshot is the externally visible orchestrator state.
type Snapshot struct {
	Running        bool                `json:"running"`
	AutoEnabled    bool                `json:"auto_enabled"`
	CurrentRunID   string              `json:"current_run_id,omitempty"`
	LastRun        *domain.WorkflowRun `json:"last_run,omitempty"`
	LastSearchOKAt *time.Time          `json:"last_search_ok_at,omitempty"`
	QuotaRemaining int                 `json:"quota_remaining"`
	Health         string              `json:"health"`
}

// Status assembles the snapshot. Cheap enough to serve on every poll.
func (o *Orchestrator) Status(ctx context.Context) Snapshot {
	o.mu.Lock()
	s := Snapshot{
		Running:     o.running,
		AutoEnabled: o.auto,
	}
	if o.current != nil {
		s.CurrentRunID = o.current.ID
	}
	if o.last != nil {
		last := *o.last
		s.LastRun = &last
	}
	if !o.lastSearchOK.IsZero() {
		t := o.lastSearchOK
		s.LastSearchOKAt = &t
	}
	o.mu.Unlock()

	if o.Applier != nil {
		s.QuotaRemaining = o.Applier.Remaining()
	}
	s.Health = o.health(ctx)
	return s
}

// health rolls component checks into one verdict: unreachable storage
// is unhealthy, a failed last run or missing sources degrades, all
// clear is healthy.
func (o *Orchestrator) health(ctx context.Context) string {
	if o.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := o.DB.PingContext(pingCtx)
		cancel()
		if err != nil {
			return HealthUnhealthy
		}
	}

	cfg := o.ConfigFn()
	if !cfg.Sources.API.Enabled && !cfg.Sources.Boards.Enabled {
		return HealthDegraded
	}

	o.mu.Lock()
	failed := o.last != nil && !o.last.Summary.Success
	o.mu.Unlock()
	if failed {
		return HealthDegraded
	}
	return HealthHealthy
}
