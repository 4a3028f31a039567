package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/events"
)

// autoCheckInterval is how often the loop re-evaluates whether a run is
// due. The run cadence itself comes from scraping_interval_hours.
const autoCheckInterval = time.Minute

var (
	ErrAutoAlreadyOn = errors.New("auto mode already running")
	ErrAutoNotOn     = errors.New("auto mode is not running")
)

// StartAuto launches the periodic loop. A run fires when the configured
// interval has passed since the last successful search.
func (o *Orchestrator) StartAuto() error {
	o.mu.Lock()
	if o.auto {
		o.mu.Unlock()
		return ErrAutoAlreadyOn
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	o.auto = true
	o.autoCancel = cancel
	o.autoDone = done
	o.mu.Unlock()

	go o.autoLoop(ctx, done)

	o.publish("", events.TypeAutoMode, map[string]any{"enabled": true})
	o.Log.Info("auto mode started")
	return nil
}

// StopAuto cancels the loop and waits for it to acknowledge.
func (o *Orchestrator) StopAuto() error {
	o.mu.Lock()
	if !o.auto {
		o.mu.Unlock()
		return ErrAutoNotOn
	}
	cancel := o.autoCancel
	done := o.autoDone
	o.auto = false
	o.autoCancel = nil
	o.autoDone = nil
	o.mu.Unlock()

	cancel()
	<-done

	o.publish("", events.TypeAutoMode, map[string]any{"enabled": false})
	o.Log.Info("auto mode stopped")
	return nil
}

// AutoEnabled reports whether the loop is active.
func (o *Orchestrator) AutoEnabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.auto
}

func (o *Orchestrator) autoLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(autoCheckInterval)
	defer t.Stop()

	o.maybeRun()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			o.maybeRun()
		}
	}
}

// maybeRun fires a run when the search interval has elapsed. The run
// executes in the background on its own context: stopping the loop
// stops the scheduling, never a run already in flight. A run already
// executing just means we check again next tick.
func (o *Orchestrator) maybeRun() {
	cfg := o.ConfigFn()
	interval := time.Duration(cfg.Workflow.ScrapingIntervalHours) * time.Hour

	o.mu.Lock()
	due := o.lastSearchOK.IsZero() || o.now().Sub(o.lastSearchOK) >= interval
	o.mu.Unlock()
	if !due {
		return
	}

	if _, err := o.StartRun(domain.Query{}); err != nil {
		if !errors.Is(err, ErrBusy) {
			o.Log.Warn("auto run failed to start", zap.Error(err))
		}
	}
}
