// Package dispatch turns scored matches into submitted applications
// under a daily quota, with per-host pacing and randomized delays
// between submissions.
package dispatch

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/events"
)

// Ledger is the dispatcher's view of past applications. Keys are the
// listing identity keys.
type Ledger interface {
	HasApplication(ctx context.Context, listingKey, profileID string) (bool, error)
	RecordApplication(ctx context.Context, listingKey, profileID string, method domain.ApplyMethod, message string, at time.Time) error
}

// ErrAlreadyApplied is returned by a Ledger when the pair exists.
var ErrAlreadyApplied = errors.New("already applied")

type Dispatcher struct {
	quota      *Quota
	ledger     Ledger
	strategies map[domain.ApplyMethod]Strategy
	hub        *events.Hub
	log        *zap.Logger

	jitterMin time.Duration
	jitterMax time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	randInt   func(n int) int
}

type Config struct {
	Quota     *Quota
	Ledger    Ledger
	Hub       *events.Hub
	Log       *zap.Logger
	JitterMin time.Duration
	JitterMax time.Duration
}

func New(cfg Config, strategies ...Strategy) *Dispatcher {
	d := &Dispatcher{
		quota:      cfg.Quota,
		ledger:     cfg.Ledger,
		strategies: make(map[domain.ApplyMethod]Strategy, len(strategies)),
		hub:        cfg.Hub,
		log:        cfg.Log,
		jitterMin:  cfg.JitterMin,
		jitterMax:  cfg.JitterMax,
		sleep:      sleepCtx,
		now:        time.Now,
		randInt:    rand.IntN,
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	for _, s := range strategies {
		d.strategies[s.Name()] = s
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run processes the batch in order. The quota is checked before every
// task: once the day's allowance is gone the batch stops and the
// results produced so far come back. Short of that, each task gets a
// result: a failed or skipped task never aborts the rest, and
// cancellation marks the remainder skipped rather than dropping them.
func (d *Dispatcher) Run(ctx context.Context, tasks []domain.ApplicationTask) []domain.ApplicationResult {
	results := make([]domain.ApplicationResult, 0, len(tasks))

	dispatched := false
	for _, task := range tasks {
		if d.quota.Remaining() == 0 {
			d.log.Info("daily application quota reached",
				zap.Int("deferred", len(tasks)-len(results)))
			break
		}
		if ctx.Err() != nil {
			results = append(results, domain.ApplicationResult{
				Task: task, Skipped: true, Message: "cancelled before dispatch",
			})
			continue
		}

		// Pause between outgoing submissions, not before the first.
		if dispatched {
			if err := d.sleep(ctx, d.jitter()); err != nil {
				results = append(results, domain.ApplicationResult{
					Task: task, Skipped: true, Message: "cancelled before dispatch",
				})
				continue
			}
		}

		res := d.dispatchOne(ctx, task)
		if res.Success {
			dispatched = true
		}
		results = append(results, res)
	}
	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, task domain.ApplicationTask) domain.ApplicationResult {
	res := domain.ApplicationResult{Task: task}

	applied, err := d.ledger.HasApplication(ctx, task.ListingID, task.ProfileID)
	if err != nil {
		res.Error = "duplicate check: " + err.Error()
		return res
	}
	if applied {
		res.Skipped = true
		res.Message = "already applied"
		return res
	}

	res.Method = SelectMethod(task.Listing.ApplyTarget)
	if res.Method == domain.MethodManual {
		res.Skipped = true
		res.Message = "manual submission required"
		d.log.Info("application needs manual submission",
			zap.String("listing", task.ListingID))
		return res
	}

	if !d.quota.TryReserve() {
		res.Method = ""
		res.Skipped = true
		res.Message = "daily application quota reached"
		return res
	}

	strat, ok := d.strategies[res.Method]
	if !ok {
		d.quota.Release()
		res.Error = "no strategy for method " + string(res.Method)
		return res
	}

	msg, err := strat.Apply(ctx, task)
	if err != nil {
		d.quota.Release()
		res.Error = err.Error()
		d.log.Warn("application dispatch failed",
			zap.String("listing", task.ListingID),
			zap.String("method", string(res.Method)),
			zap.Error(err))
		return res
	}

	if err := d.ledger.RecordApplication(ctx, task.ListingID, task.ProfileID, res.Method, msg, d.now()); err != nil {
		if errors.Is(err, ErrAlreadyApplied) {
			d.quota.Release()
			res.Skipped = true
			res.Message = "already applied"
			return res
		}
		// The submission went out; a ledger write failure is reported
		// but does not undo success.
		d.log.Error("application record failed",
			zap.String("listing", task.ListingID), zap.Error(err))
	}

	res.Success = true
	res.Message = msg
	d.log.Info("application dispatched",
		zap.String("listing", task.ListingID),
		zap.String("method", string(res.Method)))
	if d.hub != nil {
		d.hub.Publish(events.Make("", events.TypeApplicationSent, map[string]any{
			"listing": task.ListingID,
			"method":  res.Method,
		}))
	}
	return res
}

func (d *Dispatcher) jitter() time.Duration {
	if d.jitterMax <= d.jitterMin {
		return d.jitterMin
	}
	span := int(d.jitterMax - d.jitterMin)
	return d.jitterMin + time.Duration(d.randInt(span))
}

// Remaining exposes today's unused quota for status reporting.
func (d *Dispatcher) Remaining() int { return d.quota.Remaining() }
