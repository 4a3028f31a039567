// Package workflow coordinates the pipeline: search, dedup, score,
// apply, track. At most one run executes at a time.
package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobpilot-engine/internal/cache"
	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/dedup"
	"jobpilot-engine/internal/dispatch"
	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/events"
	"jobpilot-engine/internal/extract"
	"jobpilot-engine/internal/letter"
	"jobpilot-engine/internal/match"
	"jobpilot-engine/internal/store"
	"jobpilot-engine/internal/track"
)

// Phase names as they appear in run status payloads.
const (
	PhaseSearch = "search"
	PhaseDedup  = "dedup"
	PhaseScore  = "score"
	PhaseApply  = "apply"
	PhaseTrack  = "track"
)

// ErrBusy is returned when a trigger arrives while a run is executing.
var ErrBusy = errors.New("workflow already running")

// Fetcher is the listing acquisition side, satisfied by source.Multi.
type Fetcher interface {
	Fetch(ctx context.Context, q domain.Query) ([]domain.Listing, error)
}

// Applier is the submission side, satisfied by dispatch.Dispatcher.
type Applier interface {
	Run(ctx context.Context, tasks []domain.ApplicationTask) []domain.ApplicationResult
	Remaining() int
}

type Orchestrator struct {
	ConfigFn  func() config.Config
	ProfileFn func() domain.CandidateProfile

	Fetcher Fetcher
	Matcher *match.Matcher
	Applier Applier
	Tracker *track.Tracker
	Letters letter.Generator
	Cache   *cache.Results
	DB      *sql.DB
	Hub     *events.Hub
	Log     *zap.Logger

	now func() time.Time

	mu      sync.Mutex
	running bool
	current *domain.WorkflowRun
	last    *domain.WorkflowRun

	lastSearchOK time.Time

	auto       bool
	autoCancel context.CancelFunc
	autoDone   chan struct{}
}

func New(o Orchestrator) *Orchestrator {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Matcher == nil {
		o.Matcher = match.New()
	}
	if o.Letters == nil {
		o.Letters = letter.Template{}
	}
	if o.now == nil {
		o.now = time.Now
	}
	return &o
}

// StartRun kicks off a run in the background. The run id comes back
// immediately; progress is on the event hub and the status endpoint.
// A second trigger while one is executing gets ErrBusy.
func (o *Orchestrator) StartRun(q domain.Query) (string, error) {
	run, err := o.begin(q)
	if err != nil {
		return "", err
	}
	go o.execute(context.Background(), run)
	return run.ID, nil
}

// RunOnce executes a run synchronously and returns the finished run.
func (o *Orchestrator) RunOnce(ctx context.Context, q domain.Query) (domain.WorkflowRun, error) {
	run, err := o.begin(q)
	if err != nil {
		return domain.WorkflowRun{}, err
	}
	return o.execute(ctx, run), nil
}

func (o *Orchestrator) begin(q domain.Query) (*domain.WorkflowRun, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return nil, ErrBusy
	}

	q = o.fillQuery(q)
	run := &domain.WorkflowRun{
		ID:        uuid.NewString(),
		Status:    domain.RunRunning,
		Query:     q,
		StartedAt: o.now().UTC(),
		Phases:    make(map[string]domain.PhaseResult),
	}
	o.running = true
	o.current = run
	return run, nil
}

// fillQuery substitutes configured search defaults for empty fields.
func (o *Orchestrator) fillQuery(q domain.Query) domain.Query {
	cfg := o.ConfigFn()
	if q.Keywords == "" {
		q.Keywords = cfg.Search.Keywords
	}
	if q.Location == "" {
		q.Location = cfg.Search.Location
	}
	if q.MaxResults <= 0 {
		q.MaxResults = cfg.Search.MaxResults
	}
	return q
}

func (o *Orchestrator) execute(ctx context.Context, run *domain.WorkflowRun) domain.WorkflowRun {
	defer func() {
		o.mu.Lock()
		o.running = false
		o.current = nil
		o.last = run
		o.mu.Unlock()
	}()

	o.publish(run.ID, events.TypeRunStarted, run.Query)
	o.Log.Info("workflow run started",
		zap.String("run", run.ID),
		zap.String("keywords", run.Query.Keywords))

	cfg := o.ConfigFn()
	matches := o.searchAndScore(ctx, run, cfg)
	o.applyPhase(ctx, run, cfg, matches)
	o.trackPhase(ctx, run)

	run.EndedAt = o.now().UTC()
	run.Summary.Success = run.Phases[PhaseSearch].Success && run.Phases[PhaseScore].Success
	if !run.Summary.Success && run.Summary.Reason == "" {
		run.Summary.Reason = firstPhaseError(run)
	}
	if run.Summary.Success {
		run.Status = domain.RunCompleted
		o.publish(run.ID, events.TypeRunCompleted, run.Summary)
	} else {
		run.Status = domain.RunFailed
		o.publish(run.ID, events.TypeRunFailed, run.Summary)
	}

	o.logActivity(ctx, "run."+string(run.Status),
		fmt.Sprintf("found=%d unique=%d scored=%d applied=%d",
			run.Summary.JobsFound, run.Summary.UniqueJobs,
			run.Summary.JobsScored, run.Summary.ApplicationsSent))
	o.Log.Info("workflow run finished",
		zap.String("run", run.ID),
		zap.String("status", string(run.Status)))
	return *run
}

// searchAndScore covers the search, dedup and score phases. A cache hit
// satisfies search and score together.
func (o *Orchestrator) searchAndScore(ctx context.Context, run *domain.WorkflowRun, cfg config.Config) []domain.MatchResult {
	if o.Cache != nil {
		if payload, ok := o.Cache.Get(run.Query); ok {
			o.Log.Info("search served from cache", zap.String("run", run.ID))
			run.Phases[PhaseSearch] = phaseOK(len(payload.Listings), o.now())
			run.Phases[PhaseDedup] = phaseOK(len(payload.Listings), o.now())
			run.Phases[PhaseScore] = phaseOK(len(payload.Matches), o.now())
			run.Summary.JobsFound = len(payload.Listings)
			run.Summary.UniqueJobs = len(payload.Listings)
			run.Summary.JobsScored = len(payload.Matches)
			run.Summary.HighScoringJobs = countAbove(payload.Matches, cfg.Workflow.ScoringThreshold)
			o.markSearchOK()
			return payload.Matches
		}
	}

	listings, err := o.Fetcher.Fetch(ctx, run.Query)
	if err != nil {
		run.Phases[PhaseSearch] = phaseFail(err, o.now())
		run.Phases[PhaseDedup] = phaseSkip(o.now())
		run.Phases[PhaseScore] = phaseSkip(o.now())
		o.Log.Error("search phase failed", zap.String("run", run.ID), zap.Error(err))
		return nil
	}
	run.Phases[PhaseSearch] = phaseOK(len(listings), o.now())
	run.Summary.JobsFound = len(listings)
	o.publish(run.ID, events.TypeRunPhase, map[string]any{"phase": PhaseSearch, "count": len(listings)})
	o.markSearchOK()

	unique := dedup.Listings(listings)
	run.Phases[PhaseDedup] = phaseOK(len(unique), o.now())
	run.Summary.UniqueJobs = len(unique)

	if o.DB != nil {
		if _, err := store.SaveListings(ctx, o.DB, unique, o.now()); err != nil {
			o.Log.Warn("listing persistence failed", zap.Error(err))
		}
	}

	matches := o.scoreListings(ctx, unique)
	run.Phases[PhaseScore] = phaseOK(len(matches), o.now())
	run.Summary.JobsScored = len(matches)
	run.Summary.HighScoringJobs = countAbove(matches, cfg.Workflow.ScoringThreshold)
	o.publish(run.ID, events.TypeRunPhase, map[string]any{"phase": PhaseScore, "count": len(matches)})

	if o.Cache != nil {
		o.Cache.Put(run.Query, cache.SearchPayload{
			Listings: unique,
			Matches:  matches,
			RunID:    run.ID,
		})
	}
	return matches
}

// scoreListings scores every listing against the profile and persists
// the scores.
func (o *Orchestrator) scoreListings(ctx context.Context, listings []domain.Listing) []domain.MatchResult {
	profile := o.ProfileFn()
	profileFS := extract.Profile(profile)

	out := make([]domain.MatchResult, 0, len(listings))
	for _, l := range listings {
		listingFS := extract.Listing(l)
		res := o.Matcher.ScoreListing(profile, profileFS, l, listingFS)
		out = append(out, res)
		if o.DB != nil {
			if err := store.SetScore(ctx, o.DB, l.IdentityKey(), res.Score); err != nil {
				o.Log.Warn("score persistence failed",
					zap.String("listing", l.IdentityKey()), zap.Error(err))
			}
		}
	}
	return out
}

// applyPhase dispatches applications for high-scoring matches. It is
// skipped when auto-apply is off or an earlier phase failed.
func (o *Orchestrator) applyPhase(ctx context.Context, run *domain.WorkflowRun, cfg config.Config, matches []domain.MatchResult) {
	if !cfg.Workflow.AutoApplyEnabled {
		run.Phases[PhaseApply] = phaseSkip(o.now())
		return
	}
	if !run.Phases[PhaseSearch].Success || !run.Phases[PhaseScore].Success {
		run.Phases[PhaseApply] = phaseSkip(o.now())
		return
	}
	if o.Applier == nil {
		run.Phases[PhaseApply] = phaseFail(errors.New("no dispatcher configured"), o.now())
		return
	}

	profile := o.ProfileFn()
	tasks := o.buildTasks(ctx, profile, matches, cfg)
	results := o.Applier.Run(ctx, tasks)

	sent := 0
	for _, r := range results {
		if r.Success {
			sent++
		}
	}
	run.Phases[PhaseApply] = phaseOK(sent, o.now())
	run.Summary.ApplicationsTried = len(results)
	run.Summary.ApplicationsSent = sent

	payload := map[string]any{"phase": PhaseApply, "count": sent}
	if deferred := len(tasks) - len(results); deferred > 0 {
		// The dispatcher stops the batch when the daily quota runs out.
		payload["deferred"] = deferred
		o.Log.Info("apply phase stopped at the daily quota",
			zap.String("run", run.ID), zap.Int("deferred", deferred))
	}
	o.publish(run.ID, events.TypeRunPhase, payload)
}

// buildTasks picks the best matches above threshold, capped by
// max_auto_applications, and writes a letter per task.
func (o *Orchestrator) buildTasks(ctx context.Context, profile domain.CandidateProfile, matches []domain.MatchResult, cfg config.Config) []domain.ApplicationTask {
	limit := cfg.Workflow.MaxAutoApplications
	threshold := cfg.Workflow.ScoringThreshold

	var tasks []domain.ApplicationTask
	for _, m := range matches {
		if m.Score < threshold {
			continue
		}
		if limit > 0 && len(tasks) >= limit {
			break
		}
		text, err := o.Letters.Generate(ctx, profile, m.Listing)
		if err != nil {
			o.Log.Warn("letter generation failed",
				zap.String("listing", m.Listing.IdentityKey()), zap.Error(err))
		}
		tasks = append(tasks, domain.ApplicationTask{
			ListingID: m.Listing.IdentityKey(),
			ProfileID: profile.ID,
			Listing:   m.Listing,
			Letter:    text,
		})
	}
	return tasks
}

// trackPhase rolls up the application pipeline regardless of how the
// earlier phases went.
func (o *Orchestrator) trackPhase(ctx context.Context, run *domain.WorkflowRun) {
	if o.Tracker == nil {
		run.Phases[PhaseTrack] = phaseSkip(o.now())
		return
	}
	summary, err := o.Tracker.Summary(ctx)
	if err != nil {
		run.Phases[PhaseTrack] = phaseFail(err, o.now())
		return
	}
	total := 0
	for _, n := range summary {
		total += n
	}
	run.Phases[PhaseTrack] = phaseOK(total, o.now())
	run.Summary.TrackedApps = total
}

func (o *Orchestrator) markSearchOK() {
	o.mu.Lock()
	o.lastSearchOK = o.now()
	o.mu.Unlock()
}

func (o *Orchestrator) publish(runID, typ string, data any) {
	if o.Hub != nil {
		o.Hub.Publish(events.Make(runID, typ, data))
	}
}

func (o *Orchestrator) logActivity(ctx context.Context, kind, detail string) {
	if o.DB == nil {
		return
	}
	if err := store.LogActivity(ctx, o.DB, o.now(), kind, detail); err != nil {
		o.Log.Warn("activity log write failed", zap.Error(err))
	}
}

func phaseOK(count int, at time.Time) domain.PhaseResult {
	return domain.PhaseResult{Success: true, Count: count, At: at.UTC()}
}

func phaseFail(err error, at time.Time) domain.PhaseResult {
	return domain.PhaseResult{Error: err.Error(), At: at.UTC()}
}

func phaseSkip(at time.Time) domain.PhaseResult {
	return domain.PhaseResult{Skipped: true, At: at.UTC()}
}

func countAbove(matches []domain.MatchResult, threshold float64) int {
	n := 0
	for _, m := range matches {
		if m.Score >= threshold {
			n++
		}
	}
	return n
}

func firstPhaseError(run *domain.WorkflowRun) string {
	for _, name := range []string{PhaseSearch, PhaseDedup, PhaseScore, PhaseApply, PhaseTrack} {
		if p, ok := run.Phases[name]; ok && p.Error != "" {
			return name + ": " + p.Error
		}
	}
	return ""
}

var _ Applier = (*dispatch.Dispatcher)(nil)
