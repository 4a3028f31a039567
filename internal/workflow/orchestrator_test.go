package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jobpilot-engine/internal/cache"
	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/domain"
)

type fetchFn func(ctx context.Context, q domain.Query) ([]domain.Listing, error)

func (f fetchFn) Fetch(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
	return f(ctx, q)
}

type fakeApplier struct {
	batches [][]domain.ApplicationTask
}

func (a *fakeApplier) Run(ctx context.Context, tasks []domain.ApplicationTask) []domain.ApplicationResult {
	a.batches = append(a.batches, tasks)
	out := make([]domain.ApplicationResult, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, domain.ApplicationResult{Task: t, Success: true})
	}
	return out
}

func (a *fakeApplier) Remaining() int { return 10 }

func testConfig() config.Config {
	var cfg config.Config
	cfg.Search.Keywords = "engineer"
	cfg.Search.Location = "remote"
	cfg.Search.MaxResults = 50
	cfg.Workflow = config.Options{
		ScrapingIntervalHours: 6,
		ScoringThreshold:      0.6,
		MaxAutoApplications:   5,
		FollowUpIntervalDays:  7,
		MaxApplicationsPerDay: 10,
	}
	return cfg
}

func testProfile() domain.CandidateProfile {
	return domain.CandidateProfile{
		ID:     "default",
		Name:   "Test Candidate",
		Skills: []string{"python"},
	}
}

func newTestOrchestrator(cfg config.Config, fetch fetchFn) *Orchestrator {
	return New(Orchestrator{
		ConfigFn:  func() config.Config { return cfg },
		ProfileFn: testProfile,
		Fetcher:   fetch,
	})
}

func TestRunOncePhases(t *testing.T) {
	listings := []domain.Listing{
		{Title: "Backend Engineer", Company: "Acme", Description: "python services"},
		{Title: "backend engineer", Company: "ACME", Description: "dup of the first"},
		{Title: "Data Engineer", Company: "Globex", Description: "python pipelines"},
	}
	o := newTestOrchestrator(testConfig(), func(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
		return listings, nil
	})

	run, err := o.RunOnce(context.Background(), domain.Query{})
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if run.Status != domain.RunCompleted {
		t.Fatalf("status = %v, want completed (%+v)", run.Status, run.Summary)
	}
	if run.Summary.JobsFound != 3 || run.Summary.UniqueJobs != 2 || run.Summary.JobsScored != 2 {
		t.Errorf("summary counts = %+v, want 3 found / 2 unique / 2 scored", run.Summary)
	}
	for _, phase := range []string{PhaseSearch, PhaseDedup, PhaseScore} {
		if !run.Phases[phase].Success {
			t.Errorf("phase %s not successful: %+v", phase, run.Phases[phase])
		}
	}
	// auto_apply_enabled is false
	if !run.Phases[PhaseApply].Skipped {
		t.Errorf("apply phase = %+v, want skipped", run.Phases[PhaseApply])
	}
}

func TestRunOnceFillsQueryFromConfig(t *testing.T) {
	var seen domain.Query
	o := newTestOrchestrator(testConfig(), func(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
		seen = q
		return nil, nil
	})

	if _, err := o.RunOnce(context.Background(), domain.Query{}); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if seen.Keywords != "engineer" || seen.Location != "remote" || seen.MaxResults != 50 {
		t.Errorf("query defaults not filled: %+v", seen)
	}
}

func TestRunOnceSearchFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Workflow.AutoApplyEnabled = true

	applier := &fakeApplier{}
	o := newTestOrchestrator(cfg, func(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
		return nil, errors.New("all sources down")
	})
	o.Applier = applier

	run, err := o.RunOnce(context.Background(), domain.Query{})
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if run.Status != domain.RunFailed {
		t.Errorf("status = %v, want failed", run.Status)
	}
	if run.Phases[PhaseSearch].Error == "" {
		t.Error("search phase carries no error")
	}
	if !run.Phases[PhaseDedup].Skipped || !run.Phases[PhaseScore].Skipped {
		t.Error("dedup/score not skipped after search failure")
	}
	if !run.Phases[PhaseApply].Skipped {
		t.Errorf("apply phase = %+v, want skipped after failure", run.Phases[PhaseApply])
	}
	if len(applier.batches) != 0 {
		t.Error("dispatcher invoked despite failed search")
	}
	if run.Summary.Reason == "" {
		t.Error("failed run carries no reason")
	}
}

func TestRunOnceBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	o := newTestOrchestrator(testConfig(), func(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
		startedOnce.Do(func() { close(started) })
		<-release
		return nil, nil
	})

	id, err := o.StartRun(domain.Query{})
	if err != nil || id == "" {
		t.Fatalf("StartRun = (%q, %v)", id, err)
	}
	<-started

	if _, err := o.StartRun(domain.Query{}); !errors.Is(err, ErrBusy) {
		t.Errorf("second trigger err = %v, want ErrBusy", err)
	}
	if _, err := o.RunOnce(context.Background(), domain.Query{}); !errors.Is(err, ErrBusy) {
		t.Errorf("RunOnce during run err = %v, want ErrBusy", err)
	}

	close(release)
	waitIdle(t, o)

	// The slot frees up once the run finishes.
	if _, err := o.RunOnce(context.Background(), domain.Query{}); err != nil {
		t.Errorf("RunOnce after completion: %v", err)
	}
}

func waitIdle(t *testing.T, o *Orchestrator) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		o.mu.Lock()
		idle := !o.running
		o.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("run did not finish")
}

func TestRunOnceCacheHit(t *testing.T) {
	calls := 0
	o := newTestOrchestrator(testConfig(), func(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
		calls++
		return []domain.Listing{
			{Title: "Engineer", Company: "Acme", Description: "python"},
		}, nil
	})
	o.Cache = cache.New(time.Hour)

	if _, err := o.RunOnce(context.Background(), domain.Query{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	run, err := o.RunOnce(context.Background(), domain.Query{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if calls != 1 {
		t.Errorf("fetcher called %d times, want 1 (second run cached)", calls)
	}
	for _, phase := range []string{PhaseSearch, PhaseDedup, PhaseScore} {
		if !run.Phases[phase].Success {
			t.Errorf("cached run phase %s = %+v, want success", phase, run.Phases[phase])
		}
	}
	if run.Summary.JobsFound != 1 || run.Summary.JobsScored != 1 {
		t.Errorf("cached summary = %+v", run.Summary)
	}
}

func TestApplyCapAndThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.Workflow.AutoApplyEnabled = true
	cfg.Workflow.ScoringThreshold = 0 // everything qualifies
	cfg.Workflow.MaxAutoApplications = 2

	var listings []domain.Listing
	for _, c := range []string{"A", "B", "C", "D"} {
		listings = append(listings, domain.Listing{
			Title:       "Engineer",
			Company:     c,
			Description: "python",
			ApplyTarget: "https://careers.example.com/" + c,
		})
	}

	applier := &fakeApplier{}
	o := newTestOrchestrator(cfg, func(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
		return listings, nil
	})
	o.Applier = applier

	run, err := o.RunOnce(context.Background(), domain.Query{})
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(applier.batches) != 1 {
		t.Fatalf("dispatcher invoked %d times, want 1", len(applier.batches))
	}
	tasks := applier.batches[0]
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want cap of 2", len(tasks))
	}
	for _, task := range tasks {
		if task.ProfileID != "default" {
			t.Errorf("task profile = %q", task.ProfileID)
		}
		if task.Letter == "" {
			t.Error("task carries no letter")
		}
	}
	if run.Summary.ApplicationsSent != 2 {
		t.Errorf("ApplicationsSent = %d, want 2", run.Summary.ApplicationsSent)
	}
}

func TestAutoModeLifecycle(t *testing.T) {
	o := newTestOrchestrator(testConfig(), func(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
		return nil, nil
	})

	if err := o.StartAuto(); err != nil {
		t.Fatalf("StartAuto: %v", err)
	}
	if !o.AutoEnabled() {
		t.Error("AutoEnabled false after start")
	}
	if err := o.StartAuto(); !errors.Is(err, ErrAutoAlreadyOn) {
		t.Errorf("second StartAuto err = %v, want ErrAutoAlreadyOn", err)
	}

	// StopAuto blocks until the loop acknowledges; returning at all
	// proves the handshake.
	if err := o.StopAuto(); err != nil {
		t.Fatalf("StopAuto: %v", err)
	}
	if o.AutoEnabled() {
		t.Error("AutoEnabled true after stop")
	}
	if err := o.StopAuto(); !errors.Is(err, ErrAutoNotOn) {
		t.Errorf("second StopAuto err = %v, want ErrAutoNotOn", err)
	}
}

func TestStopAutoLeavesRunInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var fetchCtx context.Context
	o := newTestOrchestrator(testConfig(), func(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
		fetchCtx = ctx
		close(started)
		<-release
		return []domain.Listing{{Title: "Engineer", Company: "Acme"}}, nil
	})

	// The loop fires immediately: no successful search has happened yet.
	if err := o.StartAuto(); err != nil {
		t.Fatalf("StartAuto: %v", err)
	}
	<-started

	if err := o.StopAuto(); err != nil {
		t.Fatalf("StopAuto: %v", err)
	}
	if err := fetchCtx.Err(); err != nil {
		t.Fatalf("StopAuto cancelled the in-flight run: %v", err)
	}

	close(release)
	waitIdle(t, o)

	o.mu.Lock()
	last := o.last
	o.mu.Unlock()
	if last == nil || last.Status != domain.RunCompleted {
		t.Errorf("run did not finish cleanly after StopAuto: %+v", last)
	}
}

func TestAutoRunIntervalGating(t *testing.T) {
	calls := 0
	o := newTestOrchestrator(testConfig(), func(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
		calls++
		return nil, nil
	})
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return now }

	// 5h since the last good search against a 6h interval: not due.
	o.mu.Lock()
	o.lastSearchOK = now.Add(-5 * time.Hour)
	o.mu.Unlock()
	o.maybeRun()
	waitIdle(t, o)
	if calls != 0 {
		t.Fatalf("run fired %d times before the interval elapsed", calls)
	}

	// Exactly the interval is due.
	o.mu.Lock()
	o.lastSearchOK = now.Add(-6 * time.Hour)
	o.mu.Unlock()
	o.maybeRun()
	waitIdle(t, o)
	if calls != 1 {
		t.Fatalf("run fired %d times at the interval, want 1", calls)
	}

	// The successful search restamps lastSearchOK, so the next check
	// is not due again.
	o.maybeRun()
	waitIdle(t, o)
	if calls != 1 {
		t.Errorf("run fired again right after a success, calls = %d", calls)
	}
}
