package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobpilot-engine/internal/domain"
)

type fakeStrategy struct {
	method domain.ApplyMethod
	err    error
	calls  int
}

func (s *fakeStrategy) Name() domain.ApplyMethod { return s.method }

func (s *fakeStrategy) Apply(ctx context.Context, task domain.ApplicationTask) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "submitted to " + task.Listing.Company, nil
}

type fakeLedger struct {
	applied map[string]bool
	records []string
}

func (l *fakeLedger) HasApplication(ctx context.Context, listingKey, profileID string) (bool, error) {
	return l.applied[listingKey], nil
}

func (l *fakeLedger) RecordApplication(ctx context.Context, listingKey, profileID string, method domain.ApplyMethod, message string, at time.Time) error {
	if l.applied[listingKey] {
		return ErrAlreadyApplied
	}
	if l.applied == nil {
		l.applied = map[string]bool{}
	}
	l.applied[listingKey] = true
	l.records = append(l.records, listingKey)
	return nil
}

func testDispatcher(t *testing.T, quota *Quota, ledger Ledger, strategies ...Strategy) *Dispatcher {
	t.Helper()
	d := New(Config{Quota: quota, Ledger: ledger}, strategies...)
	d.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	d.randInt = func(n int) int { return 0 }
	return d
}

func formTask(key, company string) domain.ApplicationTask {
	return domain.ApplicationTask{
		ListingID: key,
		ProfileID: "default",
		Listing: domain.Listing{
			Title:       "Engineer",
			Company:     company,
			ApplyTarget: "https://example.com/jobs/" + key,
		},
	}
}

func TestRunOneResultPerTask(t *testing.T) {
	strat := &fakeStrategy{method: domain.MethodForm}
	d := testDispatcher(t, NewQuota(10, nil), &fakeLedger{}, strat)

	tasks := []domain.ApplicationTask{
		formTask("a|acme", "Acme"),
		formTask("b|globex", "Globex"),
		formTask("c|initech", "Initech"),
	}
	results := d.Run(context.Background(), tasks)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if !r.Success {
			t.Errorf("task %d not successful: %+v", i, r)
		}
		if r.Method != domain.MethodForm {
			t.Errorf("task %d method = %q, want form", i, r.Method)
		}
	}
	if strat.calls != 3 {
		t.Errorf("strategy called %d times, want 3", strat.calls)
	}
}

func TestRunFailureDoesNotAbortBatch(t *testing.T) {
	failing := &fakeStrategy{method: domain.MethodForm, err: errors.New("portal down")}
	ok := &fakeStrategy{method: domain.MethodEmail}
	quota := NewQuota(10, nil)
	d := testDispatcher(t, quota, &fakeLedger{}, failing, ok)

	email := formTask("b|globex", "Globex")
	email.Listing.ApplyTarget = "mailto:jobs@globex.example"

	results := d.Run(context.Background(), []domain.ApplicationTask{
		formTask("a|acme", "Acme"),
		email,
	})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Success || results[0].Error == "" {
		t.Errorf("failed task reported as %+v", results[0])
	}
	if !results[1].Success {
		t.Errorf("batch aborted after failure: %+v", results[1])
	}
	// The failed dispatch must give its quota slot back.
	if got := quota.Remaining(); got != 9 {
		t.Errorf("remaining quota = %d, want 9", got)
	}
}

func TestRunQuotaExhaustionStopsBatch(t *testing.T) {
	strat := &fakeStrategy{method: domain.MethodForm}
	ledger := &fakeLedger{}
	d := testDispatcher(t, NewQuota(1, nil), ledger, strat)

	results := d.Run(context.Background(), []domain.ApplicationTask{
		formTask("a|acme", "Acme"),
		formTask("b|globex", "Globex"),
		formTask("c|initech", "Initech"),
	})

	// The batch stops when the quota runs out; only the work actually
	// processed is reported.
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if !results[0].Success {
		t.Fatalf("first task should succeed: %+v", results[0])
	}
	if strat.calls != 1 {
		t.Errorf("strategy called %d times, want 1", strat.calls)
	}
	// No duplicate pre-checks ran for the unprocessed tasks.
	if len(ledger.records) != 1 {
		t.Errorf("ledger records = %v, want just the first task", ledger.records)
	}
}

func TestDispatchOneQuotaDrained(t *testing.T) {
	// A shared quota can empty between the batch-level check and the
	// reservation; the task is skipped, not failed.
	strat := &fakeStrategy{method: domain.MethodForm}
	d := testDispatcher(t, NewQuota(0, nil), &fakeLedger{}, strat)

	r := d.dispatchOne(context.Background(), formTask("a|acme", "Acme"))

	if !r.Skipped || r.Message != "daily application quota reached" {
		t.Errorf("result = %+v, want quota skip", r)
	}
	if r.Method != "" {
		t.Errorf("quota skip carries method %q, want empty", r.Method)
	}
	if strat.calls != 0 {
		t.Errorf("strategy called despite an empty quota")
	}
}

func TestRunDuplicateSkipped(t *testing.T) {
	strat := &fakeStrategy{method: domain.MethodForm}
	ledger := &fakeLedger{applied: map[string]bool{"a|acme": true}}
	d := testDispatcher(t, NewQuota(10, nil), ledger, strat)

	results := d.Run(context.Background(), []domain.ApplicationTask{formTask("a|acme", "Acme")})

	r := results[0]
	if !r.Skipped || r.Message != "already applied" {
		t.Errorf("result = %+v, want duplicate skip", r)
	}
	if strat.calls != 0 {
		t.Errorf("strategy called for a duplicate")
	}
}

func TestRunManualTargetSkipped(t *testing.T) {
	quota := NewQuota(5, nil)
	d := testDispatcher(t, quota, &fakeLedger{})

	task := formTask("a|acme", "Acme")
	task.Listing.ApplyTarget = "walk your resume to the front desk"

	results := d.Run(context.Background(), []domain.ApplicationTask{task})

	r := results[0]
	if !r.Skipped || r.Message != "manual submission required" {
		t.Errorf("result = %+v, want manual skip", r)
	}
	if got := quota.Remaining(); got != 5 {
		t.Errorf("manual skip consumed quota, remaining = %d", got)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := testDispatcher(t, NewQuota(10, nil), &fakeLedger{}, &fakeStrategy{method: domain.MethodForm})
	results := d.Run(ctx, []domain.ApplicationTask{
		formTask("a|acme", "Acme"),
		formTask("b|globex", "Globex"),
	})

	if len(results) != 2 {
		t.Fatalf("got %d results, want one per task", len(results))
	}
	for i, r := range results {
		if !r.Skipped || r.Message != "cancelled before dispatch" {
			t.Errorf("task %d = %+v, want cancellation skip", i, r)
		}
	}
}

func TestQuotaDayRollover(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC)
	q := NewQuota(2, func() time.Time { return now })

	if !q.TryReserve() || !q.TryReserve() {
		t.Fatal("could not fill quota")
	}
	if q.TryReserve() {
		t.Fatal("reserve succeeded past the limit")
	}

	now = now.Add(20 * time.Minute) // past UTC midnight
	if !q.TryReserve() {
		t.Error("quota did not reset on the new day")
	}
	if got := q.Remaining(); got != 1 {
		t.Errorf("remaining after rollover = %d, want 1", got)
	}
}

func TestQuotaSeedAndRelease(t *testing.T) {
	q := NewQuota(5, nil)
	q.Seed(4)
	if got := q.Remaining(); got != 1 {
		t.Fatalf("remaining after seed = %d, want 1", got)
	}
	if !q.TryReserve() {
		t.Fatal("last slot not reservable")
	}
	q.Release()
	if got := q.Remaining(); got != 1 {
		t.Errorf("remaining after release = %d, want 1", got)
	}
}

func TestJitterBounds(t *testing.T) {
	d := New(Config{
		Quota:     NewQuota(1, nil),
		Ledger:    &fakeLedger{},
		JitterMin: 30 * time.Second,
		JitterMax: 60 * time.Second,
	})
	for i := 0; i < 50; i++ {
		j := d.jitter()
		if j < 30*time.Second || j >= 60*time.Second {
			t.Fatalf("jitter %v out of [30s, 60s)", j)
		}
	}
}
