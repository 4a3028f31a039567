package track

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/store"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func newTrackerDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := store.Migrate(d.Pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d.Pool
}

func seedApp(t *testing.T, db *sql.DB, company, target string, appliedAt time.Time) int64 {
	t.Helper()
	ctx := context.Background()

	l := domain.Listing{Title: "Engineer", Company: company, ApplyTarget: target}
	if _, err := store.SaveListings(ctx, db, []domain.Listing{l}, appliedAt); err != nil {
		t.Fatal(err)
	}
	sl, err := store.GetListingByIdentity(ctx, db, l.IdentityKey())
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.RecordApplication(ctx, db, store.Application{
		ListingID: sl.ID,
		ProfileID: "default",
		Method:    "email",
		Status:    store.StatusApplied,
		AppliedAt: appliedAt,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestSweepFollowUpsSendsWhenDue(t *testing.T) {
	db := newTrackerDB(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	seedApp(t, db, "Acme", "mailto:jobs@acme.example", now.AddDate(0, 0, -8))

	mailer := &fakeMailer{}
	tr := New(db, mailer, nil, nil)
	tr.now = func() time.Time { return now }

	sent, err := tr.SweepFollowUps(context.Background(), 7)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "jobs@acme.example" {
		t.Errorf("mail = %+v", mailer.sent)
	}

	apps, _ := store.ListApplications(context.Background(), db, 0)
	if apps[0].FollowUps != 1 || apps[0].Status != store.StatusFollowUpSent {
		t.Errorf("application not updated: %+v", apps[0])
	}

	// Immediately after the touch nothing is due.
	sent, err = tr.SweepFollowUps(context.Background(), 7)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if sent != 0 {
		t.Errorf("second sweep sent = %d, want 0", sent)
	}
}

func TestSweepFollowUpsNotYetDue(t *testing.T) {
	db := newTrackerDB(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	seedApp(t, db, "Acme", "mailto:jobs@acme.example", now.AddDate(0, 0, -3))

	mailer := &fakeMailer{}
	tr := New(db, mailer, nil, nil)
	tr.now = func() time.Time { return now }

	sent, err := tr.SweepFollowUps(context.Background(), 7)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sent != 0 || len(mailer.sent) != 0 {
		t.Errorf("sent = %d, want 0 before the interval", sent)
	}
}

func TestSweepFollowUpsWindowClosed(t *testing.T) {
	db := newTrackerDB(t)
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	// Applied 22 days ago; with a 7-day interval the whole ladder
	// window (21 days) has passed.
	seedApp(t, db, "Acme", "mailto:jobs@acme.example", now.AddDate(0, 0, -22))

	mailer := &fakeMailer{}
	tr := New(db, mailer, nil, nil)
	tr.now = func() time.Time { return now }

	sent, err := tr.SweepFollowUps(context.Background(), 7)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0 after the window closed", sent)
	}
}

func TestSweepFollowUpsLadderExhausted(t *testing.T) {
	db := newTrackerDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

	id := seedApp(t, db, "Acme", "mailto:jobs@acme.example", now.AddDate(0, 0, -18))
	if err := store.MarkFollowUp(ctx, db, id, now.AddDate(0, 0, -10)); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkFollowUp(ctx, db, id, now.AddDate(0, 0, -8)); err != nil {
		t.Fatal(err)
	}

	mailer := &fakeMailer{}
	tr := New(db, mailer, nil, nil)
	tr.now = func() time.Time { return now }

	sent, err := tr.SweepFollowUps(ctx, 7)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0 once the ladder is used up", sent)
	}
}

func TestSweepFollowUpsSkipsListingWithoutMailContact(t *testing.T) {
	db := newTrackerDB(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	seedApp(t, db, "Acme", "https://careers.acme.example/apply", now.AddDate(0, 0, -8))

	mailer := &fakeMailer{}
	tr := New(db, mailer, nil, nil)
	tr.now = func() time.Time { return now }

	sent, err := tr.SweepFollowUps(context.Background(), 7)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0 without a mail contact", sent)
	}
	apps, _ := store.ListApplications(context.Background(), db, 0)
	if apps[0].FollowUps != 0 {
		t.Errorf("follow-up counted despite send failure: %+v", apps[0])
	}
}

func TestSweepFollowUpsRejectsBadInterval(t *testing.T) {
	tr := New(nil, nil, nil, nil)
	if _, err := tr.SweepFollowUps(context.Background(), 0); err == nil {
		t.Error("expected an error for a zero interval")
	}
}
