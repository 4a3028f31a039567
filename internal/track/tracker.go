// Package track follows applications after they go out: a follow-up
// ladder for quiet employers and an inbox watcher that picks up their
// replies.
package track

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobpilot-engine/internal/dispatch"
	"jobpilot-engine/internal/events"
	"jobpilot-engine/internal/store"
)

// maxFollowUps is the ladder length: one nudge per interval, then the
// application goes quiet for good.
const maxFollowUps = 2

type Tracker struct {
	DB     *sql.DB
	Mailer dispatch.Mailer
	Hub    *events.Hub
	Log    *zap.Logger

	now func() time.Time
}

func New(db *sql.DB, mailer dispatch.Mailer, hub *events.Hub, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{DB: db, Mailer: mailer, Hub: hub, Log: log, now: time.Now}
}

// Summary reports application counts per status.
func (t *Tracker) Summary(ctx context.Context) (map[string]int, error) {
	return store.StatusSummary(ctx, t.DB)
}

// SweepFollowUps sends due follow-up mails. An application is due when
// the interval has passed since the last touch, it has ladder steps
// left, and the whole ladder window has not yet closed. Terminal
// applications never get one.
func (t *Tracker) SweepFollowUps(ctx context.Context, intervalDays int) (sent int, err error) {
	if intervalDays <= 0 {
		return 0, fmt.Errorf("follow-up interval must be positive, got %d", intervalDays)
	}

	open, err := store.OpenApplications(ctx, t.DB)
	if err != nil {
		return 0, err
	}

	now := t.now()
	interval := time.Duration(intervalDays) * 24 * time.Hour
	window := time.Duration(maxFollowUps+1) * interval

	for _, app := range open {
		if app.FollowUps >= maxFollowUps {
			continue
		}
		if now.Sub(app.AppliedAt) >= window {
			continue
		}
		lastTouch := app.AppliedAt
		if !app.LastFollowUpAt.IsZero() {
			lastTouch = app.LastFollowUpAt
		}
		if now.Sub(lastTouch) < interval {
			continue
		}

		if err := t.sendFollowUp(ctx, app); err != nil {
			t.Log.Warn("follow-up failed",
				zap.Int64("application", app.ID), zap.Error(err))
			continue
		}
		if err := store.MarkFollowUp(ctx, t.DB, app.ID, now); err != nil {
			return sent, err
		}
		sent++
		if t.Hub != nil {
			t.Hub.Publish(events.Make("", events.TypeFollowUpSent, map[string]any{
				"application": app.ID,
				"step":        app.FollowUps + 1,
			}))
		}
	}
	return sent, nil
}

func (t *Tracker) sendFollowUp(ctx context.Context, app store.Application) error {
	if t.Mailer == nil {
		return fmt.Errorf("no mailer configured")
	}

	sl, err := store.GetListing(ctx, t.DB, app.ListingID)
	if err != nil {
		return fmt.Errorf("resolve listing: %w", err)
	}
	to := dispatch.EmailAddress(sl.Listing.ApplyTarget)
	if to == "" || !strings.Contains(to, "@") {
		return fmt.Errorf("listing %d has no mail contact", app.ListingID)
	}

	subject := fmt.Sprintf("Following up: %s application", sl.Listing.Title)
	body := fmt.Sprintf(
		"Hello,\n\nI applied for the %s position on %s and wanted to check on the status of my application. I remain very interested in the role.\n\nThank you for your time.",
		sl.Listing.Title, app.AppliedAt.Format("January 2"))

	return t.Mailer.Send(ctx, to, subject, body)
}
