package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Application statuses. Terminal ones are exempt from follow-ups.
const (
	StatusApplied      = "applied"
	StatusFollowUpSent = "follow_up_sent"
	StatusInterview    = "interview"
	StatusOffer        = "offer"
	StatusRejected     = "rejected"
	StatusWithdrawn    = "withdrawn"
)

func IsTerminalStatus(s string) bool {
	switch s {
	case StatusOffer, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusApplied, StatusFollowUpSent, StatusInterview,
		StatusOffer, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

type Application struct {
	ID             int64     `json:"id"`
	ListingID      int64     `json:"listing_id"`
	ProfileID      string    `json:"profile_id"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	AppliedAt      time.Time `json:"applied_at"`
	LastFollowUpAt time.Time `json:"last_follow_up_at,omitzero"`
	FollowUps      int       `json:"follow_ups"`
}

// ErrDuplicateApplication means this profile already applied to the
// listing.
var ErrDuplicateApplication = errors.New("application already recorded")

// HasApplication reports whether an application already exists for the
// listing/profile pair.
func HasApplication(ctx context.Context, db *sql.DB, listingID int64, profileID string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM applications WHERE listing_id = ? AND profile_id = ? LIMIT 1;`,
		listingID, profileID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// RecordApplication inserts the application row. The unique index on
// (listing_id, profile_id) makes double-submission a hard error.
func RecordApplication(ctx context.Context, db *sql.DB, a Application) (int64, error) {
	res, err := db.ExecContext(ctx, `
INSERT INTO applications (listing_id, profile_id, method, status, message, applied_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		a.ListingID, a.ProfileID, a.Method, a.Status, a.Message,
		a.AppliedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return 0, ErrDuplicateApplication
		}
		return 0, err
	}
	return res.LastInsertId()
}

// CountApplicationsSince counts applications submitted at or after the
// cutoff. The dispatcher seeds its daily quota from this.
func CountApplicationsSince(ctx context.Context, db *sql.DB, cutoff time.Time) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE applied_at >= ?;`,
		cutoff.UTC().Format(time.RFC3339)).Scan(&n)
	return n, err
}

// UpdateApplicationStatus moves an application to a new status.
func UpdateApplicationStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE applications SET status = ? WHERE id = ?;`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkFollowUp records that a follow-up went out now.
func MarkFollowUp(ctx context.Context, db *sql.DB, id int64, now time.Time) error {
	_, err := db.ExecContext(ctx, `
UPDATE applications
SET follow_ups = follow_ups + 1,
    last_follow_up_at = ?,
    status = ?
WHERE id = ?;`,
		now.UTC().Format(time.RFC3339), StatusFollowUpSent, id)
	return err
}

// ListApplications returns all applications, newest first.
func ListApplications(ctx context.Context, db *sql.DB, limit int) ([]Application, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, listing_id, profile_id, method, status, message, applied_at, last_follow_up_at, follow_ups
FROM applications
ORDER BY applied_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// OpenApplications returns non-terminal applications, oldest first, so
// the follow-up sweep sees the longest-waiting ones first.
func OpenApplications(ctx context.Context, db *sql.DB) ([]Application, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, listing_id, profile_id, method, status, message, applied_at, last_follow_up_at, follow_ups
FROM applications
WHERE status NOT IN (?, ?, ?)
ORDER BY applied_at ASC;`,
		StatusOffer, StatusRejected, StatusWithdrawn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// StatusSummary returns the count of applications per status.
func StatusSummary(ctx context.Context, db *sql.DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM applications GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

func collectApplications(rows *sql.Rows) ([]Application, error) {
	var out []Application
	for rows.Next() {
		var a Application
		var applied, followedUp string
		if err := rows.Scan(
			&a.ID, &a.ListingID, &a.ProfileID, &a.Method, &a.Status,
			&a.Message, &applied, &followedUp, &a.FollowUps,
		); err != nil {
			return nil, err
		}
		a.AppliedAt, _ = time.Parse(time.RFC3339, applied)
		if followedUp != "" {
			a.LastFollowUpAt, _ = time.Parse(time.RFC3339, followedUp)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
