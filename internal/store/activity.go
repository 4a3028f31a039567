package store

import (
	"context"
	"database/sql"
	"time"
)

type Activity struct {
	ID     int64     `json:"id"`
	At     time.Time `json:"at"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail"`
}

// LogActivity appends one row to the activity log. Failures here are
// for the caller to log and swallow; the log is advisory.
func LogActivity(ctx context.Context, db *sql.DB, at time.Time, kind, detail string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO activity (at, kind, detail) VALUES (?, ?, ?);`,
		at.UTC().Format(time.RFC3339), kind, detail)
	return err
}

// RecentActivity returns the newest rows first.
func RecentActivity(ctx context.Context, db *sql.DB, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, at, kind, detail FROM activity ORDER BY at DESC, id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var at string
		if err := rows.Scan(&a.ID, &at, &a.Kind, &a.Detail); err != nil {
			return nil, err
		}
		a.At, _ = time.Parse(time.RFC3339, at)
		out = append(out, a)
	}
	return out, rows.Err()
}
