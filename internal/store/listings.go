package store

import (
	"context"
	"database/sql"
	"time"

	"jobpilot-engine/internal/domain"
)

// StoredListing is a listing row plus its persistence metadata.
type StoredListing struct {
	ID          int64          `json:"id"`
	Listing     domain.Listing `json:"listing"`
	Score       float64        `json:"score"`
	FirstSeenAt time.Time      `json:"first_seen_at"`
	LastSeenAt  time.Time      `json:"last_seen_at"`
}

// SaveListings upserts by identity key. A re-seen listing refreshes
// last_seen_at and the mutable fields but keeps its id and score.
// Returns how many rows were newly inserted.
func SaveListings(ctx context.Context, db *sql.DB, listings []domain.Listing, now time.Time) (added int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now.UTC().Format(time.RFC3339)
	for _, l := range listings {
		var one int
		seen := tx.QueryRowContext(ctx,
			`SELECT 1 FROM listings WHERE identity_key = ? LIMIT 1;`, l.IdentityKey()).Scan(&one) == nil

		posted := ""
		if l.PostedAt != nil {
			posted = l.PostedAt.UTC().Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO listings (identity_key, title, company, location, description, requirements,
                      salary_min, salary_max, apply_target, source, posted_at,
                      first_seen_at, last_seen_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(identity_key) DO UPDATE SET
  location = excluded.location,
  description = excluded.description,
  requirements = excluded.requirements,
  salary_min = excluded.salary_min,
  salary_max = excluded.salary_max,
  apply_target = excluded.apply_target,
  source = excluded.source,
  last_seen_at = excluded.last_seen_at;`,
			l.IdentityKey(), l.Title, l.Company, l.Location, l.Description, l.Requirements,
			l.SalaryMin, l.SalaryMax, l.ApplyTarget, l.Source, posted, ts, ts,
		)
		if err != nil {
			return 0, err
		}
		if !seen {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// SetScore records a listing's latest match score.
func SetScore(ctx context.Context, db *sql.DB, identityKey string, score float64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE listings SET score = ? WHERE identity_key = ?;`, score, identityKey)
	return err
}

// GetListingByIdentity returns the stored row for an identity key, or
// sql.ErrNoRows.
func GetListingByIdentity(ctx context.Context, db *sql.DB, identityKey string) (StoredListing, error) {
	row := db.QueryRowContext(ctx, `
SELECT id, title, company, location, description, requirements,
       salary_min, salary_max, apply_target, source, posted_at,
       score, first_seen_at, last_seen_at
FROM listings WHERE identity_key = ?;`, identityKey)
	return scanListing(row)
}

// GetListing returns the stored row by id, or sql.ErrNoRows.
func GetListing(ctx context.Context, db *sql.DB, id int64) (StoredListing, error) {
	row := db.QueryRowContext(ctx, `
SELECT id, title, company, location, description, requirements,
       salary_min, salary_max, apply_target, source, posted_at,
       score, first_seen_at, last_seen_at
FROM listings WHERE id = ?;`, id)
	return scanListing(row)
}

// ListListings returns the best-scoring rows, newest first within a
// score tie. Limit <= 0 means a sane default.
func ListListings(ctx context.Context, db *sql.DB, minScore float64, limit int) ([]StoredListing, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, title, company, location, description, requirements,
       salary_min, salary_max, apply_target, source, posted_at,
       score, first_seen_at, last_seen_at
FROM listings
WHERE score >= ?
ORDER BY score DESC, last_seen_at DESC
LIMIT ?;`, minScore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredListing
	for rows.Next() {
		sl, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sl)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(r rowScanner) (StoredListing, error) {
	var sl StoredListing
	var posted, firstSeen, lastSeen string
	err := r.Scan(
		&sl.ID,
		&sl.Listing.Title,
		&sl.Listing.Company,
		&sl.Listing.Location,
		&sl.Listing.Description,
		&sl.Listing.Requirements,
		&sl.Listing.SalaryMin,
		&sl.Listing.SalaryMax,
		&sl.Listing.ApplyTarget,
		&sl.Listing.Source,
		&posted,
		&sl.Score,
		&firstSeen,
		&lastSeen,
	)
	if err != nil {
		return StoredListing{}, err
	}
	if posted != "" {
		if t, err := time.Parse(time.RFC3339, posted); err == nil {
			sl.Listing.PostedAt = &t
		}
	}
	sl.FirstSeenAt, _ = time.Parse(time.RFC3339, firstSeen)
	sl.LastSeenAt, _ = time.Parse(time.RFC3339, lastSeen)
	return sl, nil
}

// CountListings reports how many rows the table holds.
func CountListings(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings;`).Scan(&n)
	return n, err
}
