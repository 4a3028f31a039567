package store

import "database/sql"

// Migrate brings the schema to the current version. Versioning is via
// PRAGMA user_version; v1 is the whole current schema.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS listings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  identity_key TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  requirements TEXT NOT NULL DEFAULT '',
  salary_min REAL NOT NULL DEFAULT 0,
  salary_max REAL NOT NULL DEFAULT 0,
  apply_target TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  posted_at TEXT NOT NULL DEFAULT '',
  score REAL NOT NULL DEFAULT 0,
  first_seen_at TEXT NOT NULL,
  last_seen_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_score ON listings(score);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_last_seen ON listings(last_seen_at);`,

		`CREATE TABLE IF NOT EXISTS applications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  listing_id INTEGER NOT NULL REFERENCES listings(id),
  profile_id TEXT NOT NULL,
  method TEXT NOT NULL,
  status TEXT NOT NULL,
  message TEXT NOT NULL DEFAULT '',
  applied_at TEXT NOT NULL,
  last_follow_up_at TEXT NOT NULL DEFAULT '',
  follow_ups INTEGER NOT NULL DEFAULT 0,
  UNIQUE(listing_id, profile_id)
);`,
		`CREATE INDEX IF NOT EXISTS idx_applications_applied_at ON applications(applied_at);`,
		`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);`,

		`CREATE TABLE IF NOT EXISTS activity (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  at TEXT NOT NULL,
  kind TEXT NOT NULL,
  detail TEXT NOT NULL DEFAULT ''
);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_at ON activity(at);`,
	}

	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}
