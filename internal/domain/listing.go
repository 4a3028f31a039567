package domain

import (
	"strings"
	"time"
)

// Listing is a raw job posting as delivered by a listing source.
// Immutable once created; sources must fill Title and Company or the
// entry is dropped before it reaches the pipeline.
type Listing struct {
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements"`
	SalaryMin    float64    `json:"salary_min"`
	SalaryMax    float64    `json:"salary_max"`
	ApplyTarget  string     `json:"apply_target"` // url or mailto:
	Source       string     `json:"source"`       // portal name (linkedin, board, ...)
	PostedAt     *time.Time `json:"posted_at,omitempty"`
}

// IdentityKey is the dedupe key: case-folded, whitespace-collapsed
// title joined with company.
func (l Listing) IdentityKey() string {
	return foldField(l.Title) + "|" + foldField(l.Company)
}

func foldField(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Valid reports whether the listing carries the minimum identity fields.
func (l Listing) Valid() bool {
	return strings.TrimSpace(l.Title) != "" && strings.TrimSpace(l.Company) != ""
}
