// Package dedup collapses raw listings to a unique set by identity key.
// The key is intentionally coarse (normalized title + company, no fuzzy
// title matching); the pipeline tolerates the imperfect recall.
package dedup

import "jobpilot-engine/internal/domain"

// Listings removes duplicates from an ordered sequence, first
// occurrence wins. Input order is preserved.
func Listings(in []domain.Listing) []domain.Listing {
	seen := make(map[string]bool, len(in))
	out := make([]domain.Listing, 0, len(in))
	for _, l := range in {
		key := l.IdentityKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}
