// Package source acquires job listings from the configured providers
// and merges them into one batch per search.
package source

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobpilot-engine/internal/domain"
)

// Source fetches listings for one provider. Implementations are
// best-effort: a provider error fails its own fetch only.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q domain.Query) ([]domain.Listing, error)
}

// Multi fans a query out to every source concurrently and merges the
// results. Malformed listings (no title or no company) are dropped at
// the merge point. Order follows the source registration order so runs
// are reproducible.
type Multi struct {
	sources []Source
	timeout time.Duration
	log     *zap.Logger
}

func NewMulti(log *zap.Logger, sources ...Source) *Multi {
	if log == nil {
		log = zap.NewNop()
	}
	return &Multi{sources: sources, timeout: 2 * time.Minute, log: log}
}

func (m *Multi) Fetch(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
	batches := make([][]domain.Listing, len(m.sources))

	var g errgroup.Group
	for i, s := range m.sources {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			got, err := s.Fetch(fctx, q)
			if err != nil {
				// best-effort: don't cancel siblings
				m.log.Warn("source fetch failed",
					zap.String("source", s.Name()), zap.Error(err))
				return nil
			}
			batches[i] = got
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.Listing
	dropped := 0
	for i, batch := range batches {
		for _, l := range batch {
			if !l.Valid() {
				dropped++
				continue
			}
			if l.Source == "" {
				l.Source = m.sources[i].Name()
			}
			out = append(out, l)
			if q.MaxResults > 0 && len(out) >= q.MaxResults {
				break
			}
		}
		if q.MaxResults > 0 && len(out) >= q.MaxResults {
			break
		}
	}
	if dropped > 0 {
		m.log.Debug("dropped malformed listings", zap.Int("count", dropped))
	}
	return out, nil
}

// MatchesQuery is the shared keyword/location filter for providers that
// cannot filter server-side. Empty keywords match everything; location
// matching is a loose substring check.
func MatchesQuery(l domain.Listing, q domain.Query) bool {
	kw := strings.TrimSpace(strings.ToLower(q.Keywords))
	if kw != "" {
		hay := strings.ToLower(l.Title + " " + l.Description + " " + l.Requirements)
		hit := false
		for _, tok := range strings.Fields(kw) {
			if strings.Contains(hay, tok) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	loc := strings.TrimSpace(strings.ToLower(q.Location))
	if loc != "" && l.Location != "" {
		have := strings.ToLower(l.Location)
		if !strings.Contains(have, loc) && !strings.Contains(loc, have) &&
			!strings.Contains(have, "remote") {
			return false
		}
	}
	return true
}
