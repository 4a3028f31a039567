// Package cache memoizes search outcomes per normalized query with a
// fixed TTL. Growth is unbounded beyond TTL staleness, which is fine
// for a single long-lived engine process.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"jobpilot-engine/internal/domain"
)

const DefaultTTL = time.Hour

// SearchPayload is the cached outcome of a completed search phase.
type SearchPayload struct {
	Listings []domain.Listing     `json:"listings"`
	Matches  []domain.MatchResult `json:"matches"`
	RunID    string               `json:"run_id"`
}

type entry struct {
	payload   SearchPayload
	createdAt time.Time
}

type Results struct {
	mu  sync.Mutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

func New(ttl time.Duration) *Results {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Results{
		m:   make(map[string]entry),
		ttl: ttl,
		now: time.Now,
	}
}

// NewWithClock is for tests that need to steer time.
func NewWithClock(ttl time.Duration, now func() time.Time) *Results {
	c := New(ttl)
	c.now = now
	return c
}

// Key normalizes a query into the cache key: lowercased trimmed
// keywords and location plus the requested result count.
func Key(q domain.Query) string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(q.Keywords)),
		strings.ToLower(strings.TrimSpace(q.Location)),
		strconv.Itoa(q.MaxResults),
	}, "|")
}

// Get returns the cached payload when it is younger than the TTL.
// Stale entries are treated as misses; the next Put overwrites them.
func (c *Results) Get(q domain.Query) (SearchPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[Key(q)]
	if !ok {
		return SearchPayload{}, false
	}
	if c.now().Sub(e.createdAt) >= c.ttl {
		return SearchPayload{}, false
	}
	return e.payload, true
}

func (c *Results) Put(q domain.Query, p SearchPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[Key(q)] = entry{payload: p, createdAt: c.now()}
}

// Len reports how many entries are held, stale ones included.
func (c *Results) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
