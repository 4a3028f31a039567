package cache

import (
	"testing"
	"time"

	"jobpilot-engine/internal/domain"
)

func TestKeyNormalization(t *testing.T) {
	a := domain.Query{Keywords: "  Software Engineer ", Location: "Remote", MaxResults: 50}
	b := domain.Query{Keywords: "software engineer", Location: "REMOTE", MaxResults: 50}
	if Key(a) != Key(b) {
		t.Errorf("keys differ: %q vs %q", Key(a), Key(b))
	}

	c := domain.Query{Keywords: "software engineer", Location: "remote", MaxResults: 10}
	if Key(a) == Key(c) {
		t.Error("max_results not part of the key")
	}
}

func TestGetWithinTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewWithClock(time.Hour, func() time.Time { return now })

	q := domain.Query{Keywords: "go", Location: "remote", MaxResults: 5}
	c.Put(q, SearchPayload{RunID: "r1"})

	now = now.Add(59 * time.Minute)
	got, ok := c.Get(q)
	if !ok || got.RunID != "r1" {
		t.Fatalf("Get = (%+v, %v), want hit with r1", got, ok)
	}
}

func TestGetExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewWithClock(time.Hour, func() time.Time { return now })

	q := domain.Query{Keywords: "go", Location: "remote", MaxResults: 5}
	c.Put(q, SearchPayload{RunID: "r1"})

	// Exactly at the TTL boundary the entry is already stale.
	now = now.Add(time.Hour)
	if _, ok := c.Get(q); ok {
		t.Error("entry at TTL age should be a miss")
	}
}

func TestGetMiss(t *testing.T) {
	c := New(0)
	if _, ok := c.Get(domain.Query{Keywords: "nothing"}); ok {
		t.Error("unexpected hit on empty cache")
	}
}

func TestPutOverwrites(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewWithClock(time.Hour, func() time.Time { return now })

	q := domain.Query{Keywords: "go", MaxResults: 5}
	c.Put(q, SearchPayload{RunID: "old"})
	now = now.Add(30 * time.Minute)
	c.Put(q, SearchPayload{RunID: "new"})

	got, ok := c.Get(q)
	if !ok || got.RunID != "new" {
		t.Fatalf("Get = (%+v, %v), want the overwritten payload", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	// The overwrite also refreshed the clock; the entry survives past
	// the original expiry.
	now = now.Add(45 * time.Minute)
	if _, ok := c.Get(q); !ok {
		t.Error("refreshed entry expired too early")
	}
}
