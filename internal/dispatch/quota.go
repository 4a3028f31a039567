package dispatch

import (
	"sync"
	"time"
)

// Quota caps applications per calendar day. The window resets lazily:
// the first reservation on a new day clears the used count.
type Quota struct {
	mu    sync.Mutex
	limit int
	used  int
	day   string
	now   func() time.Time
}

func NewQuota(limit int, now func() time.Time) *Quota {
	if now == nil {
		now = time.Now
	}
	q := &Quota{limit: limit, now: now}
	q.day = q.today()
	return q
}

func (q *Quota) today() string {
	return q.now().UTC().Format("2006-01-02")
}

// Seed sets how many applications already went out today, typically
// from the database after a restart.
func (q *Quota) Seed(used int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.used = used
	q.day = q.today()
}

func (q *Quota) SetLimit(limit int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.limit = limit
}

func (q *Quota) rollover() {
	if d := q.today(); d != q.day {
		q.day = d
		q.used = 0
	}
}

// TryReserve takes one slot if any remain today.
func (q *Quota) TryReserve() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	if q.used >= q.limit {
		return false
	}
	q.used++
	return true
}

// Release returns a slot taken by a dispatch that did not go through.
func (q *Quota) Release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.used > 0 {
		q.used--
	}
}

// Remaining reports today's unused slots.
func (q *Quota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	if q.limit < q.used {
		return 0
	}
	return q.limit - q.used
}
