package replay

import (
	"container/list"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"packsync/internal/domain"
)

const (
	// DefaultTTL is how long a seen message id stays effective.
	DefaultTTL = 60 * time.Minute
	// DefaultCapacity bounds the number of retained records.
	DefaultCapacity = 8192
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return realClock{} }

type entry struct {
	id     domain.Digest
	seenAt time.Time
}

// Guard is the bounded seen-message set. Expired entries are evicted lazily
// during mutation; when the capacity bound would be exceeded the oldest
// entry goes first.
type Guard struct {
	mu       sync.Mutex
	entries  map[domain.Digest]*list.Element
	order    *list.List // front = oldest
	ttl      time.Duration
	capacity int
	clock    Clock
	store    domain.ReplayStore // optional
	log      *log.Entry
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option { return func(g *Guard) { g.clock = c } }

// WithStore attaches persistence. Records are loaded on construction and
// saved after every mutation.
func WithStore(s domain.ReplayStore) Option { return func(g *Guard) { g.store = s } }

// WithCapacity overrides the entry bound.
func WithCapacity(n int) Option { return func(g *Guard) { g.capacity = n } }

// WithLogger overrides the package logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Guard) { g.log = l.WithField("component", "replay") }
}

// NewGuard builds a guard with the given TTL. Persisted records, if a store
// is attached, are loaded and expired ones dropped.
func NewGuard(ttl time.Duration, opts ...Option) (*Guard, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	g := &Guard{
		entries:  make(map[domain.Digest]*list.Element),
		order:    list.New(),
		ttl:      ttl,
		capacity: DefaultCapacity,
		clock:    realClock{},
		log:      log.StandardLogger().WithField("component", "replay"),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.store != nil {
		records, err := g.store.Load()
		if err != nil {
			return nil, err
		}
		cutoff := g.clock.Now().Add(-g.ttl)
		for _, r := range records {
			if r.SeenAt.Before(cutoff) {
				continue
			}
			g.insertLocked(r.MsgID, r.SeenAt)
		}
	}
	return g, nil
}

// Seen reports whether id was recorded within the TTL window.
func (g *Guard) Seen(id domain.Digest) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	el, ok := g.entries[id]
	if !ok {
		return false
	}
	// Expired records are treated as unseen; eviction is lazy.
	return !el.Value.(entry).seenAt.Before(g.clock.Now().Add(-g.ttl))
}

// CheckAndRecord records id and reports whether it was fresh. A zero id is
// never fresh. The check and the record are one atomic step, so two
// concurrent receives of the same message cannot both be accepted.
func (g *Guard) CheckAndRecord(id domain.Digest) bool {
	if id.IsZero() {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	g.cleanupLocked(now)

	if el, ok := g.entries[id]; ok {
		if !el.Value.(entry).seenAt.Before(now.Add(-g.ttl)) {
			return false
		}
		// Expired duplicate: treat as unseen, refresh in place.
		g.order.Remove(el)
		delete(g.entries, id)
	}

	g.insertLocked(id, now)
	g.persistLocked()
	return true
}

// Len reports the number of retained records.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.order.Len()
}

// insertLocked adds a record, evicting the oldest past the capacity bound.
func (g *Guard) insertLocked(id domain.Digest, at time.Time) {
	if _, ok := g.entries[id]; ok {
		return
	}
	for g.order.Len() >= g.capacity {
		oldest := g.order.Front()
		g.order.Remove(oldest)
		delete(g.entries, oldest.Value.(entry).id)
	}
	g.entries[id] = g.order.PushBack(entry{id: id, seenAt: at})
}

// cleanupLocked evicts expired entries. Must be called with mu held.
func (g *Guard) cleanupLocked(now time.Time) {
	cutoff := now.Add(-g.ttl)
	for {
		front := g.order.Front()
		if front == nil || !front.Value.(entry).seenAt.Before(cutoff) {
			return
		}
		g.order.Remove(front)
		delete(g.entries, front.Value.(entry).id)
	}
}

// persistLocked snapshots the records to the attached store. Persistence is
// best effort: a failed save is logged, not fatal, since the in-memory
// window still protects the running process.
func (g *Guard) persistLocked() {
	if g.store == nil {
		return
	}
	records := make([]domain.ReplayRecord, 0, g.order.Len())
	for el := g.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(entry)
		records = append(records, domain.ReplayRecord{MsgID: e.id, SeenAt: e.seenAt})
	}
	if err := g.store.Save(records); err != nil {
		g.log.WithError(err).Warn("persisting replay records failed")
	}
}
