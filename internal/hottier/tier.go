// Package hottier keeps deserialized copies of serialized cache entries for a short time.
// Entries live while they keep being read: every read renews the timestamp, and a purge
// sweep run on each write drops whatever has not been touched for longer than the ttl.
// There is no background timer; a tier that stops receiving writes keeps its stale entries.
package hottier

import (
	"github.com/benbjohnson/clock"
	"time"
)

type item struct {
	value     any
	touchedAt time.Time
}

// Tier is not safe for concurrent use.
type Tier struct {
	ttl   time.Duration
	clock clock.Clock
	items map[string]*item
}

func New(ttl time.Duration, clk clock.Clock) *Tier {
	if clk == nil {
		clk = clock.New()
	}
	return &Tier{ttl: ttl, clock: clk, items: make(map[string]*item)}
}

// Get returns a hot value and renews its lifetime.
func (t *Tier) Get(key string) (any, bool) {
	it, ok := t.items[key]
	if !ok {
		return nil, false
	}
	it.touchedAt = t.clock.Now()
	return it.value, true
}

// Put stores a value stamped with the current time, then sweeps stale entries.
// Returns the number of purged entries.
func (t *Tier) Put(key string, value any) (purged int) {
	now := t.clock.Now()
	if it, ok := t.items[key]; ok {
		it.value, it.touchedAt = value, now
	} else {
		t.items[key] = &item{value: value, touchedAt: now}
	}
	return t.purge(now)
}

// Remove drops a key, reporting whether it was present.
func (t *Tier) Remove(key string) bool {
	if _, ok := t.items[key]; !ok {
		return false
	}
	delete(t.items, key)
	return true
}

func (t *Tier) Contains(key string) bool {
	_, ok := t.items[key]
	return ok
}

func (t *Tier) Len() int           { return len(t.items) }
func (t *Tier) TTL() time.Duration { return t.ttl }

// Purge removes entries idle for longer than the ttl.
func (t *Tier) Purge() int { return t.purge(t.clock.Now()) }

func (t *Tier) purge(now time.Time) (purged int) {
	for key, it := range t.items {
		if now.Sub(it.touchedAt) > t.ttl {
			delete(t.items, key)
			purged++
		}
	}
	return purged
}
