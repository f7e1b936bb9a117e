// Package admission decides which contexts deserve one of the bounded cache slots.
//
// Every observed context has a hit counter. A context is eligible once its counter reaches the
// warm-up threshold; while free slots remain it is admitted directly, otherwise it replaces the
// admitted context with the fewest hits, provided it has strictly more. The victim scan is linear
// in the capacity, which is expected to stay in the tens or low hundreds.
package admission

type Decision uint8

const (
	// RejectWarmup means the context has not been read often enough yet.
	RejectWarmup Decision = iota
	// RejectColder means the cache is full and no admitted context has fewer hits.
	RejectColder
	// Admit means a free slot is available.
	Admit
	// Replace means the context takes the slot of a colder victim.
	Replace
)

func (d Decision) Allowed() bool { return d == Admit || d == Replace }

func (d Decision) String() string {
	switch d {
	case RejectWarmup:
		return "reject_warmup"
	case RejectColder:
		return "reject_colder"
	case Admit:
		return "admit"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

type Result struct {
	Decision Decision
	Victim   string // set on Replace
	slot     int
}

// Controller is not safe for concurrent use.
type Controller struct {
	capacity  int
	threshold int64
	hits      map[string]int64
	slots     []string       // admitted contexts; a victim's slot is reused by its replacement
	index     map[string]int // context -> slot
}

func New(capacity int, threshold int64) *Controller {
	return &Controller{
		capacity:  capacity,
		threshold: threshold,
		hits:      make(map[string]int64),
		slots:     make([]string, 0, capacity),
		index:     make(map[string]int, capacity),
	}
}

// Observe makes sure the context has a counter and returns it.
func (c *Controller) Observe(key string) int64 {
	n, ok := c.hits[key]
	if !ok {
		c.hits[key] = 0
	}
	return n
}

// Hit increments the counter of a context, creating it on first sight.
func (c *Controller) Hit(key string) int64 {
	n := c.hits[key] + 1
	c.hits[key] = n
	return n
}

// Hits returns the counter of a context and whether the context was ever observed.
func (c *Controller) Hits(key string) (int64, bool) {
	n, ok := c.hits[key]
	return n, ok
}

// Contains reports whether the context currently holds a slot.
func (c *Controller) Contains(key string) bool {
	_, ok := c.index[key]
	return ok
}

func (c *Controller) Len() int      { return len(c.slots) }
func (c *Controller) Cap() int      { return c.capacity }
func (c *Controller) Observed() int { return len(c.hits) }

// Decide evaluates the admission of a context which does not hold a slot yet.
// It does not mutate anything; apply the result with Commit.
func (c *Controller) Decide(key string) Result {
	hits := c.hits[key]
	if hits < c.threshold {
		return Result{Decision: RejectWarmup}
	}

	if len(c.slots) < c.capacity {
		return Result{Decision: Admit, slot: len(c.slots)}
	}

	slot := c.coldestSlot()
	victim := c.slots[slot]
	if c.hits[victim] < hits {
		return Result{Decision: Replace, Victim: victim, slot: slot}
	}
	return Result{Decision: RejectColder}
}

// Commit registers the context as observed and applies an allowed decision.
// The result must come from Decide with no mutation in between.
func (c *Controller) Commit(key string, res Result) {
	c.Observe(key)

	switch res.Decision {
	case Admit:
		c.index[key] = len(c.slots)
		c.slots = append(c.slots, key)
	case Replace:
		delete(c.index, res.Victim)
		c.slots[res.slot] = key
		c.index[key] = res.slot
	}
}

// Walk visits every observed context. Iteration order is unspecified.
func (c *Controller) Walk(fn func(key string, hits int64, cached bool)) {
	for key, hits := range c.hits {
		_, cached := c.index[key]
		fn(key, hits, cached)
	}
}

// coldestSlot returns the slot holding the fewest hits; ties go to the lowest slot.
func (c *Controller) coldestSlot() int {
	minSlot := 0
	minHits := c.hits[c.slots[0]]
	for i := 1; i < len(c.slots); i++ {
		if h := c.hits[c.slots[i]]; h < minHits {
			minSlot, minHits = i, h
		}
	}
	return minSlot
}
