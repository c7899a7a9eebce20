package fisher

import (
	"math"
	"sync"
	"sync/atomic"
)

// LogFactorials supplies ln(k!) to the PMF engine.
type LogFactorials interface {
	// Upto returns a slice whose element k is ln(k!) for every k <= n. It returns
	// nil when the source does not tabulate that far; the engine then evaluates
	// math.Lgamma per point, which yields the same values.
	Upto(n int) []float64
}

// logFactorial is ln(k!) through the log-gamma function. Every table entry is
// produced by this function so cached and direct evaluation agree bit for bit.
func logFactorial(k int) float64 {
	v, _ := math.Lgamma(float64(k) + 1)
	return v
}

// DefaultCacheLimit is the largest index a cache tabulates by default (8 MiB of
// float64). Larger totals fall back to math.Lgamma per point, so a table's cost
// follows its support rather than n.
const DefaultCacheLimit = 1 << 20

// minCacheSize is the initial tabulation so small tables never grow the cache.
const minCacheSize = 1024

// LogFactorialCache is an append-only ln(k!) table safe for concurrent use.
// Readers load an immutable snapshot; growth copies into a larger slice under a
// mutex and publishes it atomically, so a value visible at index k never changes.
type LogFactorialCache struct {
	table atomic.Pointer[[]float64]
	mu    sync.Mutex
	limit atomic.Int64
}

// NewLogFactorialCache returns an empty cache that tabulates up to limit.
// A limit <= 0 selects DefaultCacheLimit.
func NewLogFactorialCache(limit int) *LogFactorialCache {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	c := &LogFactorialCache{}
	c.limit.Store(int64(limit))
	empty := []float64{}
	c.table.Store(&empty)
	return c
}

// Upto implements LogFactorials.
func (c *LogFactorialCache) Upto(n int) []float64 {
	if t := *c.table.Load(); n < len(t) {
		return t
	}
	if n > c.Limit() {
		return nil
	}
	return c.grow(n)
}

// Len reports how many entries are currently tabulated.
func (c *LogFactorialCache) Len() int {
	return len(*c.table.Load())
}

// Limit reports the largest index the cache will tabulate.
func (c *LogFactorialCache) Limit() int {
	return int(c.limit.Load())
}

// SetLimit changes the largest tabulated index (DefaultCacheLimit when
// limit <= 0). Lowering it drops the entries above the new limit; snapshots
// already handed out stay valid.
func (c *LogFactorialCache) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.limit.Store(int64(limit))
	if old := *c.table.Load(); len(old) > limit+1 {
		next := make([]float64, limit+1)
		copy(next, old)
		c.table.Store(&next)
	}
}

// Preload tabulates every index up to n (capped at the limit).
func (c *LogFactorialCache) Preload(n int) {
	if limit := c.Limit(); n > limit {
		n = limit
	}
	c.Upto(n)
}

func (c *LogFactorialCache) grow(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := *c.table.Load()
	if n < len(old) {
		// another writer got there first
		return old
	}
	limit := c.Limit()
	if n > limit {
		return nil
	}

	size := 2 * len(old)
	if size < minCacheSize {
		size = minCacheSize
	}
	if size < n+1 {
		size = n + 1
	}
	if size > limit+1 {
		size = limit + 1
	}

	next := make([]float64, size)
	copy(next, old)
	for k := len(old); k < size; k++ {
		next[k] = logFactorial(k)
	}
	c.table.Store(&next)
	return next
}

// PrivateLogFactorials is an unsynchronized ln(k!) table owned by one goroutine.
// It trades redundant work across goroutines for lock-free growth.
type PrivateLogFactorials struct {
	table []float64
	limit int
}

// NewPrivateLogFactorials returns a private table that tabulates up to limit
// (DefaultCacheLimit when limit <= 0).
func NewPrivateLogFactorials(limit int) *PrivateLogFactorials {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	return &PrivateLogFactorials{limit: limit}
}

// Upto implements LogFactorials.
func (l *PrivateLogFactorials) Upto(n int) []float64 {
	if n < len(l.table) {
		return l.table
	}
	if n > l.limit {
		return nil
	}
	for k := len(l.table); k <= n; k++ {
		l.table = append(l.table, logFactorial(k))
	}
	return l.table
}

// DirectLogFactorials never tabulates; every ln(k!) comes straight from math.Lgamma.
type DirectLogFactorials struct{}

// Upto implements LogFactorials.
func (DirectLogFactorials) Upto(int) []float64 { return nil }

var sharedCache = NewLogFactorialCache(DefaultCacheLimit)

// SharedCache returns the process-wide cache used by engines built without
// WithLogFactorials.
func SharedCache() *LogFactorialCache {
	return sharedCache
}
