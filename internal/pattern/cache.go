package pattern

import "sync"

// CacheMetrics receives cache activity notifications. Implementations
// must be safe for concurrent use.
type CacheMetrics interface {
	PatternCacheHit()
	PatternCacheMiss()
	SetPatternCacheSize(n int)
}

// nopMetrics discards all notifications.
type nopMetrics struct{}

func (nopMetrics) PatternCacheHit()        {}
func (nopMetrics) PatternCacheMiss()       {}
func (nopMetrics) SetPatternCacheSize(int) {}

// Cache maps pattern strings to compiled match functions. Entries are
// populated lazily on first use and never evicted; the cache is
// bounded by the number of distinct patterns a router declares, which
// is static for the process lifetime.
//
// Each router owns its own Cache so that multiple routers in one
// process do not share or contend over compiled state.
type Cache struct {
	mu      sync.RWMutex
	fns     map[string]MatchFunc
	metrics CacheMetrics
}

// CacheOption is a functional option for configuring the cache.
type CacheOption func(*Cache)

// WithMetrics sets the metrics sink for the cache.
func WithMetrics(m CacheMetrics) CacheOption {
	return func(c *Cache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewCache creates a new pattern cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		fns:     make(map[string]MatchFunc),
		metrics: nopMetrics{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the compiled matcher for a pattern, compiling it on
// first use. Compile failures are returned and not cached.
func (c *Cache) Get(pat string) (MatchFunc, error) {
	c.mu.RLock()
	fn, ok := c.fns[pat]
	c.mu.RUnlock()

	if ok {
		c.metrics.PatternCacheHit()
		return fn, nil
	}

	c.metrics.PatternCacheMiss()

	// Compile outside the lock; compilation is idempotent so a
	// racing duplicate is harmless.
	fn, err := Compile(pat)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.fns[pat]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.fns[pat] = fn
	size := len(c.fns)
	c.mu.Unlock()

	c.metrics.SetPatternCacheSize(size)

	return fn, nil
}

// Len returns the number of compiled patterns in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fns)
}
