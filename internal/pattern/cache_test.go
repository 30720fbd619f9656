package pattern

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingMetrics records cache notifications for assertions.
type countingMetrics struct {
	mu     sync.Mutex
	hits   int
	misses int
	size   int
}

func (m *countingMetrics) PatternCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *countingMetrics) PatternCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func (m *countingMetrics) SetPatternCacheSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = n
}

func TestCache_Get(t *testing.T) {
	t.Parallel()

	c := NewCache()

	fn, err := c.Get("/items/:id")
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, 1, c.Len())

	again, err := c.Get("/items/:id")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Metrics(t *testing.T) {
	t.Parallel()

	m := &countingMetrics{}
	c := NewCache(WithMetrics(m))

	_, err := c.Get("/a")
	require.NoError(t, err)
	_, err = c.Get("/a")
	require.NoError(t, err)
	_, err = c.Get("/b")
	require.NoError(t, err)

	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 2, m.misses)
	assert.Equal(t, 2, m.size)
}

func TestCache_CompileErrorNotCached(t *testing.T) {
	t.Parallel()

	c := NewCache()

	_, err := c.Get("")
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn, err := c.Get("/items/:id")
			assert.NoError(t, err)
			assert.NotNil(t, fn)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
}

func TestCache_IsolatedPerInstance(t *testing.T) {
	t.Parallel()

	a := NewCache()
	b := NewCache()

	_, err := a.Get("/only-in-a")
	require.NoError(t, err)

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())
}
