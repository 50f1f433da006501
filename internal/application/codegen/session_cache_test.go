package codegen

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/internal/domain/entity"
)

// fakeClock 手动推进的测试时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testCacheConfig() config.SessionCacheConfig {
	return config.SessionCacheConfig{
		MaxEntries:        1000,
		ExpireAfterWrite:  30 * time.Minute,
		ExpireAfterAccess: 10 * time.Minute,
	}
}

func buildSession(appID string) SessionBuilder {
	return func(ctx context.Context) (*Session, error) {
		return &Session{
			AppID:   appID,
			GenType: entity.CodeGenTypeHTML,
			Memory:  NewConversationMemory(50),
		}, nil
	}
}

func TestSessionCache_GetOrBuildCachesSession(t *testing.T) {
	clock := newFakeClock()
	cache := newSessionCacheWithClock(testCacheConfig(), clock.Now)

	var builds int32
	build := func(ctx context.Context) (*Session, error) {
		atomic.AddInt32(&builds, 1)
		return buildSession("app-1")(ctx)
	}

	first, err := cache.GetOrBuild(context.Background(), "app-1_html", build)
	require.NoError(t, err)
	second, err := cache.GetOrBuild(context.Background(), "app-1_html", build)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}

func TestSessionCache_BuildErrorNotCached(t *testing.T) {
	clock := newFakeClock()
	cache := newSessionCacheWithClock(testCacheConfig(), clock.Now)

	var builds int32
	build := func(ctx context.Context) (*Session, error) {
		if atomic.AddInt32(&builds, 1) == 1 {
			return nil, errors.New("load history failed")
		}
		return buildSession("app-1")(ctx)
	}

	_, err := cache.GetOrBuild(context.Background(), "k", build)
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	s, err := cache.GetOrBuild(context.Background(), "k", build)
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, int32(2), atomic.LoadInt32(&builds))
}

func TestSessionCache_ExpireAfterWrite(t *testing.T) {
	clock := newFakeClock()
	cache := newSessionCacheWithClock(testCacheConfig(), clock.Now)

	_, err := cache.GetOrBuild(context.Background(), "k", buildSession("app-1"))
	require.NoError(t, err)

	// 持续访问保持 access 活性，但写入过期仍然生效
	for i := 0; i < 5; i++ {
		clock.Advance(6 * time.Minute)
		_, err := cache.GetOrBuild(context.Background(), "k", buildSession("app-1"))
		require.NoError(t, err)
	}

	var rebuilt int32
	clock.Advance(6 * time.Minute) // 累计超过 30m
	_, err = cache.GetOrBuild(context.Background(), "k", func(ctx context.Context) (*Session, error) {
		atomic.AddInt32(&rebuilt, 1)
		return buildSession("app-1")(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rebuilt))
}

func TestSessionCache_ExpireAfterAccess(t *testing.T) {
	clock := newFakeClock()
	cache := newSessionCacheWithClock(testCacheConfig(), clock.Now)

	first, err := cache.GetOrBuild(context.Background(), "k", buildSession("app-1"))
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)

	var rebuilt int32
	second, err := cache.GetOrBuild(context.Background(), "k", func(ctx context.Context) (*Session, error) {
		atomic.AddInt32(&rebuilt, 1)
		return buildSession("app-1")(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rebuilt))
	assert.NotSame(t, first, second)
}

func TestSessionCache_CapacityEvictsOldestWrite(t *testing.T) {
	clock := newFakeClock()
	cfg := testCacheConfig()
	cfg.MaxEntries = 2
	cache := newSessionCacheWithClock(cfg, clock.Now)

	_, err := cache.GetOrBuild(context.Background(), "a", buildSession("a"))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = cache.GetOrBuild(context.Background(), "b", buildSession("b"))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = cache.GetOrBuild(context.Background(), "c", buildSession("c"))
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())

	// a 写入最早，应已被淘汰
	var rebuilt int32
	_, err = cache.GetOrBuild(context.Background(), "a", func(ctx context.Context) (*Session, error) {
		atomic.AddInt32(&rebuilt, 1)
		return buildSession("a")(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rebuilt))
}

func TestSessionCache_ConcurrentBuildMerged(t *testing.T) {
	clock := newFakeClock()
	cache := newSessionCacheWithClock(testCacheConfig(), clock.Now)

	var builds int32
	gate := make(chan struct{})
	build := func(ctx context.Context) (*Session, error) {
		atomic.AddInt32(&builds, 1)
		<-gate
		return buildSession("app-1")(ctx)
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*Session, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := cache.GetOrBuild(context.Background(), "k", build)
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}

	// 等待首个构建进入后放行
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestSessionCache_Invalidate(t *testing.T) {
	clock := newFakeClock()
	cache := newSessionCacheWithClock(testCacheConfig(), clock.Now)

	_, err := cache.GetOrBuild(context.Background(), "k", buildSession("app-1"))
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	cache.Invalidate("k")
	assert.Equal(t, 0, cache.Len())
}
