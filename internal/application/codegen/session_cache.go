package codegen

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"z-appgen-ai-api/internal/config"
	"z-appgen-ai-api/pkg/metrics"
)

type sessionEntry struct {
	session    *Session
	writtenAt  time.Time
	accessedAt time.Time
}

// SessionCache 有界的生成会话缓存。
// 条目在写入 expire_after_write 或最后访问 expire_after_access 后过期，
// 过期检查在访问和写入时惰性执行；超出容量时淘汰写入时间最早的条目。
// 同一 key 的并发构建通过 singleflight 合并为一次，构建失败不缓存。
type SessionCache struct {
	cfg   config.SessionCacheConfig
	nowFn func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
	group   singleflight.Group
}

// NewSessionCache 创建会话缓存
func NewSessionCache(cfg *config.Config) *SessionCache {
	return newSessionCacheWithClock(cfg.Codegen.SessionCache, time.Now)
}

// newSessionCacheWithClock 注入时钟，供测试控制过期
func newSessionCacheWithClock(cfg config.SessionCacheConfig, nowFn func() time.Time) *SessionCache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.ExpireAfterWrite <= 0 {
		cfg.ExpireAfterWrite = 30 * time.Minute
	}
	if cfg.ExpireAfterAccess <= 0 {
		cfg.ExpireAfterAccess = 10 * time.Minute
	}
	return &SessionCache{
		cfg:     cfg,
		nowFn:   nowFn,
		entries: make(map[string]*sessionEntry),
	}
}

// GetOrBuild 获取缓存会话，未命中时通过 build 构建并缓存。
// 构建失败返回错误且不写入缓存，下次调用会重试。
func (c *SessionCache) GetOrBuild(ctx context.Context, key string, build SessionBuilder) (*Session, error) {
	if s := c.lookup(key); s != nil {
		metrics.SessionCacheEvents.WithLabelValues("hit").Inc()
		return s, nil
	}
	metrics.SessionCacheEvents.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// 可能有并发请求在排队期间已完成构建
		if s := c.lookup(key); s != nil {
			return s, nil
		}
		s, err := build(ctx)
		if err != nil {
			metrics.SessionCacheEvents.WithLabelValues("build_error").Inc()
			return nil, err
		}
		c.store(key, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Invalidate 移除指定 key 的缓存条目
func (c *SessionCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	metrics.SessionCacheSize.Set(float64(len(c.entries)))
}

// Len 当前缓存条目数
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// lookup 返回未过期的会话并刷新访问时间，过期条目顺手删除
func (c *SessionCache) lookup(key string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	now := c.nowFn()
	if c.expired(e, now) {
		delete(c.entries, key)
		metrics.SessionCacheEvents.WithLabelValues("evict_expired").Inc()
		metrics.SessionCacheSize.Set(float64(len(c.entries)))
		return nil
	}
	e.accessedAt = now
	return e.session
}

func (c *SessionCache) store(key string, s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFn()
	c.sweepLocked(now)

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.MaxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = &sessionEntry{
		session:    s,
		writtenAt:  now,
		accessedAt: now,
	}
	metrics.SessionCacheSize.Set(float64(len(c.entries)))
}

func (c *SessionCache) expired(e *sessionEntry, now time.Time) bool {
	return now.Sub(e.writtenAt) >= c.cfg.ExpireAfterWrite ||
		now.Sub(e.accessedAt) >= c.cfg.ExpireAfterAccess
}

// sweepLocked 清理所有已过期条目，调用方需持锁
func (c *SessionCache) sweepLocked(now time.Time) {
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			metrics.SessionCacheEvents.WithLabelValues("evict_expired").Inc()
		}
	}
}

// evictOldestLocked 淘汰写入时间最早的条目，调用方需持锁
func (c *SessionCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.writtenAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.writtenAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		metrics.SessionCacheEvents.WithLabelValues("evict_capacity").Inc()
	}
}
