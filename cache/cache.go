// Package cache keeps recent live extractions keyed by page URL so repeated
// runs against the same targets skip the page load.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/velocity/extractor"
)

// Store is an extraction cache. Misses and backend failures both report
// false; a cache never fails a run.
type Store interface {
	Get(ctx context.Context, pageURL string) (*extractor.Result, bool)
	Set(ctx context.Context, pageURL string, r *extractor.Result)
	Close() error
}

// Key derives the cache key of a page URL. Surrounding whitespace and a
// trailing slash do not change the key.
func Key(pageURL string) string {
	normalized := strings.TrimSuffix(strings.TrimSpace(pageURL), "/")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// entry holds a cached extraction with its creation timestamp.
type entry struct {
	result    *extractor.Result
	createdAt time.Time
}

// Memory is an in-process Store with a TTL and a size bound.
// It is safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	store      map[string]*entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory creates a Memory cache. A background goroutine evicts expired
// entries every ttl/2 (at least once a minute) until Close.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	m := &Memory{
		store:      make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	interval := min(max(ttl/2, time.Second), time.Minute)
	go m.cleanupLoop(interval)
	return m
}

// Get returns a copy of the cached extraction if it is younger than the TTL.
func (m *Memory) Get(_ context.Context, pageURL string) (*extractor.Result, bool) {
	m.mu.RLock()
	e, ok := m.store[Key(pageURL)]
	m.mu.RUnlock()

	if !ok || m.expired(e) {
		return nil, false
	}
	return clone(e.result), true
}

// Set stores a copy of r. At capacity the oldest entry is evicted.
func (m *Memory) Set(_ context.Context, pageURL string, r *extractor.Result) {
	if r == nil {
		return
	}
	key := Key(pageURL)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && len(m.store) >= m.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range m.store {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey, oldest = k, e.createdAt
			}
		}
		delete(m.store, oldestKey)
	}

	m.store[key] = &entry{result: clone(r), createdAt: m.now()}
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) expired(e *entry) bool {
	return m.ttl > 0 && m.now().Sub(e.createdAt) > m.ttl
}

func (m *Memory) evictExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.store {
		if m.expired(e) {
			delete(m.store, k)
		}
	}
}

func (m *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.evictExpired()
		case <-m.stop:
			return
		}
	}
}

func clone(r *extractor.Result) *extractor.Result {
	c := *r
	if r.Reviews != nil {
		c.Reviews = append([]string(nil), r.Reviews...)
	}
	return &c
}
