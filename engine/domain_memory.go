package engine

import (
	"sync"
	"time"
)

type domainEntry struct {
	engine    string
	expiresAt time.Time
}

// DomainMemory remembers, per host, the engine that last loaded a page
// successfully, so later requests can skip the escalation ladder.
type DomainMemory struct {
	mu    sync.Mutex
	store map[string]*domainEntry
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// NewDomainMemory returns a DomainMemory whose entries live for ttl.
// Expired entries are pruned every interval until Stop is called.
func NewDomainMemory(ttl, interval time.Duration) *DomainMemory {
	dm := &DomainMemory{
		store: make(map[string]*domainEntry),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}
	if interval > 0 {
		go dm.pruneLoop(interval)
	}
	return dm
}

// Get returns the remembered engine for domain, or "".
func (dm *DomainMemory) Get(domain string) string {
	if dm == nil {
		return ""
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()

	e, ok := dm.store[domain]
	if !ok {
		return ""
	}
	if dm.now().After(e.expiresAt) {
		delete(dm.store, domain)
		return ""
	}
	return e.engine
}

// Set records engine as the one that worked for domain.
func (dm *DomainMemory) Set(domain, engine string) {
	if dm == nil || domain == "" {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.store[domain] = &domainEntry{engine: engine, expiresAt: dm.now().Add(dm.ttl)}
}

// Forget drops the entry for domain.
func (dm *DomainMemory) Forget(domain string) {
	if dm == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.store, domain)
}

// Snapshot returns domain -> engine for all live entries.
func (dm *DomainMemory) Snapshot() map[string]string {
	out := make(map[string]string)
	if dm == nil {
		return out
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	now := dm.now()
	for d, e := range dm.store {
		if now.Before(e.expiresAt) {
			out[d] = e.engine
		}
	}
	return out
}

// Stop ends background pruning. It is safe to call more than once.
func (dm *DomainMemory) Stop() {
	dm.once.Do(func() { close(dm.done) })
}

func (dm *DomainMemory) prune() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	now := dm.now()
	for d, e := range dm.store {
		if now.After(e.expiresAt) {
			delete(dm.store, d)
		}
	}
}

func (dm *DomainMemory) pruneLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-dm.done:
			return
		case <-ticker.C:
			dm.prune()
		}
	}
}
