package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	HTTPRequests       uint64
	ItemsCreated       uint64
	UsersUpdated       uint64
	DonationsCreated   uint64
	DonationsWithImage uint64
	UsersRegistered    map[string]uint64 // by method
	Logins             map[string]uint64 // "method/outcome"
	CacheHits          map[string]uint64
	CacheMisses        map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	httpRequests       uint64
	itemsCreated       uint64
	usersUpdated       uint64
	donationsCreated   uint64
	donationsWithImage uint64

	mu              sync.Mutex
	usersRegistered map[string]uint64
	logins          map[string]uint64
	cacheHits       map[string]uint64
	cacheMisses     map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		usersRegistered: make(map[string]uint64),
		logins:          make(map[string]uint64),
		cacheHits:       make(map[string]uint64),
		cacheMisses:     make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		HTTPRequests:       atomic.LoadUint64(&m.httpRequests),
		ItemsCreated:       atomic.LoadUint64(&m.itemsCreated),
		UsersUpdated:       atomic.LoadUint64(&m.usersUpdated),
		DonationsCreated:   atomic.LoadUint64(&m.donationsCreated),
		DonationsWithImage: atomic.LoadUint64(&m.donationsWithImage),
		UsersRegistered:    copyCounts(m.usersRegistered),
		Logins:             copyCounts(m.logins),
		CacheHits:          copyCounts(m.cacheHits),
		CacheMisses:        copyCounts(m.cacheMisses),
	}
}

func (m *InMemoryRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
}

func (m *InMemoryRecorder) IncItemCreated() {
	atomic.AddUint64(&m.itemsCreated, 1)
}

func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

func (m *InMemoryRecorder) IncDonationCreated(withImage bool) {
	atomic.AddUint64(&m.donationsCreated, 1)
	if withImage {
		atomic.AddUint64(&m.donationsWithImage, 1)
	}
}

func (m *InMemoryRecorder) IncUserRegistered(method string) {
	m.inc(m.usersRegistered, method)
}

func (m *InMemoryRecorder) IncLogin(method, outcome string) {
	m.inc(m.logins, method+"/"+outcome)
}

func (m *InMemoryRecorder) IncCacheHit(cache string) {
	m.inc(m.cacheHits, cache)
}

func (m *InMemoryRecorder) IncCacheMiss(cache string) {
	m.inc(m.cacheMisses, cache)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
