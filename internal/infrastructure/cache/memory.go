package cache

import (
	"sort"
	"sync"
	"time"
)

const defaultMaxEntries = 1000

type memoryEntry struct {
	value      []byte
	insertedAt time.Time
	expiresAt  time.Time
}

// memoryStore is the in-process fallback: TTL-expired entries are treated
// as absent and purged lazily; when the map exceeds maxEntries the oldest
// 10% by insertion time are evicted.
type memoryStore struct {
	maxEntries int

	mu      sync.Mutex
	entries map[string]memoryEntry

	now func() time.Time
}

func newMemoryStore(maxEntries int) *memoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &memoryStore{
		maxEntries: maxEntries,
		entries:    make(map[string]memoryEntry),
		now:        time.Now,
	}
}

func (m *memoryStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (m *memoryStore) set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.entries[key] = memoryEntry{
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(ttl),
	}
	if len(m.entries) > m.maxEntries {
		m.evictOldest()
	}
}

func (m *memoryStore) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *memoryStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// evictOldest removes the oldest ~10% of entries by insertion time.
// Caller holds m.mu.
func (m *memoryStore) evictOldest() {
	type aged struct {
		key        string
		insertedAt time.Time
	}
	all := make([]aged, 0, len(m.entries))
	for key, entry := range m.entries {
		all = append(all, aged{key: key, insertedAt: entry.insertedAt})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].insertedAt.Before(all[j].insertedAt)
	})

	drop := len(all) / 10
	if drop < 1 {
		drop = 1
	}
	for _, candidate := range all[:drop] {
		delete(m.entries, candidate.key)
	}
}
