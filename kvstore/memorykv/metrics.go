package memorykv

import "sync"

// Stats is a snapshot of store statistics at a point in time.
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
	ItemCount int
	BytesUsed int64
}

// metrics tracks store statistics under its own lock, independent of the
// store's data-structure lock, so Stats() never blocks a Get/Set.
type metrics struct {
	mu sync.RWMutex

	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
	itemCount int
	bytesUsed int64
}

func newMetrics() *metrics {
	return &metrics{}
}

func (m *metrics) recordHit() {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

func (m *metrics) recordMiss() {
	m.mu.Lock()
	m.misses++
	m.mu.Unlock()
}

func (m *metrics) recordSet(bytes int64) {
	m.mu.Lock()
	m.sets++
	m.bytesUsed += bytes
	m.itemCount++
	m.mu.Unlock()
}

func (m *metrics) recordUpdate(oldBytes, newBytes int64) {
	m.mu.Lock()
	m.sets++
	m.bytesUsed = m.bytesUsed - oldBytes + newBytes
	m.mu.Unlock()
}

func (m *metrics) recordDelete(bytes int64) {
	m.mu.Lock()
	m.deletes++
	m.bytesUsed -= bytes
	m.itemCount--
	m.mu.Unlock()
}

func (m *metrics) recordEviction(bytes int64) {
	m.mu.Lock()
	m.evictions++
	m.bytesUsed -= bytes
	m.itemCount--
	m.mu.Unlock()
}

func (m *metrics) snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Hits:      m.hits,
		Misses:    m.misses,
		Sets:      m.sets,
		Deletes:   m.deletes,
		Evictions: m.evictions,
		ItemCount: m.itemCount,
		BytesUsed: m.bytesUsed,
	}
}
