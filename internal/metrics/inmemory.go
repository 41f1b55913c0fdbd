package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	PageCacheHits         uint64
	PageCacheMisses       uint64
	RenderDurationCount   uint64
	RenderDurationTotalNs int64
	HomesCreated          uint64
	HomesUpdated          uint64
	HomesDeleted          uint64
	SignInsRequested      uint64
	SignInsCompleted      uint64
	WelcomeEmailsSent     uint64
	WelcomeEmailsFailed   uint64
	WelcomeEmailsDropped  uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	pageCacheHits         uint64
	pageCacheMisses       uint64
	renderDurationCount   uint64
	renderDurationTotalNs int64
	homesCreated          uint64
	homesUpdated          uint64
	homesDeleted          uint64
	signInsRequested      uint64
	signInsCompleted      uint64
	welcomeEmailsSent     uint64
	welcomeEmailsFailed   uint64
	welcomeEmailsDropped  uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		PageCacheHits:         atomic.LoadUint64(&m.pageCacheHits),
		PageCacheMisses:       atomic.LoadUint64(&m.pageCacheMisses),
		RenderDurationCount:   atomic.LoadUint64(&m.renderDurationCount),
		RenderDurationTotalNs: atomic.LoadInt64(&m.renderDurationTotalNs),
		HomesCreated:          atomic.LoadUint64(&m.homesCreated),
		HomesUpdated:          atomic.LoadUint64(&m.homesUpdated),
		HomesDeleted:          atomic.LoadUint64(&m.homesDeleted),
		SignInsRequested:      atomic.LoadUint64(&m.signInsRequested),
		SignInsCompleted:      atomic.LoadUint64(&m.signInsCompleted),
		WelcomeEmailsSent:     atomic.LoadUint64(&m.welcomeEmailsSent),
		WelcomeEmailsFailed:   atomic.LoadUint64(&m.welcomeEmailsFailed),
		WelcomeEmailsDropped:  atomic.LoadUint64(&m.welcomeEmailsDropped),
	}
}

// IncPageCacheHit increments the page cache hit counter.
func (m *InMemoryRecorder) IncPageCacheHit() {
	atomic.AddUint64(&m.pageCacheHits, 1)
}

// IncPageCacheMiss increments the page cache miss counter.
func (m *InMemoryRecorder) IncPageCacheMiss() {
	atomic.AddUint64(&m.pageCacheMisses, 1)
}

// ObserveRenderDuration records a page render duration.
func (m *InMemoryRecorder) ObserveRenderDuration(duration time.Duration) {
	atomic.AddUint64(&m.renderDurationCount, 1)
	atomic.AddInt64(&m.renderDurationTotalNs, duration.Nanoseconds())
}

// IncHomeCreated increments the homes created counter.
func (m *InMemoryRecorder) IncHomeCreated() {
	atomic.AddUint64(&m.homesCreated, 1)
}

// IncHomeUpdated increments the homes updated counter.
func (m *InMemoryRecorder) IncHomeUpdated() {
	atomic.AddUint64(&m.homesUpdated, 1)
}

// IncHomeDeleted increments the homes deleted counter.
func (m *InMemoryRecorder) IncHomeDeleted() {
	atomic.AddUint64(&m.homesDeleted, 1)
}

// IncSignInRequested increments the sign-in requested counter.
func (m *InMemoryRecorder) IncSignInRequested() {
	atomic.AddUint64(&m.signInsRequested, 1)
}

// IncSignInCompleted increments the sign-in completed counter.
func (m *InMemoryRecorder) IncSignInCompleted() {
	atomic.AddUint64(&m.signInsCompleted, 1)
}

// IncWelcomeEmail increments the welcome email counter for a delivery status.
func (m *InMemoryRecorder) IncWelcomeEmail(status string) {
	switch status {
	case "sent":
		atomic.AddUint64(&m.welcomeEmailsSent, 1)
	case "failed":
		atomic.AddUint64(&m.welcomeEmailsFailed, 1)
	case "dropped":
		atomic.AddUint64(&m.welcomeEmailsDropped, 1)
	}
}
