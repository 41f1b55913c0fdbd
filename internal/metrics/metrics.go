// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Listing page metrics
	IncPageCacheHit()
	IncPageCacheMiss()
	ObserveRenderDuration(duration time.Duration)

	// Listing management metrics
	IncHomeCreated()
	IncHomeUpdated()
	IncHomeDeleted()

	// Authentication metrics
	IncSignInRequested()
	IncSignInCompleted()

	// Welcome notification metrics
	IncWelcomeEmail(status string) // status: "sent", "failed", "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
