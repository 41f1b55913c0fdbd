package metrics

import "time"

// NoopRecorder discards all metric events.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (NoopRecorder) IncPageCacheHit()                       {}
func (NoopRecorder) IncPageCacheMiss()                      {}
func (NoopRecorder) ObserveRenderDuration(_ time.Duration)  {}
func (NoopRecorder) IncHomeCreated()                        {}
func (NoopRecorder) IncHomeUpdated()                        {}
func (NoopRecorder) IncHomeDeleted()                        {}
func (NoopRecorder) IncSignInRequested()                    {}
func (NoopRecorder) IncSignInCompleted()                    {}
func (NoopRecorder) IncWelcomeEmail(_ string)               {}
