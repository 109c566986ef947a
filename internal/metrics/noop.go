package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (n *NoopRecorder) IncItemCreated()                                       {}
func (n *NoopRecorder) IncUserRegistered(string)                              {}
func (n *NoopRecorder) IncLogin(string, string)                               {}
func (n *NoopRecorder) IncUserUpdated()                                       {}
func (n *NoopRecorder) IncDonationCreated(bool)                               {}
func (n *NoopRecorder) IncCacheHit(string)                                    {}
func (n *NoopRecorder) IncCacheMiss(string)                                   {}
