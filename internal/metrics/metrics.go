// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Label values.
const (
	MethodPassword = "password"
	MethodGoogle   = "google"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	CacheUser     = "user"
	CacheDonation = "donation"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory for tests.
type Recorder interface {
	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)

	// Domain events
	IncItemCreated()
	IncUserRegistered(method string)
	IncLogin(method, outcome string)
	IncUserUpdated()
	IncDonationCreated(withImage bool)

	// Cache metrics
	IncCacheHit(cache string)
	IncCacheMiss(cache string)
}
