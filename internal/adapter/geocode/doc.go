// Package geocode composes reverse geocoding providers with the decorators the
// scan pipeline relies on: an LRU cache keyed by rounded coordinates, a token
// bucket rate limiter, and Prometheus instrumentation.
//
// [NewFromConfig] builds the full chain for the configured provider:
//
//	Cached -> RateLimited -> Instrumented -> provider client
//
// Cache hits never consume rate limit tokens and are not counted as provider
// requests.
package geocode
