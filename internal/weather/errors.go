package weather

import "errors"

var (
	// ErrLocationNotFound means geocoding yielded no results for the
	// (city, country) pair. Not retried automatically; surfaced
	// per-location in the cycle report.
	ErrLocationNotFound = errors.New("location not found")

	// ErrUpstreamUnavailable covers transient network and non-2xx
	// failures from the weather provider. Eligible for the next
	// scheduled cycle, never retried within the same cycle.
	ErrUpstreamUnavailable = errors.New("weather upstream unavailable")
)
