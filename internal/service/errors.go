package service

import "errors"

var (
	// ErrQueryFailed wraps a failure of the backing store. Reachability
	// callers treat it as "show nothing"; the rate limiter treats store
	// failure as allowed instead (fail-open) and never returns it.
	ErrQueryFailed = errors.New("query failed")

	// ErrRateLimited means the caller exceeded a configured threshold.
	// Surfaced to HTTP as 429 with a human-readable message.
	ErrRateLimited = errors.New("rate limit exceeded")
)
