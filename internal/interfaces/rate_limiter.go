package interfaces

// RateLimiter bounds job creations per client IP over a sliding window.
type RateLimiter interface {
	// Allow records an attempt for ip and reports whether it is within the
	// window. When the limit is exhausted, retryAfter is the number of
	// seconds until the oldest recorded attempt ages out.
	Allow(ip string) (allowed bool, retryAfter int)

	// Sweep drops tracking state for IPs that have gone idle.
	Sweep() int
}
