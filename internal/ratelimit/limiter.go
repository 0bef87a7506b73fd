package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
)

// Defaults: ten research jobs per hour per client IP.
const (
	DefaultWindow = time.Hour
	DefaultLimit  = 10

	// idleRetention is how long an empty bucket survives before a sweep
	// drops it.
	idleRetention = 24 * time.Hour
)

// Limiter counts job creations per client IP over a sliding window. All
// state is in memory; a restart clears it, which is acceptable for an
// abuse guard.
type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	idleFor time.Duration

	buckets map[string]*bucket

	logger arbor.ILogger
}

// bucket holds the attempt timestamps for one IP, oldest first.
type bucket struct {
	stamps   []time.Time
	lastSeen time.Time
}

var _ interfaces.RateLimiter = (*Limiter)(nil)

// New creates a limiter. Non-positive window or limit fall back to the
// defaults.
func New(window time.Duration, limit int, logger arbor.ILogger) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Limiter{
		window:  window,
		limit:   limit,
		idleFor: idleRetention,
		buckets: make(map[string]*bucket),
		logger:  logger.WithPrefix("ratelimit"),
	}
}

// Allow records an attempt for ip when it is within the limit. When the
// limit is exhausted it reports the seconds until the oldest recorded
// attempt ages out of the window (rounded up, never below one).
func (l *Limiter) Allow(ip string) (bool, int) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[ip]
	if !exists {
		b = &bucket{}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	b.stamps = pruneStamps(b.stamps, now.Add(-l.window))

	if len(b.stamps) >= l.limit {
		oldest := b.stamps[0]
		retryAfter := int(math.Ceil(oldest.Add(l.window).Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		l.logger.Warn().
			Str("ip", ip).
			Int("attempts", len(b.stamps)).
			Int("retry_after", retryAfter).
			Msg("Rate limit exceeded")
		return false, retryAfter
	}

	b.stamps = append(b.stamps, now)
	return true, 0
}

// Sweep prunes expired attempts and drops buckets that have been idle past
// the retention period. Returns how many buckets were dropped.
func (l *Limiter) Sweep() int {
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, b := range l.buckets {
		b.stamps = pruneStamps(b.stamps, cutoff)
		if len(b.stamps) == 0 && now.Sub(b.lastSeen) > l.idleFor {
			delete(l.buckets, ip)
			removed++
		}
	}

	if removed > 0 {
		l.logger.Debug().
			Int("removed", removed).
			Int("remaining", len(l.buckets)).
			Msg("Swept idle rate limit buckets")
	}
	return removed
}

// pruneStamps drops timestamps at or before cutoff, keeping order.
func pruneStamps(stamps []time.Time, cutoff time.Time) []time.Time {
	kept := stamps[:0]
	for _, stamp := range stamps {
		if stamp.After(cutoff) {
			kept = append(kept, stamp)
		}
	}
	return kept
}
