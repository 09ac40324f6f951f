// Package ratelimiter provides per-client request rate limiting using the
// token bucket algorithm.
//
// Each client key (typically the remote IP) gets its own token bucket:
// tokens refill at the sustained rate, each request consumes one, and the
// burst size bounds how far a client can get ahead of the sustained rate.
// Limiting one client never affects another.
//
// The limiter is used on the authentication endpoints, where unthrottled
// requests would let a remote caller brute-force credentials.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleEviction is how long an untouched client bucket survives before its
// state is dropped. A dropped bucket restarts full, which only ever favors
// the client.
const idleEviction = 10 * time.Minute

// ClientLimiter rate-limits requests per client key.
//
// Thread safety: all methods are safe for concurrent use.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket

	requestsPerSecond rate.Limit
	burst             int

	// now is replaceable by tests.
	now func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a ClientLimiter with the given sustained rate and burst
// capacity per client.
//
// requestsPerSecond = 0 disables limiting: Allow always returns true.
func New(requestsPerSecond float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		clients:           make(map[string]*clientBucket),
		requestsPerSecond: rate.Limit(requestsPerSecond),
		burst:             burst,
		now:               time.Now,
	}
}

// Allow reports whether the client identified by key may make a request
// now, consuming a token when it may.
func (l *ClientLimiter) Allow(key string) bool {
	if l.requestsPerSecond == 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.clients[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.requestsPerSecond, l.burst)}
		l.clients[key] = bucket
	}
	bucket.lastSeen = l.now()

	l.evictIdleLocked()

	return bucket.limiter.Allow()
}

// Clients returns the number of tracked client buckets.
func (l *ClientLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// evictIdleLocked drops buckets idle past the eviction window. Caller must
// hold mu.
func (l *ClientLimiter) evictIdleLocked() {
	cutoff := l.now().Add(-idleEviction)
	for key, bucket := range l.clients {
		if bucket.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// SetClock replaces the time source. Used by tests.
func (l *ClientLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
