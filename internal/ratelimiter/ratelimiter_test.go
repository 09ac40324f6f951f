package ratelimiter

import (
	"fmt"
	"testing"
	"time"
)

// TestAllow verifies that a client's burst is honored and then exhausted.
func TestAllow(t *testing.T) {
	limiter := New(1, 5)

	for i := 0; i < 5; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed (within burst)", i)
		}
	}

	if limiter.Allow("10.0.0.1") {
		t.Fatal("request should be rate-limited after burst exhausted")
	}
}

// TestAllow_PerClient verifies that exhausting one client's bucket never
// affects another client.
func TestAllow_PerClient(t *testing.T) {
	limiter := New(1, 2)

	for i := 0; i < 2; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d for client 1 should be allowed", i)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("client 1 should be exhausted")
	}

	if !limiter.Allow("10.0.0.2") {
		t.Fatal("client 2 must not be affected by client 1's bucket")
	}
}

// TestAllow_Unlimited verifies that a zero rate disables limiting entirely.
func TestAllow_Unlimited(t *testing.T) {
	limiter := New(0, 0)

	for i := 0; i < 1000; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed with limiting disabled", i)
		}
	}
	if limiter.Clients() != 0 {
		t.Errorf("Expected no tracked clients with limiting disabled, got %d", limiter.Clients())
	}
}

// TestIdleEviction verifies that untouched buckets are dropped after the
// idle window, using a fake clock.
func TestIdleEviction(t *testing.T) {
	limiter := New(1, 2)

	now := time.Now()
	limiter.SetClock(func() time.Time { return now })

	for i := 0; i < 20; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	if limiter.Clients() != 20 {
		t.Fatalf("Expected 20 tracked clients, got %d", limiter.Clients())
	}

	// Past the idle window, the next request sweeps the stale buckets.
	now = now.Add(idleEviction + time.Minute)
	limiter.Allow("10.0.0.100")

	if limiter.Clients() != 1 {
		t.Errorf("Expected only the active client to survive eviction, got %d", limiter.Clients())
	}
}

// TestIdleEviction_RestartsFull verifies that an evicted client comes back
// with a full bucket.
func TestIdleEviction_RestartsFull(t *testing.T) {
	limiter := New(1, 2)

	now := time.Now()
	limiter.SetClock(func() time.Time { return now })

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.1")
	if limiter.Allow("10.0.0.1") {
		t.Fatal("client should be exhausted")
	}

	// Another client's request past the idle window sweeps the stale
	// bucket; the returning client then starts with a full one.
	now = now.Add(idleEviction + time.Minute)
	limiter.Allow("10.0.0.2")

	if !limiter.Allow("10.0.0.1") {
		t.Error("Expected a fresh bucket after eviction")
	}
}
