// ttl_tti_test.go: tests for time-based expiration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"testing"
	"time"
)

func TestCache_TTLExpiry(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](100,
		WithTTL[string, int](time.Minute),
		WithClock[string, int](clock),
	)

	cache.Set("k", 1)
	if v, found := cache.Get("k"); !found || v != 1 {
		t.Fatalf("expected hit before TTL elapses, got %v (found=%v)", v, found)
	}

	clock.Advance(61 * time.Second)
	if _, found := cache.Get("k"); found {
		t.Errorf("expected miss once TTL has elapsed")
	}
}

func TestCache_TTLResetsOnWrite(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](100,
		WithTTL[string, int](time.Minute),
		WithClock[string, int](clock),
	)

	cache.Set("k", 1)
	clock.Advance(45 * time.Second)
	cache.Set("k", 2) // refreshes last_modified_at

	clock.Advance(45 * time.Second)
	if v, found := cache.Get("k"); !found || v != 2 {
		t.Errorf("expected entry to survive past the original TTL window after a rewrite, got %v (found=%v)", v, found)
	}
}

func TestCache_TTIExpiry(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](100,
		WithTTI[string, int](time.Minute),
		WithClock[string, int](clock),
	)

	cache.Set("k", 1)
	clock.Advance(30 * time.Second)
	if _, found := cache.Get("k"); !found {
		t.Fatalf("expected hit before TTI elapses")
	}

	// The Get above refreshed last_accessed_at; another 30s should still
	// be live, only more than a minute without access should expire it.
	clock.Advance(30 * time.Second)
	if _, found := cache.Get("k"); !found {
		t.Fatalf("expected access to refresh the idle timer")
	}

	clock.Advance(61 * time.Second)
	if _, found := cache.Get("k"); found {
		t.Errorf("expected miss once TTI has elapsed without access")
	}
}

func TestCache_TTLAndTTICombined(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](100,
		WithTTL[string, int](time.Hour),
		WithTTI[string, int](time.Minute),
		WithClock[string, int](clock),
	)

	cache.Set("k", 1)
	for i := 0; i < 5; i++ {
		clock.Advance(30 * time.Second)
		if _, found := cache.Get("k"); !found {
			t.Fatalf("expected repeated access within the idle window to keep the entry alive (iteration %d)", i)
		}
	}

	clock.Advance(61 * time.Second)
	if _, found := cache.Get("k"); found {
		t.Errorf("expected TTI to expire the entry once access stops, even though TTL has not elapsed")
	}
}
