// cache_test.go: tests for the core Get/Set/Invalidate surface
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"strconv"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	cache := New[string, int](100)

	cache.Set("one", 1)
	cache.Set("two", 2)
	cache.Set("three", 3)

	if v, found := cache.Get("one"); !found || v != 1 {
		t.Errorf("expected 1, got %v (found=%v)", v, found)
	}
	if v, found := cache.Get("two"); !found || v != 2 {
		t.Errorf("expected 2, got %v (found=%v)", v, found)
	}
	if _, found := cache.Get("missing"); found {
		t.Errorf("expected missing key to be absent")
	}
}

func TestCache_Overwrite(t *testing.T) {
	cache := New[string, int](100)

	cache.Set("k", 1)
	cache.Set("k", 2)

	if v, found := cache.Get("k"); !found || v != 2 {
		t.Errorf("expected overwritten value 2, got %v (found=%v)", v, found)
	}
}

func TestCache_Invalidate(t *testing.T) {
	cache := New[string, int](100)

	cache.Set("k", 1)
	cache.Invalidate("k")

	if _, found := cache.Get("k"); found {
		t.Errorf("expected key to be absent after Invalidate")
	}
}

func TestCache_InvalidateAll(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](100, WithClock[string, int](clock))

	cache.Set("a", 1)
	cache.Set("b", 2)

	clock.Advance(time.Second)
	cache.InvalidateAll()

	if _, found := cache.Get("a"); found {
		t.Errorf("expected a to be invalidated")
	}
	if _, found := cache.Get("b"); found {
		t.Errorf("expected b to be invalidated")
	}

	cache.Set("c", 3)
	if v, found := cache.Get("c"); !found || v != 3 {
		t.Errorf("expected c inserted after InvalidateAll to survive, got %v (found=%v)", v, found)
	}
}

func TestCache_CapacityBound(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](50, WithClock[string, int](clock))

	for i := 0; i < 5000; i++ {
		cache.Set(strconv.Itoa(i), i)
		clock.Advance(time.Microsecond)
	}
	cache.Sync()

	stats := cache.Stats()
	if stats.Size > stats.Capacity {
		t.Errorf("population %d exceeds capacity %d", stats.Size, stats.Capacity)
	}
	if stats.Evictions == 0 {
		t.Errorf("expected evictions after inserting far beyond capacity")
	}
}

func TestCache_HotKeysSurviveScan(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](100, WithClock[string, int](clock))

	// Warm a small set of hot keys.
	for i := 0; i < 10; i++ {
		cache.Set("hot-"+strconv.Itoa(i), i)
	}
	for round := 0; round < 50; round++ {
		for i := 0; i < 10; i++ {
			cache.Get("hot-" + strconv.Itoa(i))
		}
		clock.Advance(time.Microsecond)
	}
	cache.Sync()

	// A long scan of one-hit-wonders should not evict every hot key.
	for i := 0; i < 5000; i++ {
		cache.Set("scan-"+strconv.Itoa(i), i)
		clock.Advance(time.Microsecond)
	}
	cache.Sync()

	survivors := 0
	for i := 0; i < 10; i++ {
		if _, found := cache.Get("hot-" + strconv.Itoa(i)); found {
			survivors++
		}
	}
	if survivors == 0 {
		t.Errorf("expected at least some hot keys to survive a one-hit-wonder scan")
	}
}

func TestCache_Stats_HitRatio(t *testing.T) {
	cache := New[string, int](100)
	cache.Set("k", 1)

	cache.Get("k")
	cache.Get("k")
	cache.Get("missing")

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("expected 2 hits/1 miss, got hits=%d misses=%d", stats.Hits, stats.Misses)
	}
	if ratio := stats.HitRatio(); ratio < 66 || ratio > 67 {
		t.Errorf("expected hit ratio ~66.67%%, got %.2f", ratio)
	}
}

func TestCache_Close(t *testing.T) {
	cache := New[string, int](100)
	cache.Set("k", 1)

	if err := cache.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, found := cache.Get("k"); found {
		t.Errorf("expected Get to report absent after Close")
	}
}
