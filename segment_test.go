// segment_test.go: tests for horizontally sharded caches
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"strconv"
	"testing"
)

func TestSegmented_SetGet(t *testing.T) {
	cache := NewSegmented[string, int](1000, 8)

	for i := 0; i < 200; i++ {
		cache.Set(strconv.Itoa(i), i)
	}
	for i := 0; i < 200; i++ {
		v, found := cache.Get(strconv.Itoa(i))
		if !found || v != i {
			t.Errorf("key %d: expected %d, got %v (found=%v)", i, i, v, found)
		}
	}
	if cache.NumSegments() != 8 {
		t.Errorf("expected 8 segments, got %d", cache.NumSegments())
	}
}

func TestSegmented_InvalidateAll(t *testing.T) {
	cache := NewSegmented[string, int](1000, 4)

	for i := 0; i < 50; i++ {
		cache.Set(strconv.Itoa(i), i)
	}
	cache.InvalidateAll()

	for i := 0; i < 50; i++ {
		if _, found := cache.Get(strconv.Itoa(i)); found {
			t.Errorf("expected key %d to be invalidated across all segments", i)
		}
	}
}

func TestSegmented_PanicsOnZeroSegments(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected NewSegmented to panic with 0 segments")
		}
	}()
	NewSegmented[string, int](1000, 0)
}

func TestSegmented_StatsAggregate(t *testing.T) {
	cache := NewSegmented[string, int](1000, 4)

	for i := 0; i < 100; i++ {
		cache.Set(strconv.Itoa(i), i)
	}
	for i := 0; i < 100; i++ {
		cache.Get(strconv.Itoa(i))
	}
	cache.Get("missing-key")

	stats := cache.Stats()
	if stats.Sets != 100 {
		t.Errorf("expected 100 total sets, got %d", stats.Sets)
	}
	if stats.Hits != 100 {
		t.Errorf("expected 100 total hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 total miss, got %d", stats.Misses)
	}
}
