// predicate_test.go: tests for bulk invalidation predicates
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

func TestInvalidateEntriesIf_RemovesMatching(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](1000, WithClock[string, int](clock))

	for i := 0; i < 20; i++ {
		cache.Set(strconv.Itoa(i), i)
	}
	clock.Advance(time.Millisecond)

	_, err := cache.InvalidateEntriesIf(func(_ string, v int) bool {
		return v%2 == 0
	})
	if err != nil {
		t.Fatalf("InvalidateEntriesIf returned error: %v", err)
	}
	cache.Sync()

	for i := 0; i < 20; i++ {
		_, found := cache.Get(strconv.Itoa(i))
		if i%2 == 0 && found {
			t.Errorf("expected even key %d to be invalidated", i)
		}
		if i%2 != 0 && !found {
			t.Errorf("expected odd key %d to survive", i)
		}
	}
}

func TestInvalidateEntriesIf_SparesEntriesWrittenAfterRegistration(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](1000, WithClock[string, int](clock))

	cache.Set("old", 1)
	clock.Advance(time.Millisecond)

	_, err := cache.InvalidateEntriesIf(func(_ string, _ int) bool { return true })
	if err != nil {
		t.Fatalf("InvalidateEntriesIf returned error: %v", err)
	}

	cache.Set("new", 2) // written after the predicate was registered
	cache.Sync()

	if _, found := cache.Get("old"); found {
		t.Errorf("expected pre-existing entry to be invalidated")
	}
	if v, found := cache.Get("new"); !found || v != 2 {
		t.Errorf("expected post-registration entry to survive, got %v (found=%v)", v, found)
	}
}

func TestInvalidateEntriesIf_DisabledReturnsError(t *testing.T) {
	cache := New[string, int](100, WithInvalidationPredicatesEnabled[string, int](false))

	_, err := cache.InvalidateEntriesIf(func(_ string, _ int) bool { return true })
	if !IsPredicatesDisabled(err) {
		t.Errorf("expected ErrPredicatesDisabled, got %v", err)
	}
}

func TestInvalidateEntriesIf_PanickingPredicateIsSafe(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	cache := New[string, int](100, WithClock[string, int](clock))

	cache.Set("k", 1)
	clock.Advance(time.Millisecond)

	_, err := cache.InvalidateEntriesIf(func(_ string, _ int) bool {
		panic("predicate exploded")
	})
	if err != nil {
		t.Fatalf("InvalidateEntriesIf returned error: %v", err)
	}

	// Must not panic or hang the housekeeper.
	cache.Sync()

	if v, found := cache.Get("k"); !found || v != 1 {
		t.Errorf("expected entry to survive a panicking predicate (treated as no-match), got %v (found=%v)", v, found)
	}
}
