// Package strata implements a high-performance, thread-safe, in-memory
// cache using the W-TinyLFU (Window-TinyLFU) eviction algorithm,
// generalized over arbitrary comparable keys and value types.
//
// # Overview
//
// strata is designed for production use with focus on:
//   - Concurrency: readers never block on each other or on a writer to a
//     different key; the only suspension points are write-buffer
//     backpressure and waiting on a single-flight initializer.
//   - Type safety: Cache[K comparable, V any] with no interface{} boxing.
//   - Predictable eviction: a combined recency/frequency admission policy
//     resists both scan-heavy and skewed-frequency workloads.
//   - Observability: structured errors (go-errors), pluggable Logger and
//     MetricsCollector (OpenTelemetry-backed collector in strata/otel).
//
// # Quick start
//
//	type User struct {
//	    ID   int
//	    Name string
//	}
//
//	cache := strata.New[string, User](10_000,
//	    strata.WithTTL[string, User](time.Hour),
//	)
//
//	cache.Set("user:123", User{ID: 123, Name: "Alice"})
//
//	if user, found := cache.Get("user:123"); found {
//	    fmt.Printf("User: %s\n", user.Name)
//	}
//
//	stats := cache.Stats()
//	fmt.Printf("hit ratio: %.2f%%\n", stats.HitRatio())
//
// # Cache stampede prevention
//
// GetOrInsertWith and GetOrTryInsertWith evaluate init exactly once per
// key across all concurrently racing callers:
//
//	user, err := cache.GetOrTryInsertWith("user:123", func() (User, error) {
//	    return fetchUserFromDB(123) // runs once even under concurrent load
//	})
//
// A failing initializer is shared identically with every waiter of that
// call; the next GetOrTryInsertWith call re-evaluates from scratch.
//
// # W-TinyLFU admission
//
// Every new key first lands in a small LRU-ordered admission window
// (about 1% of capacity). When the window overflows, its least-recently-
// used entry moves to main space directly while main space has room;
// once main space is full, it competes against the least-recently-used
// entry in the probation segment using a Count-Min frequency sketch: the
// entry with the higher estimated frequency survives, and on a tie the
// newcomer is dropped. Main space itself splits into probation
// and protected segments; an entry promotes to protected on its second
// access and demotes back to probation if protected overflows. This
// combination resists both one-hit-wonder scans and workloads with a
// skewed popularity distribution.
//
// # Concurrency model
//
// Get is lock-free: it reads the entry table, checks liveness (global
// invalidation watermark, TTL, TTI, invalidation predicates) and returns,
// posting a lossy access event to a ring buffer for the housekeeper to
// fold into policy state later. Set posts a reliable write event to a
// bounded channel. A single busy-flag-guarded housekeeping pass, run
// inline on the calling goroutine (opportunistically from Get, Set and
// Invalidate, or synchronously via Sync), owns every policy
// data structure - the deques, the sketch, the predicate registry's
// retirement - so none of it needs locking.
//
// # Segmentation
//
// NewSegmented splits the keyspace across N independent engines, each
// with its own table, sketch, deques, and housekeeper, eliminating
// cross-segment contention at the cost of per-segment, not global,
// capacity bounds.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata
