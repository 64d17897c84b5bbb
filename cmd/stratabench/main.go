// Command stratabench drives a synthetic Get/Set workload against a
// strata cache and reports the resulting hit ratio and eviction counts.
//
// Flags are parsed with agilira/flash-flags rather than the standard
// library's flag package, matching the CLI tooling style used across the
// AGILira library suite.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	flashflags "github.com/agilira/flash-flags"

	"github.com/agilira/strata"
)

func main() {
	fs := flashflags.New("stratabench")
	capacity := fs.Int("capacity", 10_000, "maximum number of cache entries")
	operations := fs.Int("operations", 1_000_000, "number of Get/Set operations to run")
	keyspace := fs.Int("keyspace", 50_000, "number of distinct keys in the workload")
	writeRatio := fs.Float64("write-ratio", 0.1, "fraction of operations that are Set rather than Get")
	ttl := fs.Duration("ttl", 0, "entry time-to-live (0 disables TTL)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "stratabench:", err)
		os.Exit(1)
	}

	opts := []strata.Option[string, string]{}
	if *ttl > 0 {
		opts = append(opts, strata.WithTTL[string, string](*ttl))
	}
	cache := strata.New[string, string](*capacity, opts...)
	defer cache.Close()

	rng := rand.New(rand.NewSource(1))
	start := time.Now()

	for i := 0; i < *operations; i++ {
		key := strconv.Itoa(rng.Intn(*keyspace))
		if rng.Float64() < *writeRatio {
			cache.Set(key, key)
			continue
		}
		if _, found := cache.Get(key); !found {
			cache.Set(key, key)
		}
	}

	cache.Sync()
	elapsed := time.Since(start)
	stats := cache.Stats()

	fmt.Printf("operations:   %d\n", *operations)
	fmt.Printf("elapsed:      %s (%.0f ops/sec)\n", elapsed, float64(*operations)/elapsed.Seconds())
	fmt.Printf("hit ratio:    %.2f%%\n", stats.HitRatio())
	fmt.Printf("size/cap:     %d/%d\n", stats.Size, stats.Capacity)
	fmt.Printf("evictions:    %d\n", stats.Evictions)
	fmt.Printf("expirations:  %d\n", stats.Expirations)
}
