// clock.go: injectable monotonic time source
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// Clock provides the current time as a nanosecond instant. The cache
// never calls time.Now() directly; every timestamp used for TTL, TTI, and
// predicate registration comes from a Clock so that tests can substitute
// a ManualClock. The default clock (systemClock) reads cached wall-clock
// time, which is not guaranteed to be monotonic.
type Clock interface {
	// Now returns the current instant in nanoseconds. Implementations must
	// be safe for concurrent use and should be very fast: it is called on
	// every Get and Set.
	Now() int64
}

// systemClock is the default Clock, backed by go-timecache's cached wall
// clock reader. This avoids a syscall per operation at the cost of
// sub-millisecond staleness, which is immaterial for TTL/TTI bookkeeping.
type systemClock struct{}

func (systemClock) Now() int64 {
	return timecache.CachedTimeNano()
}

// ManualClock is a test double implementing Clock with an explicit,
// advanceable instant. Safe for concurrent use.
type ManualClock struct {
	nanos atomic.Int64
}

// NewManualClock returns a ManualClock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	c := &ManualClock{}
	c.nanos.Store(start.UnixNano())
	return c
}

// Now returns the clock's current instant.
func (c *ManualClock) Now() int64 {
	return c.nanos.Load()
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.nanos.Add(int64(d))
}

// Set pins the clock to an absolute instant.
func (c *ManualClock) Set(t time.Time) {
	c.nanos.Store(t.UnixNano())
}
