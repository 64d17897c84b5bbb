// cache.go: core cache implementation
//
// Wires the entry table, frequency sketch, admission/expiration deques,
// read/write buffers, predicate registry, and single-flight initializer
// into the Cache[K,V] surface. Grounded on the teacher's (agilira/balios)
// cache_generic.go top-level orchestration, generalized from a single
// string-keyed wtinyLFUCache to core[K,V].
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"sync/atomic"
	"time"
)

type cacheStats struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	sets          atomic.Uint64
	evictions     atomic.Uint64
	expirations   atomic.Uint64
	invalidations atomic.Uint64
}

// core is the single-segment cache engine. Segmented caches (segment.go)
// hold an array of these and route by hash modulo the segment count.
type core[K comparable, V any] struct {
	table  *entryTable[K, V]
	sketch *frequencySketch

	window    *accessDeque[K, V]
	probation *accessDeque[K, V]
	protected *accessDeque[K, V]

	windowCapacity    int
	protectedCapacity int
	maxCapacity       int

	ttlEnabled atomic.Bool
	ttlNanos   atomic.Int64
	ttlDeque   *expiryDeque[K, V]

	ttiEnabled atomic.Bool
	ttiNanos   atomic.Int64
	ttiDeque   *expiryDeque[K, V]

	reads       *readBuffer[K, V]
	writes      *writeBuffer[K, V]
	predicates  *predicateRegistry[K, V]
	initializer *valueInitializer[K, V]

	invalidatedBefore atomic.Int64

	hasher  Hasher[K]
	clock   Clock
	logger  Logger
	metrics MetricsCollector

	housekeeping atomic.Bool
	closed       atomic.Bool

	stats cacheStats
}

// New constructs a single-segment Cache[K,V] bounded at maxCapacity
// entries.
func New[K comparable, V any](maxCapacity int, opts ...Option[K, V]) Cache[K, V] {
	if maxCapacity <= 0 {
		maxCapacity = defaultInitialCapacity
	}
	cfg := defaultConfig[K, V]()
	for _, opt := range opts {
		opt(cfg)
	}
	return newCore[K, V](maxCapacity, cfg)
}

func newCore[K comparable, V any](maxCapacity int, cfg *config[K, V]) *core[K, V] {
	windowCapacity := int(float64(maxCapacity) * windowRatio)
	if windowCapacity < minWindowSize {
		windowCapacity = minWindowSize
	}
	mainSpace := maxCapacity - windowCapacity
	if mainSpace < minWindowSize {
		mainSpace = minWindowSize
	}
	protectedCapacity := int(float64(mainSpace) * protectedRatio)

	// The table never resizes (spec §3), so it must be tied to the
	// configured bound the way the teacher ties its own table to
	// config.MaxSize, not to a capacity-unrelated default: otherwise a
	// large maxCapacity silently saturates a small table long before
	// enforceCapacity ever sees population exceed maxCapacity, and every
	// insert past that point fails. cfg.initialCapacity (defaultInitialCapacity
	// unless WithInitialCapacity sets it) raises the hint above maxCapacity
	// when it is larger, giving small caches extra headroom.
	tableHint := maxCapacity
	if cfg.initialCapacity > tableHint {
		tableHint = cfg.initialCapacity
	}

	c := &core[K, V]{
		table:             newEntryTable[K, V](tableHint),
		sketch:            newFrequencySketch(maxCapacity),
		window:            newAccessDeque[K, V](tierWindow),
		probation:         newAccessDeque[K, V](tierProbation),
		protected:         newAccessDeque[K, V](tierProtected),
		windowCapacity:    windowCapacity,
		protectedCapacity: protectedCapacity,
		maxCapacity:       maxCapacity,
		ttlDeque:          newExpiryDeque[K, V](false),
		ttiDeque:          newExpiryDeque[K, V](true),
		reads:             newReadBuffer[K, V](maxCapacity * readBufferRatio),
		writes:            newWriteBuffer[K, V](maxCapacity),
		predicates:        newPredicateRegistry[K, V](cfg.predicatesEnabled),
		initializer:       newValueInitializer[K, V](),
		hasher:            cfg.hasher,
		clock:             cfg.clock,
		logger:            cfg.logger,
		metrics:           cfg.metrics,
	}
	c.ttlEnabled.Store(cfg.ttlEnabled)
	c.ttlNanos.Store(int64(cfg.ttl))
	c.ttiEnabled.Store(cfg.ttiEnabled)
	c.ttiNanos.Store(int64(cfg.tti))
	c.invalidatedBefore.Store(0)
	return c
}

func (c *core[K, V]) Get(key K) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}

	hash := c.hasher(key)
	start := c.clock.Now()

	e := c.table.get(hash, key)
	if e == nil || !c.isLive(e, start) {
		c.stats.misses.Add(1)
		c.metrics.RecordGet(c.clock.Now()-start, false)
		c.maybeTick()
		return zero, false
	}

	e.touch(start)
	c.reads.record(e)

	c.stats.hits.Add(1)
	c.metrics.RecordGet(c.clock.Now()-start, true)
	c.maybeTick()
	return e.loadValue(), true
}

// isLive reports whether e is still visible to Get at instant now: not
// globally invalidated, not TTL/TTI-expired, and not matched by any
// active invalidation predicate (spec §4.1, §4.3, §4.4).
func (c *core[K, V]) isLive(e *Entry[K, V], now int64) bool {
	if e.lastModifiedAt.Load() < c.invalidatedBefore.Load() {
		return false
	}
	if c.ttlEnabled.Load() && now >= e.lastModifiedAt.Load()+c.ttlNanos.Load() {
		return false
	}
	if c.ttiEnabled.Load() && now >= e.lastAccessedAt.Load()+c.ttiNanos.Load() {
		return false
	}
	if c.predicates.matchesAny(e.key, e.loadValue(), e.lastModifiedAt.Load()) {
		return false
	}
	return true
}

func (c *core[K, V]) Set(key K, value V) {
	if c.closed.Load() {
		return
	}

	hash := c.hasher(key)
	now := c.clock.Now()
	c.sketch.increment(hash)

	if existing := c.table.get(hash, key); existing != nil {
		existing.storeValue(value, now)
		existing.touch(now)
		c.postWrite(writeOp[K, V]{kind: opUpdate, entry: existing})
	} else {
		e := newEntry[K, V](key, hash, value, now)
		inserted := false
		var racedPrior *Entry[K, V]
		for attempt := 0; attempt < 8; attempt++ {
			if p, ok := c.table.put(hash, key, e); ok {
				inserted = true
				racedPrior = p
				break
			}
			c.Sync()
		}
		if !inserted {
			c.logger.Warn("strata: entry table saturated, dropping insert", "key", keyToString(key))
			return
		}
		// table.put found and replaced a same-key entry a concurrent Set
		// raced into existence between our table.get miss and this put:
		// e is unlinked (never admitted), so it must go through admission
		// as a fresh entry; the superseded racedPrior is unreachable via
		// the table now and must be unlinked from whatever deque it was
		// already resident in.
		if racedPrior != nil {
			c.postWrite(writeOp[K, V]{kind: opRemove, entry: racedPrior})
		}
		c.postWrite(writeOp[K, V]{kind: opInsert, entry: e})
	}

	c.stats.sets.Add(1)
	c.metrics.RecordSet(c.clock.Now() - now)
	c.maybeTick()
}

// postWriteMaxBackoff caps postWrite's micro-sleep doubling so a
// persistently saturated write buffer degrades to a steady retry cadence
// instead of stalling the caller for longer and longer.
const postWriteMaxBackoff = 500 * time.Microsecond

// postWrite posts op to the write buffer, reliably: writes carry ownership
// transfer of the entry's policy state and must never be silently dropped
// (spec §4.5). It runs a tick to relieve backpressure if the buffer is
// momentarily full, then busy-waits with a capped exponential micro-sleep
// back-off (spec "tens of microseconds") until the post succeeds.
func (c *core[K, V]) postWrite(op writeOp[K, V]) {
	if c.writes.tryPost(op) {
		return
	}
	c.tick()
	if c.writes.tryPost(op) {
		return
	}

	backoff := 10 * time.Microsecond
	for {
		c.Sync()
		if c.writes.tryPost(op) {
			return
		}
		time.Sleep(backoff)
		backoff *= 2
		if backoff > postWriteMaxBackoff {
			backoff = postWriteMaxBackoff
		}
	}
}

func (c *core[K, V]) Invalidate(key K) {
	if c.closed.Load() {
		return
	}
	hash := c.hasher(key)
	if e := c.table.remove(hash, key); e != nil {
		c.postWrite(writeOp[K, V]{kind: opRemove, entry: e})
		c.stats.invalidations.Add(1)
	}
	c.maybeTick()
}

func (c *core[K, V]) InvalidateAll() {
	c.invalidatedBefore.Store(c.clock.Now())
}

func (c *core[K, V]) InvalidateEntriesIf(pred func(K, V) bool) (PredicateID, error) {
	return c.predicates.register(pred, c.clock.Now())
}

func (c *core[K, V]) GetOrInsertWith(key K, init func() V) V {
	hash := c.hasher(key)
	return c.initializer.initOrRead(c, key, hash, init)
}

func (c *core[K, V]) GetOrTryInsertWith(key K, init func() (V, error)) (V, error) {
	hash := c.hasher(key)
	return c.initializer.initOrTryRead(c, key, hash, init)
}

func (c *core[K, V]) MaxCapacity() int { return c.maxCapacity }

func (c *core[K, V]) TimeToLive() (time.Duration, bool) {
	return time.Duration(c.ttlNanos.Load()), c.ttlEnabled.Load()
}

func (c *core[K, V]) TimeToIdle() (time.Duration, bool) {
	return time.Duration(c.ttiNanos.Load()), c.ttiEnabled.Load()
}

func (c *core[K, V]) NumSegments() int { return 1 }

func (c *core[K, V]) Stats() Stats {
	return Stats{
		Hits:          c.stats.hits.Load(),
		Misses:        c.stats.misses.Load(),
		Sets:          c.stats.sets.Load(),
		Evictions:     c.stats.evictions.Load(),
		Expirations:   c.stats.expirations.Load(),
		Invalidations: c.stats.invalidations.Load(),
		Size:          c.table.population(),
		Capacity:      c.maxCapacity,
	}
}

func (c *core[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}
