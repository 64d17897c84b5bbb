// housekeeper.go: policy maintenance — drains buffers, runs admission,
// expiration, and predicate sweeps
//
// Spec §4.6: per tick, in order, drain read buffer -> drain write buffer
// -> expire -> enforce capacity -> apply one predicate batch. At most one
// tick runs at a time (busy flag); concurrent attempts skip rather than
// queue, preserving the single-writer invariant on policy structures
// (spec §5).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

const (
	readBatchSize      = 64
	writeBatchSize     = 64
	predicateBatchSize = 128
	syncMaxRounds      = 64
)

// tick runs one bounded housekeeping pass. Returns true if it actually ran
// (false if another tick was already in progress, in which case the
// caller's operation simply proceeds without maintenance this time).
func (c *core[K, V]) tick() bool {
	if !c.housekeeping.CompareAndSwap(false, true) {
		return false
	}
	defer c.housekeeping.Store(false)

	now := c.clock.Now()

	c.drainReads()
	c.drainWrites(now)
	c.expire(now)
	c.enforceCapacity()
	c.sweepOnePredicateBatch()

	return true
}

// maybeTick runs an opportunistic tick if either buffer is nearing
// capacity (spec §4.6 "piggy-backed (opportunistic)").
func (c *core[K, V]) maybeTick() {
	if c.reads.approxPending() >= readBatchSize || c.writes.isNearlyFull() {
		c.tick()
	}
}

// Sync repeatedly ticks until both buffers are empty or a repeat budget is
// exhausted (spec §4.6 "synchronous drain").
func (c *core[K, V]) Sync() {
	for i := 0; i < syncMaxRounds; i++ {
		c.tick()
		if c.reads.approxPending() == 0 && c.writes.approxPending() == 0 {
			return
		}
	}
}

func (c *core[K, V]) drainReads() {
	var batch []*Entry[K, V]
	batch = c.reads.drainInto(batch, readBatchSize)
	for _, e := range batch {
		c.onAccess(e)
	}
}

func (c *core[K, V]) onAccess(e *Entry[K, V]) {
	c.sketch.increment(e.hash)

	// A read drained before the entry's insert op, or one left over from an
	// entry already evicted or invalidated, updates frequency only.
	if e.accessPrev == nil && e.accessNext == nil &&
		c.window.head != e && c.probation.head != e && c.protected.head != e {
		return
	}

	switch e.tier {
	case tierWindow:
		c.window.moveToTail(e)
	case tierProbation:
		c.probation.moveToTail(e)
		if c.protected.size < c.protectedCapacity {
			c.probation.remove(e)
			c.protected.pushTail(e)
		}
	case tierProtected:
		c.protected.moveToTail(e)
	}
	if c.ttiEnabled.Load() {
		c.ttiDeque.moveToTail(e)
	}
	c.demoteProtectedOverflow()
}

func (c *core[K, V]) demoteProtectedOverflow() {
	for c.protected.size > c.protectedCapacity {
		victim := c.protected.popHead()
		if victim == nil {
			return
		}
		c.probation.pushTail(victim)
	}
}

func (c *core[K, V]) drainWrites(now int64) {
	var batch []writeOp[K, V]
	batch = c.writes.drainInto(batch, writeBatchSize)
	for _, op := range batch {
		switch op.kind {
		case opInsert:
			c.admitNew(op.entry)
		case opUpdate:
			c.onUpdate(op.entry, op.prior)
		case opRemove:
			c.onRemove(op.entry)
		}
	}
}

// admitNew implements the TinyLFU admission test (spec §4.3): append the
// candidate to the window; if the window overflows, the window's LRU is
// the candidate for promotion. While main space (probation + protected)
// has room the candidate is admitted directly; once it is full, the
// probation's LRU is the victim the candidate must out-frequency.
func (c *core[K, V]) admitNew(e *Entry[K, V]) {
	c.window.pushTail(e)
	if c.ttlEnabled.Load() {
		c.ttlDeque.pushTail(e)
	}
	if c.ttiEnabled.Load() {
		c.ttiDeque.pushTail(e)
	}

	for c.window.size > c.windowCapacity {
		candidate := c.window.popHead()
		if candidate == nil {
			break
		}
		c.tryAdmit(candidate)
	}
}

func (c *core[K, V]) tryAdmit(candidate *Entry[K, V]) {
	victim := c.probation.head
	if victim == nil || c.probation.size+c.protected.size < c.maxCapacity-c.windowCapacity {
		candidate.admitted.Store(true)
		c.probation.pushTail(candidate)
		return
	}
	if victim == candidate {
		c.evictEntry(candidate)
		return
	}

	candidateFreq := c.sketch.estimate(candidate.hash)
	victimFreq := c.sketch.estimate(victim.hash)

	if candidateFreq > victimFreq {
		c.probation.remove(victim)
		c.evictEntry(victim)
		candidate.admitted.Store(true)
		c.probation.pushTail(candidate)
	} else {
		c.evictEntry(candidate)
	}
}

func (c *core[K, V]) onUpdate(e, prior *Entry[K, V]) {
	if prior != nil && prior != e {
		c.unlinkFromAllDeques(prior)
	}
	if c.ttlEnabled.Load() {
		c.ttlDeque.moveToTail(e)
	}
	c.onAccess(e)
}

func (c *core[K, V]) onRemove(e *Entry[K, V]) {
	c.unlinkFromAllDeques(e)
}

func (c *core[K, V]) unlinkFromAllDeques(e *Entry[K, V]) {
	switch e.tier {
	case tierWindow:
		c.window.remove(e)
	case tierProbation:
		c.probation.remove(e)
	case tierProtected:
		c.protected.remove(e)
	}
	if c.ttlEnabled.Load() {
		c.ttlDeque.remove(e)
	}
	if c.ttiEnabled.Load() {
		c.ttiDeque.remove(e)
	}
}

// expire reaps entries whose TTL or TTI has elapsed, walking from the
// head of each expiration deque (spec §4.4).
func (c *core[K, V]) expire(now int64) {
	if c.ttlEnabled.Load() {
		for {
			head := c.ttlDeque.peekHead()
			if head == nil || now < head.lastModifiedAt.Load()+c.ttlNanos.Load() {
				break
			}
			c.reapExpired(head)
		}
	}
	if c.ttiEnabled.Load() {
		for {
			head := c.ttiDeque.peekHead()
			if head == nil || now < head.lastAccessedAt.Load()+c.ttiNanos.Load() {
				break
			}
			c.reapExpired(head)
		}
	}
}

func (c *core[K, V]) reapExpired(e *Entry[K, V]) {
	if c.table.removeExact(e.hash, e.key, e) {
		c.stats.expirations.Add(1)
		c.metrics.RecordExpiration()
	}
	c.unlinkFromAllDeques(e)
}

// enforceCapacity restores population <= maxCapacity at quiescence (spec
// §3's invariant): while the table's population still exceeds capacity
// after admission has run, it evicts the head (LRU end) of the probation
// deque, or of the protected deque once probation is empty. Window
// entries are not evicted here.
func (c *core[K, V]) enforceCapacity() {
	for c.table.population() > c.maxCapacity {
		victim := c.probation.head
		if victim == nil {
			victim = c.protected.head
		}
		if victim == nil {
			return
		}
		c.evictEntry(victim)
	}
}

func (c *core[K, V]) evictEntry(e *Entry[K, V]) {
	if c.table.removeExact(e.hash, e.key, e) {
		c.stats.evictions.Add(1)
		c.metrics.RecordEviction()
	}
	c.unlinkFromAllDeques(e)
}

// sweepOnePredicateBatch walks unvisited entries for each active
// predicate, up to predicateBatchSize entries total, and retires any
// predicate whose scan has covered every entry reachable from the main
// deques (spec §4.6, §3 "Lives until the housekeeper has walked every
// such entry").
func (c *core[K, V]) sweepOnePredicateBatch() {
	records := c.predicates.snapshot()
	if len(records) == 0 {
		return
	}

	budget := predicateBatchSize
	for _, rec := range records {
		if budget <= 0 {
			return
		}
		done := c.sweepPredicate(rec, &budget)
		if done {
			c.predicates.retire(rec.id)
		}
	}
}

// sweepPredicate walks entries across all three access tiers looking for
// ones older than the predicate's registration and matching its function,
// evicting matches. Each tier resumes from rec.cursor, re-validated against
// the table so a cursor left dangling by an eviction or a tier promotion
// since the last batch falls back to restarting that tier's scan. Returns
// true once every tier has been walked to its end.
func (c *core[K, V]) sweepPredicate(rec *predicateRecord[K, V], budget *int) bool {
	tiers := [3]*accessDeque[K, V]{c.window, c.probation, c.protected}
	allDone := true
	for i, d := range tiers {
		if rec.tierDone[i] {
			continue
		}

		e := rec.cursor[i]
		if e == nil || e.tier != d.tier || c.table.get(e.hash, e.key) != e {
			e = d.head
		}

		for e != nil && *budget > 0 {
			next := e.accessNext
			if e.lastModifiedAt.Load() < rec.registeredAt && safePredicate(rec.fn, e.key, e.loadValue()) {
				c.evictEntry(e)
				c.stats.invalidations.Add(1)
			}
			*budget--
			e = next
		}

		if e == nil {
			rec.tierDone[i] = true
		} else {
			rec.cursor[i] = e
			allDone = false
		}
	}
	return allDone
}
