// segment.go: horizontal sharding across independent core caches
//
// Grounded on the teacher's (agilira/balios) sharding discussion in
// doc.go and the general segmented-cache idiom also used by
// codeGROOVE-dev/multicache: route by key hash (modulo N) to one of N
// independent engines, each with its own table/sketch/buffers/
// housekeeper, eliminating cross-segment contention entirely.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import "time"

// segmented routes operations to one of numSegments independent core
// engines by key hash. Each segment is a fully self-contained cache: its
// own table, sketch, deques, buffers, and housekeeper busy-flag. There is
// no cross-segment coordination beyond InvalidateAll/InvalidateEntriesIf,
// which fan out to every segment.
type segmented[K comparable, V any] struct {
	segments    []*core[K, V]
	hasher      Hasher[K]
	maxCapacity int
}

// NewSegmented constructs a Cache[K,V] split across numSegments
// independent engines, each sized maxCapacity/numSegments. Panics if
// numSegments is 0: that is a caller configuration error, not a runtime
// condition to recover from.
func NewSegmented[K comparable, V any](maxCapacity, numSegments int, opts ...Option[K, V]) Cache[K, V] {
	if numSegments == 0 {
		panic(NewErrInvalidSegments())
	}
	if maxCapacity <= 0 {
		maxCapacity = defaultInitialCapacity
	}

	cfg := defaultConfig[K, V]()
	for _, opt := range opts {
		opt(cfg)
	}

	perSegment := maxCapacity / numSegments
	if perSegment < minWindowSize {
		perSegment = minWindowSize
	}

	s := &segmented[K, V]{
		segments:    make([]*core[K, V], numSegments),
		hasher:      cfg.hasher,
		maxCapacity: perSegment * numSegments,
	}
	for i := range s.segments {
		s.segments[i] = newCore[K, V](perSegment, cfg)
	}
	return s
}

func (s *segmented[K, V]) segmentFor(key K) *core[K, V] {
	hash := s.hasher(key)
	idx := hash % uint64(len(s.segments))
	return s.segments[idx]
}

func (s *segmented[K, V]) Get(key K) (V, bool) { return s.segmentFor(key).Get(key) }
func (s *segmented[K, V]) Set(key K, value V)  { s.segmentFor(key).Set(key, value) }
func (s *segmented[K, V]) Invalidate(key K)    { s.segmentFor(key).Invalidate(key) }

func (s *segmented[K, V]) InvalidateAll() {
	for _, seg := range s.segments {
		seg.InvalidateAll()
	}
}

// InvalidateEntriesIf registers pred on every segment. The returned
// PredicateID identifies the registration on the first segment only;
// retirement of the predicate on the remaining segments still proceeds
// independently as each segment's housekeeper finishes its own sweep.
func (s *segmented[K, V]) InvalidateEntriesIf(pred func(K, V) bool) (PredicateID, error) {
	var first PredicateID
	for i, seg := range s.segments {
		id, err := seg.InvalidateEntriesIf(pred)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			first = id
		}
	}
	return first, nil
}

func (s *segmented[K, V]) GetOrInsertWith(key K, init func() V) V {
	return s.segmentFor(key).GetOrInsertWith(key, init)
}

func (s *segmented[K, V]) GetOrTryInsertWith(key K, init func() (V, error)) (V, error) {
	return s.segmentFor(key).GetOrTryInsertWith(key, init)
}

func (s *segmented[K, V]) Sync() {
	for _, seg := range s.segments {
		seg.Sync()
	}
}

func (s *segmented[K, V]) MaxCapacity() int { return s.maxCapacity }

func (s *segmented[K, V]) TimeToLive() (time.Duration, bool) {
	return s.segments[0].TimeToLive()
}

func (s *segmented[K, V]) TimeToIdle() (time.Duration, bool) {
	return s.segments[0].TimeToIdle()
}

func (s *segmented[K, V]) NumSegments() int { return len(s.segments) }

func (s *segmented[K, V]) Stats() Stats {
	var total Stats
	for _, seg := range s.segments {
		st := seg.Stats()
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Sets += st.Sets
		total.Evictions += st.Evictions
		total.Expirations += st.Expirations
		total.Invalidations += st.Invalidations
		total.Size += st.Size
		total.Capacity += st.Capacity
	}
	return total
}

func (s *segmented[K, V]) Close() error {
	for _, seg := range s.segments {
		if err := seg.Close(); err != nil {
			return err
		}
	}
	return nil
}
