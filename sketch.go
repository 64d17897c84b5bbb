// sketch.go: Count-Min frequency sketch for TinyLFU admission
//
// Ported algorithm-for-algorithm from the teacher's (agilira/balios)
// frequencySketch: 4-bit saturating counters packed 16-to-a-uint64, four
// golden-ratio multiplicative hash probes, periodic aging by halving.
// Generalized to accept a precomputed uint64 key hash (supplied by the
// cache's Hasher[K]) instead of hashing a string directly.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import "sync/atomic"

type frequencySketch struct {
	table []uint64

	tableMask uint64

	seed1, seed2, seed3, seed4 uint64

	sampleSize int64

	resetThreshold int64
}

func newFrequencySketch(maxCapacity int) *frequencySketch {
	tableSize := nextPowerOf2(maxCapacity / 4)
	if tableSize < 64 {
		tableSize = 64
	}
	return &frequencySketch{
		table:          make([]uint64, tableSize),
		tableMask:      uint64(tableSize - 1),
		seed1:          0x9e3779b97f4a7c15,
		seed2:          0xbf58476d1ce4e5b9,
		seed3:          0x94d049bb133111eb,
		seed4:          0xbf58476d1ce4e5b7,
		resetThreshold: int64(maxCapacity * 10),
	}
}

// increment records one access/write for hash, aging the whole table once
// every resetThreshold increments.
func (s *frequencySketch) increment(hash uint64) {
	if atomic.AddInt64(&s.sampleSize, 1)%s.resetThreshold == 0 {
		s.reset()
	}

	pos1 := s.hash1(hash) & s.tableMask
	pos2 := s.hash2(hash) & s.tableMask
	pos3 := s.hash3(hash) & s.tableMask
	pos4 := s.hash4(hash) & s.tableMask

	sub1 := (hash & 0xF) * 4
	sub2 := ((hash >> 4) & 0xF) * 4
	sub3 := ((hash >> 8) & 0xF) * 4
	sub4 := ((hash >> 12) & 0xF) * 4

	s.incrementCounter(pos1, sub1)
	s.incrementCounter(pos2, sub2)
	s.incrementCounter(pos3, sub3)
	s.incrementCounter(pos4, sub4)
}

func (s *frequencySketch) incrementCounter(tablePos, subPos uint64) {
	mask := uint64(0xF) << subPos
	for {
		old := atomic.LoadUint64(&s.table[tablePos])
		counter := (old >> subPos) & 0xF
		if counter >= 15 {
			return
		}
		newVal := (old &^ mask) | ((counter + 1) << subPos)
		if atomic.CompareAndSwapUint64(&s.table[tablePos], old, newVal) {
			return
		}
	}
}

// estimate returns the Count-Min estimate for hash: the minimum of its
// four probe counters.
func (s *frequencySketch) estimate(hash uint64) uint64 {
	pos1 := s.hash1(hash) & s.tableMask
	pos2 := s.hash2(hash) & s.tableMask
	pos3 := s.hash3(hash) & s.tableMask
	pos4 := s.hash4(hash) & s.tableMask

	sub1 := (hash & 0xF) * 4
	sub2 := ((hash >> 4) & 0xF) * 4
	sub3 := ((hash >> 8) & 0xF) * 4
	sub4 := ((hash >> 12) & 0xF) * 4

	c1 := (atomic.LoadUint64(&s.table[pos1]) >> sub1) & 0xF
	c2 := (atomic.LoadUint64(&s.table[pos2]) >> sub2) & 0xF
	c3 := (atomic.LoadUint64(&s.table[pos3]) >> sub3) & 0xF
	c4 := (atomic.LoadUint64(&s.table[pos4]) >> sub4) & 0xF

	return min4(c1, c2, c3, c4)
}

func (s *frequencySketch) reset() {
	for i := range s.table {
		for {
			old := atomic.LoadUint64(&s.table[i])
			newVal := uint64(0)
			for j := 0; j < 16; j++ {
				shift := uint64(j * 4)
				counter := (old >> shift) & 0xF
				newVal |= (counter >> 1) << shift
			}
			if atomic.CompareAndSwapUint64(&s.table[i], old, newVal) {
				break
			}
		}
	}
}

func (s *frequencySketch) clear() {
	for i := range s.table {
		atomic.StoreUint64(&s.table[i], 0)
	}
	atomic.StoreInt64(&s.sampleSize, 0)
}

func (s *frequencySketch) hash1(key uint64) uint64 { return (key * s.seed1) >> 32 }
func (s *frequencySketch) hash2(key uint64) uint64 { return (key * s.seed2) >> 32 }
func (s *frequencySketch) hash3(key uint64) uint64 { return (key * s.seed3) >> 32 }
func (s *frequencySketch) hash4(key uint64) uint64 { return (key * s.seed4) >> 32 }

func min4(a, b, c, d uint64) uint64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	if d < m {
		m = d
	}
	return m
}
