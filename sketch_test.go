// sketch_test.go: tests for the Count-Min frequency sketch
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import "testing"

func TestFrequencySketch_IncrementIncreasesEstimate(t *testing.T) {
	s := newFrequencySketch(1000)

	before := s.estimate(42)
	s.increment(42)
	after := s.estimate(42)

	if after <= before {
		t.Errorf("expected estimate to increase after increment, before=%d after=%d", before, after)
	}
}

func TestFrequencySketch_SaturatesAtFifteen(t *testing.T) {
	s := newFrequencySketch(1000)

	for i := 0; i < 100; i++ {
		s.increment(7)
	}
	if est := s.estimate(7); est > 15 {
		t.Errorf("expected counter to saturate at 15, got %d", est)
	}
}

func TestFrequencySketch_DistinctKeysDoNotInflateEachOther(t *testing.T) {
	s := newFrequencySketch(1000)

	for i := 0; i < 10; i++ {
		s.increment(1)
	}
	estOther := s.estimate(999999)
	if estOther > 2 {
		t.Errorf("expected an unrelated key's estimate to stay low, got %d", estOther)
	}
}

func TestFrequencySketch_ResetHalves(t *testing.T) {
	s := newFrequencySketch(1000)

	for i := 0; i < 8; i++ {
		s.increment(5)
	}
	before := s.estimate(5)
	s.reset()
	after := s.estimate(5)

	if after > before/2+1 {
		t.Errorf("expected reset to roughly halve counters, before=%d after=%d", before, after)
	}
}
