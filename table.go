// table.go: the hash table collaborator
//
// The specification treats the hash table as an external, black-box
// collaborator: a concurrent mapping from key to entry handle with atomic
// insert/remove/get. It is built here in the open-addressing, CAS-driven
// style the teacher (agilira/balios) uses for its own entry table, but
// generalized to an arbitrary V by swapping a whole *Entry[K,V] pointer
// atomically instead of reproducing the teacher's SeqLock-over-raw-bytes
// trick, which only pays for itself when the stored payload is a string.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import "sync/atomic"

type slotState int32

const (
	slotEmpty slotState = iota
	slotValid
	slotDeleted
	slotPending
)

type tableSlot[K comparable, V any] struct {
	state atomic.Int32
	hash  atomic.Uint64
	entry atomic.Pointer[Entry[K, V]]
}

// entryTable is a fixed-size, power-of-two, open-addressed concurrent map
// from hash(key) to *Entry[K,V]. It never resizes: the cache, not the
// table, owns capacity policy (admission/eviction keep the table's live
// population near max_capacity, per spec §3).
type entryTable[K comparable, V any] struct {
	mask  uint64
	slots []tableSlot[K, V]
	size  atomic.Int64
}

func newEntryTable[K comparable, V any](capacityHint int) *entryTable[K, V] {
	tableSize := nextPowerOf2(capacityHint * 2)
	if tableSize < 16 {
		tableSize = 16
	}
	return &entryTable[K, V]{
		mask:  uint64(tableSize - 1),
		slots: make([]tableSlot[K, V], tableSize),
	}
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// get returns the live entry for (hash, key), or nil if absent.
func (t *entryTable[K, V]) get(hash uint64, key K) *Entry[K, V] {
	start := hash & t.mask
	for i := uint64(0); i <= t.mask; i++ {
		idx := (start + i) & t.mask
		slot := &t.slots[idx]

		switch slotState(slot.state.Load()) {
		case slotEmpty:
			return nil
		case slotPending:
			continue
		case slotValid:
			if slot.hash.Load() == hash {
				if e := slot.entry.Load(); e != nil && e.key == key {
					return e
				}
			}
		case slotDeleted:
			// keep probing past tombstones
		}
	}
	return nil
}

// put installs entry under (hash, key), replacing any prior entry for the
// same key. Returns the prior entry, if any, so the caller can unlink the
// superseded entry from the policy structures (Set posts a Remove
// write-op for it before the new entry's Insert).
func (t *entryTable[K, V]) put(hash uint64, key K, e *Entry[K, V]) (prior *Entry[K, V], ok bool) {
	start := hash & t.mask

	// First pass: look for an existing binding to replace in place.
	for i := uint64(0); i <= t.mask; i++ {
		idx := (start + i) & t.mask
		slot := &t.slots[idx]
		state := slotState(slot.state.Load())
		if state == slotEmpty {
			break
		}
		if state == slotValid && slot.hash.Load() == hash {
			if existing := slot.entry.Load(); existing != nil && existing.key == key {
				if slot.state.CompareAndSwap(int32(slotValid), int32(slotPending)) {
					prior = slot.entry.Load()
					slot.entry.Store(e)
					slot.state.Store(int32(slotValid))
					return prior, true
				}
			}
		}
	}

	// Second pass: claim the first empty or tombstoned slot.
	for i := uint64(0); i <= t.mask; i++ {
		idx := (start + i) & t.mask
		slot := &t.slots[idx]
		state := slotState(slot.state.Load())
		if state == slotEmpty || state == slotDeleted {
			if slot.state.CompareAndSwap(int32(state), int32(slotPending)) {
				slot.hash.Store(hash)
				slot.entry.Store(e)
				slot.state.Store(int32(slotValid))
				if state == slotEmpty || state == slotDeleted {
					t.size.Add(1)
				}
				return nil, true
			}
		}
	}

	return nil, false
}

// remove unlinks the binding for (hash, key), if present, returning it.
func (t *entryTable[K, V]) remove(hash uint64, key K) *Entry[K, V] {
	start := hash & t.mask
	for i := uint64(0); i <= t.mask; i++ {
		idx := (start + i) & t.mask
		slot := &t.slots[idx]
		state := slotState(slot.state.Load())
		if state == slotEmpty {
			return nil
		}
		if state == slotValid && slot.hash.Load() == hash {
			if existing := slot.entry.Load(); existing != nil && existing.key == key {
				if slot.state.CompareAndSwap(int32(slotValid), int32(slotDeleted)) {
					t.size.Add(-1)
					return existing
				}
			}
		}
	}
	return nil
}

// removeExact removes the binding only if it currently points at e,
// guarding against a racing Set() that already replaced the entry by the
// time the housekeeper gets around to evicting/expiring it.
func (t *entryTable[K, V]) removeExact(hash uint64, key K, e *Entry[K, V]) bool {
	start := hash & t.mask
	for i := uint64(0); i <= t.mask; i++ {
		idx := (start + i) & t.mask
		slot := &t.slots[idx]
		state := slotState(slot.state.Load())
		if state == slotEmpty {
			return false
		}
		if state == slotValid && slot.hash.Load() == hash && slot.entry.Load() == e {
			if slot.state.CompareAndSwap(int32(slotValid), int32(slotDeleted)) {
				t.size.Add(-1)
				return true
			}
			return false
		}
	}
	return false
}

func (t *entryTable[K, V]) clear() {
	for i := range t.slots {
		t.slots[i].state.Store(int32(slotEmpty))
		t.slots[i].entry.Store(nil)
		t.slots[i].hash.Store(0)
	}
	t.size.Store(0)
}

func (t *entryTable[K, V]) population() int {
	return int(t.size.Load())
}
