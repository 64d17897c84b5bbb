// initializer.go: single-flight value initialization
//
// Grounded on the teacher's (agilira/balios) GetOrLoad singleflight
// pattern in loading.go: a per-cache inflight map, a broadcast-by-closing
// done channel so N waiters never spawn N goroutines, and panic recovery
// around the user-supplied evaluator. Generalized from balios' per-cache
// sync.Map keyed by string to a WaitMap keyed by the precomputed key hash,
// and from interface{} results to a typed waiter[V].
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"sync"
	"sync/atomic"
)

// waiter is the rendezvous point for every concurrent caller racing to
// initialize the same missing key (spec §4.7).
type waiter[V any] struct {
	done chan struct{} // closed once the evaluator returns
	val  atomic.Pointer[V]
	err  atomic.Pointer[error]
}

// valueInitializer coordinates single-flight evaluation of a per-key
// initializer function, backed by a WaitMap (sync.Map keyed by key hash).
// An in-flight initializer is never visible in the main entry table: step
// 2 of spec §4.7 keeps it exclusively in this side map.
type valueInitializer[K comparable, V any] struct {
	waitMap sync.Map // uint64 -> *waiter[V]
}

func newValueInitializer[K comparable, V any]() *valueInitializer[K, V] {
	return &valueInitializer[K, V]{}
}

// initOrRead implements spec §4.7's init_or_read for the infallible path:
// it is GetOrTryInsertWith with an init that never fails.
func (vi *valueInitializer[K, V]) initOrRead(
	c *core[K, V], key K, hash uint64, init func() V,
) V {
	v, _ := vi.initOrTryRead(c, key, hash, func() (V, error) { return init(), nil })
	return v
}

// initOrTryRead implements spec §4.7 exactly:
//  1. fast path: Get(key); hit -> ReadExisting.
//  2. try to install a fresh waiter; if one exists, wait on its latch and
//     re-read; loop if the previous attempt failed.
//  3. if we installed the waiter, evaluate init(); store the cache entry
//     and the shared result on success, the shared error on failure; wake
//     all waiters; remove the waiter entry.
func (vi *valueInitializer[K, V]) initOrTryRead(
	c *core[K, V], key K, hash uint64, init func() (V, error),
) (V, error) {
	for {
		if v, ok := c.Get(key); ok {
			return v, nil
		}

		w := &waiter[V]{done: make(chan struct{})}
		actual, loaded := vi.waitMap.LoadOrStore(hash, w)
		flight := actual.(*waiter[V])

		if loaded {
			<-flight.done
			if v, ok := c.Get(key); ok {
				return v, nil
			}
			errPtr := flight.err.Load()
			if errPtr != nil && *errPtr != nil {
				// Propagate the same failure to every waiter of that
				// epoch; the next call makes a fresh attempt once the
				// failed waiter has been removed from the wait map.
				var zero V
				return zero, *errPtr
			}
			// Entry vanished (e.g. raced with an Invalidate) and the
			// flight we saw neither stored a value nor an error: retry.
			continue
		}

		val, evalErr := vi.evaluate(init)

		if evalErr == nil {
			c.Set(key, val)
			w.val.Store(&val)
		} else {
			// A panicking init already carries its own ErrCodePanicRecovered
			// kind from evaluate's recover; anything else is the caller's
			// raw error and must be wrapped as the documented InitFailure
			// kind (spec §7) so IsInitFailure/GetErrorCode see it as such.
			if GetErrorCode(evalErr) != ErrCodePanicRecovered {
				evalErr = NewErrInitFailure(evalErr)
			}
			w.err.Store(&evalErr)
		}

		close(w.done)
		vi.waitMap.Delete(hash)

		return val, evalErr
	}
}

func (vi *valueInitializer[K, V]) evaluate(init func() (V, error)) (val V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewErrPanicRecovered("GetOrTryInsertWith", r)
		}
	}()
	return init()
}
