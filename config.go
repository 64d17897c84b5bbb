// config.go: functional-option configuration
//
// Grounded on the teacher's (agilira/balios) config.go functional-option
// set (WithTTL/WithMaxCost/...), generalized to the typed Option[K,V] this
// package's generic constructors require.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import "time"

const (
	defaultInitialCapacity = 256
	// windowRatio is the fraction of max_capacity reserved for the TinyLFU
	// admission window (spec §4.3); the remainder splits between
	// probation and protected.
	windowRatio     = 0.01
	protectedRatio  = 0.80
	minWindowSize   = 1
	readBufferRatio = 8 // read buffer capacity = maxCapacity * readBufferRatio
)

type config[K comparable, V any] struct {
	initialCapacity int
	hasher          Hasher[K]
	clock           Clock
	logger          Logger
	metrics         MetricsCollector

	ttl        time.Duration
	ttlEnabled bool
	tti        time.Duration
	ttiEnabled bool

	predicatesEnabled bool
}

func defaultConfig[K comparable, V any]() *config[K, V] {
	return &config[K, V]{
		initialCapacity:   defaultInitialCapacity,
		hasher:            defaultHasher[K](),
		clock:             systemClock{},
		logger:            NoOpLogger{},
		metrics:           NoOpMetricsCollector{},
		predicatesEnabled: true,
	}
}

// Option configures a Cache at construction time.
type Option[K comparable, V any] func(*config[K, V])

// WithTTL expires entries d after their last write, regardless of access.
func WithTTL[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		c.ttl = d
		c.ttlEnabled = d > 0
	}
}

// WithTTI expires entries d after their last access (read or write).
func WithTTI[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		c.tti = d
		c.ttiEnabled = d > 0
	}
}

// WithInitialCapacity raises the entry table's sizing hint above
// maxCapacity when n is larger, giving the table extra headroom to keep
// probe chains short under heavy churn. It never shrinks the table below
// what maxCapacity itself already requires.
func WithInitialCapacity[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) {
		if n > 0 {
			c.initialCapacity = n
		}
	}
}

// WithHasher overrides the default FNV-1a-of-string-form key hash. Use
// this when K is not well served by its string rendering, or when a
// faster domain-specific hash is available.
func WithHasher[K comparable, V any](h Hasher[K]) Option[K, V] {
	return func(c *config[K, V]) {
		if h != nil {
			c.hasher = h
		}
	}
}

// WithInvalidationPredicatesEnabled toggles support for
// InvalidateEntriesIf. When disabled, InvalidateEntriesIf returns an
// ErrCodePredicatesDisabled error and no predicate is ever registered or
// swept. Enabled by default.
func WithInvalidationPredicatesEnabled[K comparable, V any](enabled bool) Option[K, V] {
	return func(c *config[K, V]) {
		c.predicatesEnabled = enabled
	}
}

// WithClock overrides the time source, primarily for tests (ManualClock).
func WithClock[K comparable, V any](clock Clock) Option[K, V] {
	return func(c *config[K, V]) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger[K comparable, V any](l Logger) Option[K, V] {
	return func(c *config[K, V]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetricsCollector overrides the default no-op metrics collector, e.g.
// with the OpenTelemetry-backed one in strata/otel.
func WithMetricsCollector[K comparable, V any](m MetricsCollector) Option[K, V] {
	return func(c *config[K, V]) {
		if m != nil {
			c.metrics = m
		}
	}
}
