// Package otel provides OpenTelemetry integration for strata cache metrics.
//
// It implements strata.MetricsCollector using OpenTelemetry instruments,
// giving percentile latency tracking (via histograms) and hit/miss/
// eviction/expiration counters that can be exported to any OTEL-compatible
// backend (Prometheus, Jaeger, DataDog, Grafana, ...).
//
// # Usage
//
//	import (
//	    "github.com/agilira/strata"
//	    strataotel "github.com/agilira/strata/otel"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	provider := metric.NewMeterProvider()
//	collector, _ := strataotel.NewOTelMetricsCollector(provider)
//
//	cache := strata.New[string, string](10_000,
//	    strata.WithMetricsCollector[string, string](collector),
//	)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/agilira/strata"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements strata.MetricsCollector using
// OpenTelemetry. Safe for concurrent use; the underlying OTEL instruments
// are themselves thread-safe.
type OTelMetricsCollector struct {
	getLatency  metric.Int64Histogram
	setLatency  metric.Int64Histogram
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	evictions   metric.Int64Counter
	expirations metric.Int64Counter
}

// Options configures OTelMetricsCollector.
type Options struct {
	// MeterName names the OpenTelemetry meter. Default:
	// "github.com/agilira/strata".
	MeterName string
}

// Option is a functional option for Options.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing
// metrics from multiple cache instances.
func WithMeterName(name string) Option {
	return func(o *Options) { o.MeterName = name }
}

// NewOTelMetricsCollector builds the strata_* instruments on provider's
// default meter (or the one named via WithMeterName).
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/strata"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &OTelMetricsCollector{}

	var err error
	if c.getLatency, err = meter.Int64Histogram(
		"strata_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.setLatency, err = meter.Int64Histogram(
		"strata_set_latency_ns",
		metric.WithDescription("Latency of Set operations in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.hits, err = meter.Int64Counter(
		"strata_get_hits_total",
		metric.WithDescription("Total number of cache hits"),
	); err != nil {
		return nil, err
	}
	if c.misses, err = meter.Int64Counter(
		"strata_get_misses_total",
		metric.WithDescription("Total number of cache misses"),
	); err != nil {
		return nil, err
	}
	if c.evictions, err = meter.Int64Counter(
		"strata_evictions_total",
		metric.WithDescription("Total number of evictions"),
	); err != nil {
		return nil, err
	}
	if c.expirations, err = meter.Int64Counter(
		"strata_expirations_total",
		metric.WithDescription("Total number of TTL/TTI-based expirations"),
	); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *OTelMetricsCollector) RecordGet(latencyNanos int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNanos)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

func (c *OTelMetricsCollector) RecordSet(latencyNanos int64) {
	c.setLatency.Record(context.Background(), latencyNanos)
}

func (c *OTelMetricsCollector) RecordEviction() {
	c.evictions.Add(context.Background(), 1)
}

func (c *OTelMetricsCollector) RecordExpiration() {
	c.expirations.Add(context.Background(), 1)
}

var _ strata.MetricsCollector = (*OTelMetricsCollector)(nil)
