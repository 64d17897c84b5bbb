// hotreload.go: dynamic TTL/TTI reconfiguration via Argus
//
// Adapted from the teacher's (agilira/balios) hot-reload.go: an Argus
// file watcher drives a callback that updates runtime-tunable parameters
// without reconstructing the cache. strata exposes TTL and TTI as the
// dynamically adjustable knobs (spec §4.4); max_capacity and hashing
// still require a fresh cache, same limitation the teacher documents for
// MaxSize.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotReloadOptions configures dynamic TTL/TTI reload for a running cache.
type HotReloadOptions struct {
	// ConfigPath is the path to the configuration file to watch. Argus
	// supports JSON, YAML, TOML, HCL, INI, and Properties.
	ConfigPath string

	// PollInterval is how often to check for changes. Default 1s, floor
	// 100ms.
	PollInterval time.Duration

	// OnReload is called after a successful reload with the old and new
	// TTL/TTI values. Optional; must be fast and non-blocking.
	OnReload func(oldTTL, newTTL time.Duration, oldTTI, newTTI time.Duration)

	Logger Logger
}

// HotReload watches a configuration file and applies TTL/TTI changes to
// a running core cache in place, via the same atomic fields Get and Set
// already read on every call.
type HotReload[K comparable, V any] struct {
	cache   *core[K, V]
	watcher *argus.Watcher
	mu      sync.Mutex
	logger  Logger

	onReload func(oldTTL, newTTL, oldTTI, newTTI time.Duration)
}

// NewHotReload starts watching opts.ConfigPath and applying TTL/TTI
// changes to cache. cache must have been built with New (not
// NewSegmented): segment-wide hot reload is not supported because each
// segment owns an independent TTL/TTI pair.
func NewHotReload[K comparable, V any](cache Cache[K, V], opts HotReloadOptions) (*HotReload[K, V], error) {
	c, ok := cache.(*core[K, V])
	if !ok {
		return nil, NewErrInvalidConfig("hot reload requires a non-segmented cache built with New")
	}
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = c.logger
	}

	hr := &HotReload[K, V]{cache: c, logger: opts.Logger, onReload: opts.OnReload}

	watcher, err := argus.UniversalConfigWatcherWithConfig(
		opts.ConfigPath, hr.handleConfigChange, argus.Config{PollInterval: opts.PollInterval},
	)
	if err != nil {
		return nil, err
	}
	hr.watcher = watcher
	return hr, nil
}

// Start begins watching, if not already running.
func (hr *HotReload[K, V]) Start() error {
	if hr.watcher.IsRunning() {
		return nil
	}
	return hr.watcher.Start()
}

// Stop stops watching the configuration file.
func (hr *HotReload[K, V]) Stop() error {
	return hr.watcher.Stop()
}

func (hr *HotReload[K, V]) handleConfigChange(data map[string]interface{}) {
	section, ok := data["cache"].(map[string]interface{})
	if !ok {
		if _, hasTTL := data["ttl"]; hasTTL {
			section = data
		} else {
			return
		}
	}

	hr.mu.Lock()
	defer hr.mu.Unlock()

	oldTTL := time.Duration(hr.cache.ttlNanos.Load())
	oldTTI := time.Duration(hr.cache.ttiNanos.Load())
	newTTL, newTTI := oldTTL, oldTTI

	if d, ok := parseDuration(section["ttl"]); ok {
		newTTL = d
		hr.cache.ttlNanos.Store(int64(d))
		hr.cache.ttlEnabled.Store(d > 0)
	}
	if d, ok := parseDuration(section["tti"]); ok {
		newTTI = d
		hr.cache.ttiNanos.Store(int64(d))
		hr.cache.ttiEnabled.Store(d > 0)
	}

	hr.logger.Info("strata: hot-reloaded cache configuration", "ttl", newTTL, "tti", newTTI)

	if hr.onReload != nil {
		hr.onReload(oldTTL, newTTL, oldTTI, newTTI)
	}
}

func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d, true
		}
	}
	return 0, false
}
