// Package strata provides a generic, concurrent, admission-filtered
// in-memory cache built on the W-TinyLFU eviction algorithm.
//
// Example usage:
//
//	cache := strata.New[string, User](10_000, strata.WithTTL[string, User](time.Hour))
//
//	cache.Set("user:123", User{ID: 123})
//	user, found := cache.Get("user:123")
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

const (
	// Version of the strata cache library.
	Version = "v0.1.0-dev"

	// DefaultMaxCapacity is the capacity New falls back to when given a
	// non-positive value.
	DefaultMaxCapacity = defaultInitialCapacity

	// DefaultWindowRatio is the fraction of max_capacity reserved for the
	// TinyLFU admission window.
	DefaultWindowRatio = windowRatio
)
