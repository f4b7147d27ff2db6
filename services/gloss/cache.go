// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gloss

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a process-lifetime symbol→gloss cache for the ad-hoc lookup
// path. It is memory-only: nothing survives a restart, and the fill
// pipeline never consults it.
//
// Concurrent lookups for the same uncached symbol are collapsed into a
// single index query via singleflight.
//
// Thread Safety: Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]GlossEntry
	group   singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]GlossEntry)}
}

// Resolve returns the cached entry for symbol, or runs fetch exactly once
// per in-flight symbol and caches its result. Entries whose query channel
// failed are returned but never cached, so the next lookup retries.
func (c *Cache) Resolve(ctx context.Context, symbol string, fetch func(ctx context.Context) GlossEntry) GlossEntry {
	c.mu.RLock()
	entry, ok := c.entries[symbol]
	c.mu.RUnlock()
	recordCacheResult(ok)
	if ok {
		return entry
	}

	v, _, _ := c.group.Do(symbol, func() (interface{}, error) {
		entry := fetch(ctx)
		if entry.Err == nil {
			c.mu.Lock()
			c.entries[symbol] = entry
			c.mu.Unlock()
		}
		return entry, nil
	})
	return v.(GlossEntry)
}

// Len returns the number of cached symbols.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate drops one symbol, e.g. after its single-kanji note changed.
func (c *Cache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, symbol)
}

// Clear drops every cached symbol.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]GlossEntry)
}
