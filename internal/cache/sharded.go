// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of shards. Must be a power of 2.
	ShardCount = 16

	shardMask = ShardCount - 1
)

// Hasher computes the hash used for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of s.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Sharded is a thread-safe LRU cache split into ShardCount independently
// locked shards, each bounded by its own capacity. Values are sized by the
// caller-supplied cost function, so the bound can be in bytes rather than
// entries.
type Sharded[K comparable, V any] struct {
	shards [ShardCount]*shard[K, V]
	hasher Hasher[K]
	cost   func(V) int
	limit  int // per shard

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	order   *LRU[K]
	used    int
}

// ShardedStats is a snapshot of Sharded activity.
type ShardedStats struct {
	Len       int
	Cost      int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewSharded creates a cache holding at most about limit total cost.
// A nil cost counts every entry as 1.
func NewSharded[K comparable, V any](limit int, hasher Hasher[K], cost func(V) int) *Sharded[K, V] {
	if cost == nil {
		cost = func(V) int { return 1 }
	}
	c := &Sharded[K, V]{
		hasher: hasher,
		cost:   cost,
		limit:  max(limit/ShardCount, 1),
	}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{
			entries: make(map[K]V),
			order:   NewLRU[K](),
		}
	}
	return c
}

func (c *Sharded[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get returns the cached value for key and marks it recently used.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	v, ok := s.entries[key]
	if ok {
		s.order.Access(key)
	}
	s.mu.Unlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores value under key, evicting least recently used entries of the
// same shard until it fits. A value costlier than a whole shard is not stored.
func (c *Sharded[K, V]) Set(key K, value V) {
	cost := c.cost(value)
	if cost > c.limit {
		return
	}
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.used -= c.cost(old)
	}
	s.entries[key] = value
	s.order.Access(key)
	s.used += cost

	for s.used > c.limit {
		oldest, ok := s.order.LeastUsed()
		if !ok {
			break
		}
		s.order.Remove(oldest)
		s.used -= c.cost(s.entries[oldest])
		delete(s.entries, oldest)
		c.evictions.Add(1)
	}
}

// Delete removes key and reports whether it was present.
func (c *Sharded[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	if !ok {
		return false
	}
	s.used -= c.cost(v)
	s.order.Remove(key)
	delete(s.entries, key)
	return true
}

// Clear removes all entries.
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		clear(s.entries)
		s.order.Clear()
		s.used = 0
		s.mu.Unlock()
	}
}

// Stats returns current statistics.
func (c *Sharded[K, V]) Stats() ShardedStats {
	st := ShardedStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
	for _, s := range c.shards {
		s.mu.Lock()
		st.Len += len(s.entries)
		st.Cost += s.used
		s.mu.Unlock()
	}
	return st
}
