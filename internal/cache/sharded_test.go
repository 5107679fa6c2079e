// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestShardedGetSet(t *testing.T) {
	c := NewSharded[string, []byte](1<<20, StringHasher, func(b []byte) int { return len(b) })

	c.Set("a", []byte("hello"))
	got, ok := c.Get("a")
	if !ok || string(got) != "hello" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}

	c.Set("a", []byte("hi"))
	st := c.Stats()
	if st.Len != 1 || st.Cost != 2 {
		t.Errorf("stats after overwrite = %+v, want len 1 cost 2", st)
	}
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", st.Hits, st.Misses)
	}

	if !c.Delete("a") || c.Delete("a") {
		t.Error("Delete should succeed once")
	}
}

func TestShardedCostBound(t *testing.T) {
	const limit = ShardCount * 100
	c := NewSharded[string, []byte](limit, StringHasher, func(b []byte) int { return len(b) })

	for i := 0; i < 1000; i++ {
		c.Set(strconv.Itoa(i), make([]byte, 30))
	}
	st := c.Stats()
	if st.Cost > limit {
		t.Errorf("total cost %d exceeds limit %d", st.Cost, limit)
	}
	if st.Evictions == 0 {
		t.Error("no evictions recorded")
	}

	// Larger than a shard: never stored.
	c.Set("huge", make([]byte, 101))
	if _, ok := c.Get("huge"); ok {
		t.Error("oversized value was stored")
	}
}

func TestShardedConcurrent(t *testing.T) {
	c := NewSharded[string, int](ShardCount*64, StringHasher, nil)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := strconv.Itoa((g * 500) + i)
				c.Set(k, i)
				c.Get(k)
			}
		}()
	}
	wg.Wait()
	if st := c.Stats(); st.Len > ShardCount*64 {
		t.Errorf("Len = %d exceeds capacity", st.Len)
	}
	c.Clear()
	if st := c.Stats(); st.Len != 0 || st.Cost != 0 {
		t.Errorf("stats after Clear = %+v", st)
	}
}
