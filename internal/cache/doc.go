// Package cache provides the eviction bookkeeping shared by the tile caches.
//
// # LRU[K]
//
// An access-order tracker for cache keys. It records which key was used
// least recently so a cache can evict it once it grows past its budget:
//
//	lru := cache.NewLRU[tile.Key]()
//	lru.Access(key)
//	if lru.Len() > max {
//	    oldest, _ := lru.LeastUsed()
//	    lru.Remove(oldest)
//	    delete(entries, oldest)
//	}
//
// All operations are O(1). LRU is not safe for concurrent use; the tile caches
// only touch it from the event loop goroutine.
//
// # Sharded[K, V]
//
// A thread-safe, size-bounded LRU split into ShardCount independently locked
// shards. The loader keeps recently fetched encoded tile bytes in one so that
// a tile evicted from a tile cache can be decoded again without a refetch:
//
//	c := cache.NewSharded[string, []byte](64<<20, cache.StringHasher,
//	    func(b []byte) int { return len(b) })
//	c.Set(url, data)
//	data, ok := c.Get(url)
package cache
