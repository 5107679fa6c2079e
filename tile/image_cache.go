// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"image"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
	"github.com/gogpu/bigtile/internal/cache"
)

// imagePurgeSteps bounds the evictions done by one ImageCache.Purge.
const imagePurgeSteps = 4

// ImageCache serves decoded tile images for the planar viewer.
//
// Lookups never block: a missing tile is requested in the background and a
// partial approximation is returned meanwhile. ImageCache must only be used
// from the event loop.
type ImageCache struct {
	core

	maxSize int
	entries map[Key]*Tile
	lru     *cache.LRU[Key]
	used    map[Key]struct{}
}

// NewImageCache creates a cache for the image described by p and starts
// loading its poster. onLoaded is called on the event loop whenever newly
// loaded tiles are worth a redraw.
func NewImageCache(p bigtile.Parameters, src Source, ld Loader, sched eventloop.Scheduler, onLoaded func()) (*ImageCache, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c := &ImageCache{
		maxSize: p.MaxCacheSize,
		entries: make(map[Key]*Tile),
		lru:     cache.NewLRU[Key](),
		used:    make(map[Key]struct{}),
	}
	c.init(p, src, ld, sched, onLoaded, p.TileSize, p.TileSize/4)
	c.store = c.storeLoaded
	c.purge = c.Purge
	c.loadPoster()
	return c, nil
}

// ResetUsed starts a new render pass. It must be called before the first
// GetTile of every pass.
func (c *ImageCache) ResetUsed() {
	clear(c.used)
}

// GetTile returns the best available image for the tile at col, row, zoom.
//
// The result is never nil. Out-of-range keys yield the placeholder. A tile
// that was already handed out during this pass is returned as a new Tile
// backed by a fresh load of the same resource, so that two layout slots never
// share one Tile value.
func (c *ImageCache) GetTile(col, row, zoom int) *Tile {
	k := Key{Col: col, Row: row, Zoom: zoom}
	if c.outOfBounds(k) {
		return c.placeholder(k)
	}

	if t, ok := c.entries[k]; ok {
		c.lru.Access(k)
		if _, used := c.used[k]; used {
			return c.duplicate(t)
		}
		c.used[k] = struct{}{}
		if t.Kind != Exact {
			c.Request(k, nil)
			t = c.entries[k]
		}
		return t
	}

	t := c.synthesize(k, c.lookup)
	if e, ok := c.entries[k]; ok {
		// Loaded synchronously by the request above.
		return e
	}
	if t == nil {
		return c.placeholder(k)
	}
	c.put(k, t)
	return t
}

// duplicate returns a copy of t and reloads its resource into the copy.
func (c *ImageCache) duplicate(t *Tile) *Tile {
	d := *t
	dup := &d
	url := c.src.TileURL(t.Key)
	c.loader.Load(url, func(img image.Image, err error) {
		if err != nil {
			bigtile.Logger().Debug("tile: duplicate load failed", "key", t.Key, "err", err)
			return
		}
		dup.Kind = Exact
		dup.Image = img
		dup.Source = image.Rectangle{}
		dup.FromPoster = false
	})
	return dup
}

// Purge evicts least recently used tiles while the cache is over capacity.
// Each call removes at most a few entries; it is run after every load
// notification.
func (c *ImageCache) Purge() {
	for i := 0; i < imagePurgeSteps && c.lru.Len() > c.maxSize; i++ {
		k, _ := c.lru.LeastUsed()
		c.lru.Remove(k)
		delete(c.entries, k)
		c.stats.Evictions++
		bigtile.Logger().Debug("tile: evict", "key", k)
	}
}

// Len returns the number of cached entries.
func (c *ImageCache) Len() int {
	return len(c.entries)
}

// Stats returns a snapshot of cache activity.
func (c *ImageCache) Stats() Stats {
	s := c.snapshot()
	s.Entries = len(c.entries)
	return s
}

func (c *ImageCache) lookup(k Key) (*Tile, bool) {
	t, ok := c.entries[k]
	return t, ok
}

// put stores t under k. A synthesized tile never replaces an exact one.
func (c *ImageCache) put(k Key, t *Tile) {
	if cur, ok := c.entries[k]; ok && cur.Kind == Exact && t.Kind != Exact {
		c.lru.Access(k)
		return
	}
	c.entries[k] = t
	c.lru.Access(k)
}

func (c *ImageCache) storeLoaded(k Key, img image.Image) {
	c.put(k, &Tile{Key: k, Kind: Exact, Image: img})
}
