// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"image"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
	"github.com/gogpu/bigtile/internal/cache"
)

// texturePurgeSteps bounds the evictions per tier done by one TextureCache.Purge.
const texturePurgeSteps = 64

// TextureUploader creates and destroys GPU textures.
type TextureUploader interface {
	// Upload copies img into a new texture and returns its handle.
	Upload(img image.Image) (any, error)

	// Release destroys a texture returned by Upload.
	Release(handle any)
}

// Texture is a GPU texture holding one tile.
type Texture struct {
	Key    Key
	Kind   Kind
	Handle any

	// Width and Height are the texture size in pixels.
	Width, Height int

	// From and Source describe the origin of a Partial texture, as for Tile.
	From       Key
	Source     image.Rectangle
	FromPoster bool
}

// TextureCache serves GPU textures for one panorama face.
//
// It keeps two tiers: textures (bounded by MaxTextureCacheSize) and the
// decoded images they were made from (bounded by MaxImageCacheSize), so a
// texture evicted from the GPU can be recreated without reloading. Each
// texture is an independent copy, so evicting the image behind a texture is
// always safe.
//
// TextureCache must only be used from the event loop.
type TextureCache struct {
	core

	uploader TextureUploader
	maxTex   int
	maxImg   int

	textures map[Key]*Texture
	images   map[Key]*Tile
	texLRU   *cache.LRU[Key]
	imgLRU   *cache.LRU[Key]
	used     map[Key]struct{}

	blank *Texture
}

// NewTextureCache creates a cache for the face described by p and starts
// loading its poster.
func NewTextureCache(p bigtile.Parameters, src Source, ld Loader, up TextureUploader, sched eventloop.Scheduler, onLoaded func()) (*TextureCache, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c := &TextureCache{
		uploader: up,
		maxTex:   p.MaxTextureCacheSize,
		maxImg:   p.MaxImageCacheSize,
		textures: make(map[Key]*Texture),
		images:   make(map[Key]*Tile),
		texLRU:   cache.NewLRU[Key](),
		imgLRU:   cache.NewLRU[Key](),
		used:     make(map[Key]struct{}),
	}
	c.init(p, src, ld, sched, onLoaded, p.TileSize-p.Overlap, p.TileSize/8)
	c.store = c.storeLoaded
	c.purge = c.Purge
	c.loadPoster()
	return c, nil
}

// ResetUsed starts a new render pass.
func (c *TextureCache) ResetUsed() {
	clear(c.used)
}

// GetTexture returns the best available texture for the tile at col, row,
// zoom. The result is never nil.
func (c *TextureCache) GetTexture(col, row, zoom int) *Texture {
	k := Key{Col: col, Row: row, Zoom: zoom}
	if c.outOfBounds(k) {
		return c.placeholderTexture()
	}
	c.used[k] = struct{}{}

	if t, ok := c.textures[k]; ok {
		c.texLRU.Access(k)
		if _, ok := c.images[k]; ok {
			c.imgLRU.Access(k)
		}
		if t.Kind != Exact {
			c.Request(k, nil)
			// A synchronous load replaces, and releases, t.
			cur, ok := c.textures[k]
			if !ok {
				return c.placeholderTexture()
			}
			t = cur
		}
		return t
	}

	if img, ok := c.images[k]; ok {
		c.imgLRU.Access(k)
		if t := c.upload(img); t != nil {
			c.putTexture(k, t)
			return t
		}
		return c.placeholderTexture()
	}

	partial := c.synthesize(k, c.lookup)
	if t, ok := c.textures[k]; ok {
		// Loaded synchronously by the request above.
		c.texLRU.Access(k)
		return t
	}
	if partial == nil {
		return c.placeholderTexture()
	}
	t := c.upload(partial)
	if t == nil {
		return c.placeholderTexture()
	}
	c.putTexture(k, t)
	return t
}

// Purge evicts least recently used textures, then decoded images, while
// either tier is over capacity. Evicted textures are released. Textures
// referenced since the last ResetUsed are kept even over capacity.
func (c *TextureCache) Purge() {
	for i := 0; i < texturePurgeSteps && c.texLRU.Len() > c.maxTex; i++ {
		k, _ := c.texLRU.LeastUsed()
		if _, used := c.used[k]; used {
			break
		}
		c.texLRU.Remove(k)
		c.releaseTexture(k)
		c.stats.Evictions++
	}
	for i := 0; i < texturePurgeSteps && c.imgLRU.Len() > c.maxImg; i++ {
		k, _ := c.imgLRU.LeastUsed()
		c.imgLRU.Remove(k)
		delete(c.images, k)
		c.stats.Evictions++
	}
}

// Close releases every texture held by the cache, the placeholder included.
func (c *TextureCache) Close() {
	for k := range c.textures {
		c.releaseTexture(k)
	}
	c.texLRU.Clear()
	if c.blank != nil && c.blank.Handle != nil {
		c.uploader.Release(c.blank.Handle)
	}
	c.blank = nil
}

// Stats returns a snapshot of cache activity.
func (c *TextureCache) Stats() Stats {
	s := c.snapshot()
	s.Entries = len(c.images)
	s.Textures = len(c.textures)
	return s
}

func (c *TextureCache) lookup(k Key) (*Tile, bool) {
	t, ok := c.images[k]
	return t, ok
}

func (c *TextureCache) upload(t *Tile) *Texture {
	h, err := c.uploader.Upload(t.Image)
	if err != nil {
		bigtile.Logger().Warn("tile: texture upload failed", "key", t.Key, "err", err)
		c.stats.Failures++
		return nil
	}
	b := t.Image.Bounds()
	return &Texture{
		Key:        t.Key,
		Kind:       t.Kind,
		Handle:     h,
		Width:      b.Dx(),
		Height:     b.Dy(),
		From:       t.From,
		Source:     t.Source,
		FromPoster: t.FromPoster,
	}
}

// putTexture stores t under k, releasing any texture it replaces.
func (c *TextureCache) putTexture(k Key, t *Texture) {
	if old, ok := c.textures[k]; ok && old != t {
		c.uploader.Release(old.Handle)
	}
	c.textures[k] = t
	c.texLRU.Access(k)
}

func (c *TextureCache) releaseTexture(k Key) {
	if t, ok := c.textures[k]; ok {
		c.uploader.Release(t.Handle)
		delete(c.textures, k)
	}
}

func (c *TextureCache) storeLoaded(k Key, img image.Image) {
	if _, ok := c.textures[k]; ok {
		c.releaseTexture(k)
		c.texLRU.Remove(k)
	}
	t := &Tile{Key: k, Kind: Exact, Image: img}
	c.images[k] = t
	c.imgLRU.Access(k)
	if tex := c.upload(t); tex != nil {
		c.putTexture(k, tex)
	}
}

// placeholderTexture returns the shared placeholder texture, uploading it on first
// use. If that upload fails a texture with a nil handle is returned.
func (c *TextureCache) placeholderTexture() *Texture {
	if c.blank != nil {
		return c.blank
	}
	img := c.empty
	b := img.Bounds()
	t := &Texture{Kind: Placeholder, Width: b.Dx(), Height: b.Dy()}
	h, err := c.uploader.Upload(img)
	if err != nil {
		bigtile.Logger().Warn("tile: placeholder upload failed", "err", err)
		return t
	}
	t.Handle = h
	c.blank = t
	return t
}
