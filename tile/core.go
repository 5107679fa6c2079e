// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"errors"
	"image"
	"math"
	"time"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
)

// NotifyInterval is the minimum time between two onLoaded notifications
// while other requests are still in flight.
const NotifyInterval = 50 * time.Millisecond

var errNilImage = errors.New("tile: loader returned no image")

// Tile is one cached or synthesized tile image.
type Tile struct {
	Key   Key
	Kind  Kind
	Image image.Image

	// From is the key the pixels were cut from for Partial tiles, and
	// Source the rectangle of that image that was used. FromPoster is set
	// when the poster served as the source.
	From       Key
	Source     image.Rectangle
	FromPoster bool
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Entries   int // decoded images held
	Textures  int // GPU textures held
	InFlight  int // outstanding requests
	Failed    int // keys currently in backoff or given up
	Requests  int // requests issued to the loader
	Loads     int // successful loads
	Failures  int // failed loads
	Evictions int // entries removed by Purge
}

// failure records the retry state of a key whose load failed.
type failure struct {
	count int
	next  time.Time
}

// core holds the request, retry and synthesis machinery shared by
// ImageCache and TextureCache.
type core struct {
	params   bigtile.Parameters
	src      Source
	loader   Loader
	sched    eventloop.Scheduler
	onLoaded func()

	// store receives every successfully loaded tile image.
	store func(Key, image.Image)
	// purge runs before each onLoaded notification.
	purge func()

	tileSize    float64
	step        float64
	partialSize int
	posterZoom  float64
	posterScale float64

	poster image.Image
	empty  image.Image

	pending      inflight
	failures     map[Key]*failure
	lastNotify   time.Time
	notifyQueued bool

	maxTileX, maxTileY int
	boundsSet          bool

	stats Stats
}

func (c *core) init(p bigtile.Parameters, src Source, ld Loader, sched eventloop.Scheduler, onLoaded func(), step, partialSize int) {
	c.params = p
	c.src = src
	c.loader = ld
	c.sched = sched
	c.onLoaded = onLoaded
	if c.onLoaded == nil {
		c.onLoaded = func() {}
	}
	c.tileSize = float64(p.TileSize)
	c.step = float64(step)
	c.partialSize = max(partialSize, 1)
	c.posterScale = p.PosterScale()
	c.posterZoom = p.PosterZoomLevel()
	c.empty = transparent()
	c.pending = newInflight()
	c.failures = make(map[Key]*failure)
}

// loadPoster starts the poster and empty-image loads.
func (c *core) loadPoster() {
	url := c.src.PosterURL()
	c.loader.Load(url, func(img image.Image, err error) {
		if err != nil {
			bigtile.Logger().Warn("tile: poster load failed", "url", url, "err", err)
			return
		}
		c.poster = img
		bigtile.Logger().Info("tile: poster loaded", "url", url, "bounds", img.Bounds())
		c.onLoaded()
	})

	if c.params.EmptyImage != "" {
		c.loader.Load(c.params.EmptyImage, func(img image.Image, err error) {
			if err != nil {
				bigtile.Logger().Warn("tile: empty image load failed", "url", c.params.EmptyImage, "err", err)
				return
			}
			c.empty = img
		})
	}
}

// SetMaxTiles sets the number of columns and rows at the current zoom level.
// Keys outside [0, mtx) x [0, mty) resolve to the placeholder.
func (c *core) SetMaxTiles(mtx, mty int) {
	c.maxTileX = mtx
	c.maxTileY = mty
	c.boundsSet = true
}

// PosterReady reports whether the poster image has been loaded.
func (c *core) PosterReady() bool {
	return c.poster != nil
}

// outOfBounds reports whether k lies outside the pyramid. Without explicit
// bounds the extent is derived from the image size and zoom level.
func (c *core) outOfBounds(k Key) bool {
	if k.Col < 0 || k.Row < 0 || k.Zoom > 0 {
		return true
	}
	mtx, mty := c.maxTileX, c.maxTileY
	if !c.boundsSet {
		scale := math.Exp2(float64(k.Zoom))
		mtx = int(math.Ceil(float64(c.params.Width) * scale / c.step))
		mty = int(math.Ceil(float64(c.params.Height) * scale / c.step))
	}
	return k.Col >= mtx || k.Row >= mty
}

// Request asks the loader for k unless a request is already outstanding, in
// which case done is queued behind it. done may be nil. Keys whose earlier
// loads failed are only re-requested once their backoff has expired and are
// dropped after the configured number of attempts; done is not called for a
// request that was dropped.
func (c *core) Request(k Key, done func(image.Image, error)) {
	if c.pending.has(k) {
		c.pending.add(k, done)
		return
	}
	if f := c.failures[k]; f != nil {
		if f.count >= c.params.Retry.MaxAttempts || c.sched.Now().Before(f.next) {
			return
		}
	}
	c.pending.add(k, done)
	c.stats.Requests++

	url := c.src.TileURL(k)
	bigtile.Logger().Debug("tile: request", "key", k, "url", url)
	c.loader.Load(url, func(img image.Image, err error) {
		c.complete(k, img, err)
	})
}

func (c *core) complete(k Key, img image.Image, err error) {
	waiters := c.pending.take(k)
	if err == nil && img == nil {
		err = errNilImage
	}

	if err != nil {
		c.fail(k, err)
	} else {
		delete(c.failures, k)
		c.stats.Loads++
		c.store(k, img)
	}

	for _, w := range waiters {
		w(img, err)
	}
	if err != nil {
		return
	}

	now := c.sched.Now()
	if c.pending.len() == 0 || now.Sub(c.lastNotify) > NotifyInterval {
		c.lastNotify = now
		c.notify()
	}
}

// notify queues one Purge and onLoaded call on the scheduler. Loads may
// complete inside a lookup, so neither may run synchronously here.
func (c *core) notify() {
	if c.notifyQueued {
		return
	}
	c.notifyQueued = true
	c.sched.Post(func() {
		c.notifyQueued = false
		c.purge()
		c.onLoaded()
	})
}

func (c *core) fail(k Key, err error) {
	c.stats.Failures++
	f := c.failures[k]
	if f == nil {
		f = &failure{}
		c.failures[k] = f
	}
	f.count++
	if f.count >= c.params.Retry.MaxAttempts {
		bigtile.Logger().Warn("tile: giving up", "key", k, "attempts", f.count, "err", err)
		return
	}
	delay := c.params.Retry.Delay(f.count)
	f.next = c.sched.Now().Add(delay)
	bigtile.Logger().Warn("tile: load failed", "key", k, "attempt", f.count, "retry_in", delay, "err", err)
}

// synthesize builds a partial tile for k from the nearest ancestor that
// lookup can provide, requesting every missing level on the way, or from the
// poster once the ancestors would be coarser than it. It returns nil when
// neither is available, and also when k itself was loaded synchronously by
// its request, in which case the caller finds it in its own store.
func (c *core) synthesize(k Key, lookup func(Key) (*Tile, bool)) *Tile {
	cur := k
	r := region{w: c.tileSize, h: c.tileSize}
	for {
		src, ok := lookup(cur)
		if !ok {
			c.Request(cur, nil)
			src, ok = lookup(cur)
			if ok && cur == k {
				return nil
			}
		}
		if ok {
			scale := 1.0
			if src.Kind != Exact {
				scale = float64(c.partialSize) / c.tileSize
			}
			img, sr := crop(src.Image, scale, r, c.partialSize)
			if img == nil {
				return nil
			}
			return &Tile{Key: k, Kind: Partial, Image: img, From: cur, Source: sr}
		}
		if float64(cur.Zoom) < c.posterZoom {
			break
		}
		r = r.child(cur.Col, cur.Row, c.step)
		cur = cur.Parent()
	}
	return c.fromPoster(k)
}

// fromPoster cuts the area of k out of the poster.
func (c *core) fromPoster(k Key) *Tile {
	if c.poster == nil {
		return nil
	}
	// Size of one tile at zoom k.Zoom, in poster pixels.
	scale := c.posterScale / math.Exp2(float64(k.Zoom))
	r := region{
		x0: float64(k.Col) * c.step,
		y0: float64(k.Row) * c.step,
		w:  c.tileSize,
		h:  c.tileSize,
	}
	img, sr := crop(c.poster, scale, r, c.partialSize)
	if img == nil {
		return nil
	}
	return &Tile{Key: k, Kind: Partial, Image: img, FromPoster: true, Source: sr}
}

func (c *core) placeholder(k Key) *Tile {
	return &Tile{Key: k, Kind: Placeholder, Image: c.empty}
}

func (c *core) snapshot() Stats {
	s := c.stats
	s.InFlight = c.pending.len()
	s.Failed = len(c.failures)
	return s
}
