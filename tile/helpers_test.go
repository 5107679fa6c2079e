// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeLoader records Load calls and completes them only when told to.
type fakeLoader struct {
	calls   []string
	pending map[string][]func(image.Image, error)
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{pending: make(map[string][]func(image.Image, error))}
}

func (l *fakeLoader) Load(url string, done func(image.Image, error)) {
	l.calls = append(l.calls, url)
	l.pending[url] = append(l.pending[url], done)
}

func (l *fakeLoader) count(url string) int {
	n := 0
	for _, c := range l.calls {
		if c == url {
			n++
		}
	}
	return n
}

// finish completes every outstanding load of url.
func (l *fakeLoader) finish(t *testing.T, url string, img image.Image, err error) {
	t.Helper()
	ds := l.pending[url]
	if len(ds) == 0 {
		t.Fatalf("no pending load for %s", url)
	}
	delete(l.pending, url)
	for _, d := range ds {
		d(img, err)
	}
}

// fakeUploader hands out integer handles and tracks which are live.
type fakeUploader struct {
	next     int
	live     map[int]bool
	released []int
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{live: make(map[int]bool)}
}

func (u *fakeUploader) Upload(img image.Image) (any, error) {
	if img.Bounds().Empty() {
		return nil, errors.New("fake: invalid image dimensions")
	}
	u.next++
	u.live[u.next] = true
	return u.next, nil
}

func (u *fakeUploader) Release(h any) {
	id := h.(int)
	if !u.live[id] {
		panic("fake: release of unknown texture")
	}
	delete(u.live, id)
	u.released = append(u.released, id)
}

func testParams() bigtile.Parameters {
	p := bigtile.DefaultParameters()
	p.Width = 4096
	p.Height = 4096
	p.TileSize = 256
	p.PosterSize = 512
	p.BasePath = "tiles"
	p.Suffix = ".png"
	return p
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type imageFixture struct {
	cache    *ImageCache
	loader   *fakeLoader
	sched    *eventloop.Manual
	src      FolderSource
	notified int
}

func newImageFixture(t *testing.T, p bigtile.Parameters) *imageFixture {
	t.Helper()
	f := &imageFixture{
		loader: newFakeLoader(),
		sched:  eventloop.NewManual(epoch),
		src:    NewFolderSource(p),
	}
	c, err := NewImageCache(p, f.src, f.loader, f.sched, func() { f.notified++ })
	if err != nil {
		t.Fatalf("NewImageCache: %v", err)
	}
	f.cache = c
	return f
}

func (f *imageFixture) url(col, row, zoom int) string {
	return f.src.TileURL(Key{Col: col, Row: row, Zoom: zoom})
}
