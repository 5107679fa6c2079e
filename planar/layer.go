// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package planar

import (
	"image"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/tile"
)

// TileCache is the cache a TileLayer draws from. *tile.ImageCache
// implements it.
type TileCache interface {
	ResetUsed()
	GetTile(col, row, zoom int) *tile.Tile
	SetMaxTiles(mtx, mty int)
}

// Slot is one cell of a TileLayer grid.
type Slot struct {
	// Tile is the image shown in the slot. It is nil for hidden slots.
	Tile *tile.Tile

	// Col and Row are the tile indices after wrapping.
	Col, Row int

	// X and Y are the slot's top-left screen position.
	X, Y float64
	Size int

	Visible bool
	Opacity float64
}

// Rect returns the slot's screen rectangle.
func (s *Slot) Rect() image.Rectangle {
	x, y := int(s.X), int(s.Y)
	return image.Rect(x, y, x+s.Size, y+s.Size)
}

// TileLayer is a row-major grid of tile slots fed by one cache.
type TileLayer struct {
	cache TileCache
	wrapX bool
	wrapY bool

	maxTileX, maxTileY int

	cols, rows int
	slots      []Slot
}

// NewTileLayer creates a layer drawing from c with the wrap settings of p.
func NewTileLayer(c TileCache, p bigtile.Parameters) *TileLayer {
	return &TileLayer{cache: c, wrapX: p.WrapX, wrapY: p.WrapY}
}

// Resize sets the grid dimensions.
func (l *TileLayer) Resize(cols, rows int) {
	l.cols, l.rows = cols, rows
	l.slots = make([]Slot, cols*rows)
}

// SetMaxTiles sets the tile extent at the current level, used both for
// wrapping and by the cache for bounds.
func (l *TileLayer) SetMaxTiles(mtx, mty int) {
	l.maxTileX, l.maxTileY = mtx, mty
	l.cache.SetMaxTiles(mtx, mty)
}

// Layout starts a new render pass on the cache and assigns a tile to every
// slot that falls within the viewport grown by the layout margin. Slots
// outside it are hidden and never reach the cache.
func (l *TileLayer) Layout(lay Layout) {
	if lay.Cols != l.cols || lay.Rows != l.rows {
		l.Resize(lay.Cols, lay.Rows)
	}
	l.cache.ResetUsed()

	mx := float64(lay.Margin * lay.Size)
	minX, minY := -mx, -mx
	maxX, maxY := float64(lay.ViewportW)+mx, float64(lay.ViewportH)+mx

	y := lay.Y0
	for r := 0; r < l.rows; r++ {
		x := lay.X0
		for c := 0; c < l.cols; c++ {
			s := &l.slots[r*l.cols+c]
			*s = Slot{X: x, Y: y, Size: lay.Size, Opacity: lay.Opacity}

			if x+float64(lay.Size) > minX && x < maxX && y+float64(lay.Size) > minY && y < maxY {
				tx, ty := c+lay.TX0, r+lay.TY0
				if l.wrapX {
					tx = wrap(tx, l.maxTileX)
				}
				if l.wrapY {
					ty = wrap(ty, l.maxTileY)
				}
				s.Col, s.Row = tx, ty
				s.Tile = l.cache.GetTile(tx, ty, lay.Zoom)
				s.Visible = true
			}
			x += float64(lay.Stride)
		}
		y += float64(lay.Stride)
	}
}

// Slots returns the grid in row-major order. The slice is reused by the
// next Layout.
func (l *TileLayer) Slots() []Slot {
	return l.slots
}

// Size returns the grid dimensions.
func (l *TileLayer) Size() (cols, rows int) {
	return l.cols, l.rows
}

func wrap(i, n int) int {
	if n <= 0 || (i >= 0 && i < n) {
		return i
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
