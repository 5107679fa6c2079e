// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package planar

import "math"

// View is a camera over the full-resolution image.
type View struct {
	// X and Y are the image point shown at the viewport center, in
	// full-resolution pixels.
	X, Y float64

	// Zoom is the log2 magnification: 0 shows the image at 1:1, -1 at half
	// size, 1 at double size.
	Zoom float64
}

// Layout places a grid of tiles over the viewport.
type Layout struct {
	// Zoom is the pyramid level the tiles are taken from.
	Zoom int

	// TX0 and TY0 are the tile indices shown in the top-left slot.
	TX0, TY0 int

	// X0 and Y0 are the screen position of the top-left slot. They are
	// negative when the grid starts left of or above the viewport.
	X0, Y0 float64

	// Size is the on-screen edge length of one tile and Stride the distance
	// between neighboring slots.
	Size, Stride int

	// Cols and Rows are the grid dimensions.
	Cols, Rows int

	// Margin is the number of tiles laid out beyond each viewport edge.
	Margin int

	ViewportW, ViewportH int
	Opacity              float64
}

// TileLevel returns the pyramid level used to display zoom. Magnified views
// use the full-resolution tiles.
func TileLevel(zoom float64) int {
	return int(min(0, math.Ceil(zoom)))
}

// GridSize returns the slot grid needed to cover a viewport of vw x vh pixels
// at any zoom, with margin extra tiles on each side.
func GridSize(tileSize, vw, vh, margin int) (cols, rows int) {
	cols = int(math.Ceil(2*float64(vw)/float64(tileSize))) + 2*margin
	rows = int(math.Ceil(2*float64(vh)/float64(tileSize))) + 2*margin
	return cols, rows
}

// ComputeLayout returns the tile grid that covers a vw x vh viewport
// centered on v. Tiles are taken from level TileLevel(v.Zoom) and scaled by
// the remaining fractional zoom, so a tile is displayed between half and one
// times tileSize pixels wide.
func ComputeLayout(tileSize int, v View, vw, vh, margin int) Layout {
	level := TileLevel(v.Zoom)
	ts := float64(tileSize)

	// Full-resolution pixels covered by one tile at this level.
	tileReal := ts / math.Exp2(float64(level))
	display := ts * math.Exp2(v.Zoom-float64(level))

	leftX := v.X/tileReal - float64(vw)/2/display
	topY := v.Y/tileReal - float64(vh)/2/display

	tileX := math.Floor(leftX)
	tileY := math.Floor(topY)
	offX := math.Round((leftX - tileX) * display)
	offY := math.Round((topY - tileY) * display)

	size := int(math.Ceil(display))
	cols, rows := GridSize(tileSize, vw, vh, margin)

	m := float64(margin)
	return Layout{
		Zoom:      level,
		TX0:       int(tileX) - margin,
		TY0:       int(tileY) - margin,
		X0:        -offX - m*display,
		Y0:        -offY - m*display,
		Size:      size,
		Stride:    size,
		Cols:      cols,
		Rows:      rows,
		Margin:    margin,
		ViewportW: vw,
		ViewportH: vh,
		Opacity:   1,
	}
}
