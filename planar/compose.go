// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package planar

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Compose draws the visible slots of layers onto dst, bottom layer first.
// Tiles are scaled to their slot size with bilinear filtering; slots that
// extend past dst are clipped.
func Compose(dst draw.Image, layers ...*TileLayer) {
	for _, l := range layers {
		for i := range l.slots {
			s := &l.slots[i]
			if !s.Visible || s.Tile == nil || s.Tile.Image == nil {
				continue
			}
			var opts *draw.Options
			if s.Opacity < 1 {
				a := uint8(max(0, s.Opacity) * 255)
				opts = &draw.Options{DstMask: image.NewUniform(color.Alpha{A: a})}
			}
			draw.ApproxBiLinear.Scale(dst, s.Rect(), s.Tile.Image, s.Tile.Image.Bounds(), draw.Over, opts)
		}
	}
}

// Compose draws the viewer's layers onto dst as laid out by the last Layout.
func (v *Viewer) Compose(dst draw.Image) {
	Compose(dst, v.layers...)
}
