// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// region is an area in tile-local pixel coordinates, where a full tile spans
// [0, tileSize) on both axes.
type region struct {
	x0, y0, w, h float64
}

// child returns the area that r (expressed for a tile at col, row) covers in
// that tile's parent. step is the distance between tile origins.
func (r region) child(col, row int, step float64) region {
	r.x0 /= 2
	r.y0 /= 2
	r.w /= 2
	r.h /= 2
	if col%2 == 1 {
		r.x0 += step / 2
	}
	if row%2 == 1 {
		r.y0 += step / 2
	}
	return r
}

// crop scales the area r of src into a size x size image. scale converts
// tile-local coordinates to src pixels. Areas that extend past src are clipped
// and the matching part of the output left transparent. It returns nil when r
// does not overlap src at all.
func crop(src image.Image, scale float64, r region, size int) (*image.RGBA, image.Rectangle) {
	b := src.Bounds()
	want := image.Rect(
		int(math.Floor(r.x0*scale)),
		int(math.Floor(r.y0*scale)),
		int(math.Ceil((r.x0+r.w)*scale)),
		int(math.Ceil((r.y0+r.h)*scale)),
	).Add(b.Min)
	if want.Dx() < 1 {
		want.Max.X = want.Min.X + 1
	}
	if want.Dy() < 1 {
		want.Max.Y = want.Min.Y + 1
	}
	sr := want.Intersect(b)
	if sr.Empty() {
		return nil, image.Rectangle{}
	}

	fx := float64(size) / float64(want.Dx())
	fy := float64(size) / float64(want.Dy())
	dr := image.Rect(
		int(math.Round(float64(sr.Min.X-want.Min.X)*fx)),
		int(math.Round(float64(sr.Min.Y-want.Min.Y)*fy)),
		int(math.Round(float64(sr.Max.X-want.Min.X)*fx)),
		int(math.Round(float64(sr.Max.Y-want.Min.Y)*fy)),
	)
	if dr.Empty() {
		dr.Max = dr.Min.Add(image.Pt(1, 1))
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(dst, dr, src, sr, draw.Src, nil)
	return dst, sr
}

// transparent returns the built-in 1x1 placeholder image.
func transparent() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}
