// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package planar

import (
	"math"
	"time"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
)

// flyStep is the interval between FlyTo animation steps.
const flyStep = 20 * time.Millisecond

// Viewer shows a tiled image in a rectangular viewport. It owns the camera
// (center and zoom) and lays out its tile layers whenever the camera moves.
//
// Viewer is used from the event loop only.
type Viewer struct {
	params bigtile.Parameters
	sched  eventloop.Scheduler
	layers []*TileLayer

	x, y, zoom float64
	vw, vh     int

	flight eventloop.Animator
	last   Layout

	// OnLayout, if set, is called after every layout.
	OnLayout func(Layout)
}

// NewViewer creates a viewer for the image described by p with a viewport
// of vw x vh pixels, centered on the image at zoom 0 (clamped to the
// configured range).
func NewViewer(p bigtile.Parameters, sched eventloop.Scheduler, vw, vh int) (*Viewer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	v := &Viewer{params: p, sched: sched, vw: vw, vh: vh}
	v.setPosition(float64(p.Width)/2, float64(p.Height)/2)
	v.setZoom(0)
	return v, nil
}

// AddLayer adds a layer on top of the existing ones.
func (v *Viewer) AddLayer(l *TileLayer) {
	l.Resize(GridSize(v.params.TileSize, v.vw, v.vh, v.params.Margin))
	l.SetMaxTiles(v.maxTiles())
	v.layers = append(v.layers, l)
}

// Layers returns the viewer's layers, bottom first.
func (v *Viewer) Layers() []*TileLayer {
	return v.layers
}

// Resize changes the viewport size and lays out again.
func (v *Viewer) Resize(vw, vh int) {
	v.vw, v.vh = vw, vh
	cols, rows := GridSize(v.params.TileSize, vw, vh, v.params.Margin)
	for _, l := range v.layers {
		l.Resize(cols, rows)
	}
	v.Layout()
}

// Layout lays out every layer for the current camera. It is also the
// natural onLoaded callback for the layers' caches.
func (v *Viewer) Layout() {
	lay := ComputeLayout(v.params.TileSize, v.View(), v.vw, v.vh, v.params.Margin)
	for _, l := range v.layers {
		l.Layout(lay)
	}
	v.last = lay
	if v.OnLayout != nil {
		v.OnLayout(lay)
	}
}

// LastLayout returns the layout computed by the most recent Layout call.
func (v *Viewer) LastLayout() Layout {
	return v.last
}

// View returns the current camera.
func (v *Viewer) View() View {
	return View{X: v.x, Y: v.y, Zoom: v.zoom}
}

// X returns the image x coordinate at the viewport center.
func (v *Viewer) X() float64 { return v.x }

// Y returns the image y coordinate at the viewport center.
func (v *Viewer) Y() float64 { return v.y }

// Zoom returns the current zoom value.
func (v *Viewer) Zoom() float64 { return v.zoom }

// MoveTo stops any flight and jumps to the given center and zoom.
func (v *Viewer) MoveTo(x, y, zoom float64) {
	v.StopFlying()
	v.setPosition(x, y)
	v.setZoom(zoom)
	v.Layout()
}

// SetZoom stops any flight and changes only the zoom.
func (v *Viewer) SetZoom(zoom float64) {
	v.MoveTo(v.x, v.y, zoom)
}

// FlyTo animates the camera toward the target, halving the remaining
// distance every step. A newer FlyTo or MoveTo interrupts it.
func (v *Viewer) FlyTo(x, y, zoom float64) {
	tx := clamp(x, 0, float64(v.params.Width))
	ty := clamp(y, 0, float64(v.params.Height))
	tz := clamp(zoom, v.params.MinZoom, v.params.MaxZoom)

	ctx := v.flight.Start()
	eventloop.Repeat(ctx, v.sched, flyStep, func() bool {
		done := true
		nx, ny, nz := approach(v.x, tx), approach(v.y, ty), approach(v.zoom, tz)
		if math.Abs(v.x-tx) < 1 {
			nx = tx
		} else {
			done = false
		}
		if math.Abs(v.y-ty) < 1 {
			ny = ty
		} else {
			done = false
		}
		if math.Abs(v.zoom-tz) < 0.02 {
			nz = tz
		} else {
			done = false
		}
		v.setPosition(nx, ny)
		v.setZoom(nz)
		v.Layout()
		return !done
	})
}

// StopFlying interrupts the current FlyTo, if any.
func (v *Viewer) StopFlying() {
	v.flight.Stop()
}

// FitZoom returns the zoom at which imageDim full-resolution pixels span
// viewDim screen pixels.
func FitZoom(imageDim float64, viewDim int) float64 {
	return math.Log2(float64(viewDim) / imageDim)
}

// ZoomToFitValue returns the largest zoom at which the whole image is
// visible.
func (v *Viewer) ZoomToFitValue() float64 {
	return min(
		FitZoom(float64(v.params.Width), v.vw),
		FitZoom(float64(v.params.Height), v.vh))
}

// ZoomToFit zooms so the whole image is visible.
func (v *Viewer) ZoomToFit() {
	v.SetZoom(v.ZoomToFitValue())
}

// ZoomToFitWidth zooms so the image width fills the viewport.
func (v *Viewer) ZoomToFitWidth() {
	v.SetZoom(FitZoom(float64(v.params.Width), v.vw))
}

// ZoomToFitHeight zooms so the image height fills the viewport.
func (v *Viewer) ZoomToFitHeight() {
	v.SetZoom(FitZoom(float64(v.params.Height), v.vh))
}

// FlyZoomToFit flies to the image center at the zoom-to-fit value.
func (v *Viewer) FlyZoomToFit() {
	v.FlyTo(float64(v.params.Width)/2, float64(v.params.Height)/2, v.ZoomToFitValue())
}

// RectVisibleAtZoom returns the largest zoom at which a w x h rectangle of
// full-resolution pixels fits in the viewport.
func (v *Viewer) RectVisibleAtZoom(w, h float64) float64 {
	return min(FitZoom(w, v.vw), FitZoom(h, v.vh))
}

// setPosition wraps (if enabled) and clamps the center to the image.
func (v *Viewer) setPosition(x, y float64) {
	w, h := float64(v.params.Width), float64(v.params.Height)
	if v.params.WrapX && (x < 0 || x >= w) {
		x = math.Mod(math.Mod(x, w)+w, w)
	}
	if v.params.WrapY && (y < 0 || y >= h) {
		y = math.Mod(math.Mod(y, h)+h, h)
	}
	v.x = clamp(x, 0, w)
	v.y = clamp(y, 0, h)
}

// setZoom clamps zoom and updates the layers' tile extent.
func (v *Viewer) setZoom(zoom float64) {
	v.zoom = clamp(zoom, v.params.MinZoom, v.params.MaxZoom)
	mtx, mty := v.maxTiles()
	for _, l := range v.layers {
		l.SetMaxTiles(mtx, mty)
	}
}

// maxTiles returns the tile extent at the current tile level.
func (v *Viewer) maxTiles() (int, int) {
	scale := math.Exp2(float64(TileLevel(v.zoom)))
	ts := float64(v.params.TileSize)
	return int(math.Ceil(scale * float64(v.params.Width) / ts)),
		int(math.Ceil(scale * float64(v.params.Height) / ts))
}

func approach(current, target float64) float64 {
	return current + (target-current)*0.5
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
