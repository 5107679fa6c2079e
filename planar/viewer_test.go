// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package planar

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestViewer(t *testing.T, p bigtile.Parameters) (*Viewer, *recordingCache, *eventloop.Manual) {
	t.Helper()
	m := eventloop.NewManual(epoch)
	v, err := NewViewer(p, m, 800, 600)
	if err != nil {
		t.Fatal(err)
	}
	c := &recordingCache{}
	v.AddLayer(NewTileLayer(c, p))
	return v, c, m
}

func TestNewViewer(t *testing.T) {
	v, c, _ := newTestViewer(t, gigapixel())
	if v.X() != 2048 || v.Y() != 2048 || v.Zoom() != 0 {
		t.Errorf("initial view = %+v, want centered at zoom 0", v.View())
	}
	if c.mtx != 16 || c.mty != 16 {
		t.Errorf("max tiles = %dx%d, want 16x16", c.mtx, c.mty)
	}
	cols, rows := v.Layers()[0].Size()
	if cols != 7 || rows != 5 {
		t.Errorf("grid = %dx%d, want 7x5", cols, rows)
	}
}

func TestNewViewerInvalid(t *testing.T) {
	p := gigapixel()
	p.TileSize = 0
	if _, err := NewViewer(p, eventloop.NewManual(epoch), 800, 600); !errors.Is(err, bigtile.ErrInvalidParameters) {
		t.Errorf("NewViewer error = %v, want ErrInvalidParameters", err)
	}
}

func TestViewerClamps(t *testing.T) {
	v, _, _ := newTestViewer(t, gigapixel())
	v.MoveTo(-100, 5000, 9)
	if v.X() != 0 || v.Y() != 4096 || v.Zoom() != 2 {
		t.Errorf("view = %+v, want (0, 4096, 2)", v.View())
	}
	v.SetZoom(-4)
	if v.Zoom() != 0 {
		t.Errorf("zoom = %g, want clamped to 0", v.Zoom())
	}
}

func TestViewerWrapX(t *testing.T) {
	p := gigapixel()
	p.WrapX = true
	v, _, _ := newTestViewer(t, p)
	v.MoveTo(-100, -100, 0)
	if v.X() != 3996 {
		t.Errorf("x = %g, want 3996", v.X())
	}
	if v.Y() != 0 {
		t.Errorf("y = %g, want 0 without WrapY", v.Y())
	}
}

func TestViewerZoomUpdatesMaxTiles(t *testing.T) {
	p := gigapixel()
	p.MinZoom = -5
	v, c, _ := newTestViewer(t, p)

	tests := []struct {
		zoom float64
		want int
	}{
		{-1, 8},
		{-0.5, 16},
		{-2.5, 4},
		{-3, 2},
		{1, 16},
	}
	for _, tt := range tests {
		v.SetZoom(tt.zoom)
		if c.mtx != tt.want || c.mty != tt.want {
			t.Errorf("zoom %g: max tiles %dx%d, want %d", tt.zoom, c.mtx, c.mty, tt.want)
		}
	}
}

func TestViewerZoomToFit(t *testing.T) {
	p := gigapixel()
	p.MinZoom = -5
	v, _, _ := newTestViewer(t, p)

	v.ZoomToFit()
	if want := math.Log2(600.0 / 4096); v.Zoom() != want {
		t.Errorf("ZoomToFit zoom = %g, want %g", v.Zoom(), want)
	}
	v.ZoomToFitWidth()
	if want := math.Log2(800.0 / 4096); v.Zoom() != want {
		t.Errorf("ZoomToFitWidth zoom = %g, want %g", v.Zoom(), want)
	}
	v.ZoomToFitHeight()
	if want := math.Log2(600.0 / 4096); v.Zoom() != want {
		t.Errorf("ZoomToFitHeight zoom = %g, want %g", v.Zoom(), want)
	}
	if got := v.RectVisibleAtZoom(1600, 600); got != -1 {
		t.Errorf("RectVisibleAtZoom = %g, want -1", got)
	}
}

func TestViewerLayout(t *testing.T) {
	v, c, _ := newTestViewer(t, gigapixel())
	var seen []Layout
	v.OnLayout = func(l Layout) { seen = append(seen, l) }
	v.Layout()

	if len(seen) != 1 || seen[0] != v.LastLayout() {
		t.Fatalf("OnLayout saw %v, last %v", seen, v.LastLayout())
	}
	if len(c.calls) != 16 {
		t.Errorf("GetTile calls = %d, want 16", len(c.calls))
	}
}

func TestViewerFlyTo(t *testing.T) {
	v, _, m := newTestViewer(t, gigapixel())
	layouts := 0
	v.OnLayout = func(Layout) { layouts++ }

	v.FlyTo(1024, 2048, 1)
	if v.X() != 2048 {
		t.Fatal("FlyTo moved the camera before the first step")
	}

	m.Advance(flyStep)
	if v.X() != 1536 || v.Zoom() != 0.5 {
		t.Errorf("after one step view = %+v, want x 1536 zoom 0.5", v.View())
	}

	m.Advance(time.Second)
	if v.X() != 1024 || v.Y() != 2048 || v.Zoom() != 1 {
		t.Errorf("view = %+v, want (1024, 2048, 1)", v.View())
	}
	if m.Pending() != 0 {
		t.Errorf("%d callbacks pending after the flight ended", m.Pending())
	}
	if layouts < 2 {
		t.Errorf("layouts = %d, want one per step", layouts)
	}
}

func TestViewerMoveToInterruptsFlight(t *testing.T) {
	v, _, m := newTestViewer(t, gigapixel())
	v.FlyTo(0, 0, 0)
	m.Advance(flyStep)
	if v.X() != 1024 {
		t.Fatalf("x = %g after one step, want 1024", v.X())
	}

	v.MoveTo(3000, 3000, 0)
	m.Advance(time.Second)
	if v.X() != 3000 || v.Y() != 3000 {
		t.Errorf("view = %+v, want the MoveTo target", v.View())
	}
	if m.Pending() != 0 {
		t.Errorf("%d callbacks pending after the flight was interrupted", m.Pending())
	}
}

func TestViewerFlyToRetargets(t *testing.T) {
	v, _, m := newTestViewer(t, gigapixel())
	v.FlyTo(0, 2048, 0)
	m.Advance(flyStep)
	v.FlyTo(4096, 2048, 0)
	m.Advance(time.Second)
	if v.X() != 4096 {
		t.Errorf("x = %g, want the second target", v.X())
	}
}
