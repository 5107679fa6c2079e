// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package planar

import "testing"

func TestTileLevel(t *testing.T) {
	tests := []struct {
		zoom float64
		want int
	}{
		{2, 0},
		{0.3, 0},
		{0, 0},
		{-0.2, 0},
		{-1, -1},
		{-1.5, -1},
		{-3.01, -3},
	}
	for _, tt := range tests {
		if got := TileLevel(tt.zoom); got != tt.want {
			t.Errorf("TileLevel(%g) = %d, want %d", tt.zoom, got, tt.want)
		}
	}
}

func TestGridSize(t *testing.T) {
	cols, rows := GridSize(256, 800, 600, 1)
	if cols != 9 || rows != 7 {
		t.Errorf("GridSize = %dx%d, want 9x7", cols, rows)
	}
	cols, rows = GridSize(256, 800, 600, 0)
	if cols != 7 || rows != 5 {
		t.Errorf("GridSize without margin = %dx%d, want 7x5", cols, rows)
	}
}

func TestComputeLayoutCentered(t *testing.T) {
	lay := ComputeLayout(256, View{X: 2048, Y: 2048, Zoom: 0}, 800, 600, 0)

	want := Layout{
		Zoom: 0,
		TX0:  6, TY0: 6,
		X0: -112, Y0: -212,
		Size: 256, Stride: 256,
		Cols: 7, Rows: 5,
		ViewportW: 800, ViewportH: 600,
		Opacity: 1,
	}
	if lay != want {
		t.Errorf("ComputeLayout =\n%+v\nwant\n%+v", lay, want)
	}
}

func TestComputeLayoutMargin(t *testing.T) {
	lay := ComputeLayout(256, View{X: 2048, Y: 2048, Zoom: 0}, 800, 600, 1)
	if lay.TX0 != 5 || lay.TY0 != 5 {
		t.Errorf("TX0, TY0 = %d, %d, want 5, 5", lay.TX0, lay.TY0)
	}
	if lay.X0 != -112-256 || lay.Y0 != -212-256 {
		t.Errorf("X0, Y0 = %g, %g", lay.X0, lay.Y0)
	}
}

func TestComputeLayoutFractionalZoom(t *testing.T) {
	tests := []struct {
		zoom  float64
		level int
		size  int
	}{
		{-0.5, 0, 182}, // 256 * 2^-0.5 = 181.02
		{-1, -1, 256},
		{-1.5, -1, 182},
		{1, 0, 512},
	}
	for _, tt := range tests {
		lay := ComputeLayout(256, View{X: 1000, Y: 1000, Zoom: tt.zoom}, 640, 480, 1)
		if lay.Zoom != tt.level || lay.Size != tt.size {
			t.Errorf("zoom %g: level %d size %d, want %d %d", tt.zoom, lay.Zoom, lay.Size, tt.level, tt.size)
		}
	}
}
