// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package bigtile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validParameters() Parameters {
	p := DefaultParameters()
	p.Width = 4096
	p.Height = 2048
	p.TileSize = 256
	p.PosterSize = 512
	p.BasePath = "tiles"
	return p
}

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()
	if p.MaxCacheSize != 512 || p.MaxTextureCacheSize != 512 || p.MaxImageCacheSize != 2048 {
		t.Errorf("cache sizes = %d, %d, %d", p.MaxCacheSize, p.MaxTextureCacheSize, p.MaxImageCacheSize)
	}
	if p.Suffix != ".jpg" || p.Renderer != "recording" {
		t.Errorf("Suffix = %q, Renderer = %q", p.Suffix, p.Renderer)
	}
	if p.MaxTessellation != -1 {
		t.Errorf("MaxTessellation = %d, want -1", p.MaxTessellation)
	}
	if p.LOD.TargetFPS != 30 || p.LOD.MinMag != 1.5 || p.LOD.MaxMag != 16 || p.LOD.HQRenderDelay != 2*time.Second {
		t.Errorf("LOD = %+v", p.LOD)
	}
	if err := p.Validate(); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("defaults without geometry validated: %v", err)
	}
}

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Parameters)
		ok     bool
	}{
		{"valid", func(*Parameters) {}, true},
		{"zero width", func(p *Parameters) { p.Width = 0 }, false},
		{"zero tile size", func(p *Parameters) { p.TileSize = 0 }, false},
		{"negative overlap", func(p *Parameters) { p.Overlap = -1 }, false},
		{"overlap fills tile", func(p *Parameters) { p.Overlap = 256 }, false},
		{"no poster", func(p *Parameters) { p.PosterSize = 0 }, false},
		{"zero cache", func(p *Parameters) { p.MaxImageCacheSize = 0 }, false},
		{"no attempts", func(p *Parameters) { p.Retry.MaxAttempts = 0 }, false},
		{"max delay below base", func(p *Parameters) { p.Retry.MaxDelay = time.Millisecond }, false},
		{"zoom range", func(p *Parameters) { p.MinZoom, p.MaxZoom = 1, 0 }, false},
		{"negative margin", func(p *Parameters) { p.Margin = -1 }, false},
		{"non power of two tile", func(p *Parameters) { p.TileSize = 254 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParameters()
			tt.modify(&p)
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("Validate() = %v, want ErrInvalidParameters", err)
			}
		})
	}
}

func TestParametersValidatePanorama(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Parameters)
		ok     bool
	}{
		{"valid", func(*Parameters) {}, true},
		{"overlap", func(p *Parameters) { p.Overlap = 2 }, true},
		{"non power of two tile", func(p *Parameters) { p.TileSize = 254 }, false},
		{"zero magnification", func(p *Parameters) { p.MaxTextureMagnification = 0 }, false},
		{"fov range", func(p *Parameters) { p.MinFov, p.MaxFov = 60, 30 }, false},
		{"fov too wide", func(p *Parameters) { p.MaxFov = 180 }, false},
		{"pitch past vertical", func(p *Parameters) { p.MaxPitch = 95 }, false},
		{"lod tolerance", func(p *Parameters) { p.LOD.Tolerance = -1 }, false},
		{"lod interval", func(p *Parameters) { p.LOD.HQRenderInterval = 0 }, false},
		{"base invalid", func(p *Parameters) { p.Height = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParameters()
			tt.modify(&p)
			err := p.ValidatePanorama()
			if tt.ok && err != nil {
				t.Errorf("ValidatePanorama() = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("ValidatePanorama() = %v, want ErrInvalidParameters", err)
			}
		})
	}
}

func TestPosterScale(t *testing.T) {
	p := validParameters()
	if got := p.PosterScale(); got != 0.125 {
		t.Errorf("PosterScale() = %g, want 0.125", got)
	}
	if got := p.PosterZoomLevel(); got != -3 {
		t.Errorf("PosterZoomLevel() = %g, want -3", got)
	}
}

func TestRetryDelay(t *testing.T) {
	r := DefaultRetryParameters()
	tests := []struct {
		n    int
		want time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{100, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := r.Delay(tt.n); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

const sampleYAML = `
width: 8192
height: 4096
tile_size: 512
poster_size: 1024
base_path: https://example.com/pyramid
suffix: .png
wrap_x: true
retry:
  max_attempts: 5
  base_delay: 250ms
  max_delay: 10s
lod:
  target_fps: 60
`

func TestParseParameters(t *testing.T) {
	p, err := ParseParameters([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseParameters: %v", err)
	}
	if p.Width != 8192 || p.Height != 4096 || p.TileSize != 512 || p.PosterSize != 1024 {
		t.Errorf("geometry = %dx%d tile %d poster %d", p.Width, p.Height, p.TileSize, p.PosterSize)
	}
	if p.BasePath != "https://example.com/pyramid" || p.Suffix != ".png" || !p.WrapX {
		t.Errorf("BasePath = %q, Suffix = %q, WrapX = %v", p.BasePath, p.Suffix, p.WrapX)
	}
	if p.Retry.MaxAttempts != 5 || p.Retry.BaseDelay != 250*time.Millisecond || p.Retry.MaxDelay != 10*time.Second {
		t.Errorf("Retry = %+v", p.Retry)
	}
	// Unlisted values keep their defaults.
	if p.MaxCacheSize != 512 || p.LOD.MaxMag != 16 || p.LOD.TargetFPS != 60 {
		t.Errorf("MaxCacheSize = %d, LOD = %+v", p.MaxCacheSize, p.LOD)
	}
	if err := p.ValidatePanorama(); err != nil {
		t.Errorf("ValidatePanorama() = %v", err)
	}
}

func TestParseParametersError(t *testing.T) {
	if _, err := ParseParameters([]byte("width: [1, 2")); err == nil {
		t.Error("ParseParameters accepted malformed YAML")
	}
	if _, err := ParseParameters([]byte("width: wide")); err == nil {
		t.Error("ParseParameters accepted a string width")
	}
}

func TestLoadParameters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := LoadParameters(path)
	if err != nil {
		t.Fatalf("LoadParameters: %v", err)
	}
	if p.Width != 8192 {
		t.Errorf("Width = %d, want 8192", p.Width)
	}

	if _, err := LoadParameters(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v, want os.ErrNotExist", err)
	}
}
