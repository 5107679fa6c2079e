// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package bigtile

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidParameters is returned by Validate and the constructors that
// call it when a configuration value is out of range.
var ErrInvalidParameters = errors.New("bigtile: invalid parameters")

// Parameters describes one tiled image (or one panorama face) and the
// behaviour of the caches and viewers built on top of it.
//
// Zero values are not usable; start from DefaultParameters and override.
type Parameters struct {
	// Width and Height are the full-resolution image size in pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// TileSize is the edge length of one tile in the pyramid, overlap included.
	TileSize int `yaml:"tile_size"`

	// Overlap is the number of pixels shared by adjacent tiles.
	Overlap int `yaml:"overlap"`

	// PosterSize is the longest edge of the low-resolution poster image.
	PosterSize int `yaml:"poster_size"`

	// BasePath is the root URL or directory of the tile pyramid.
	BasePath string `yaml:"base_path"`

	// Suffix is appended to every tile file name (".jpg", ".png").
	Suffix string `yaml:"suffix"`

	// EmptyImage optionally names an image returned for out-of-bounds tiles
	// instead of the built-in 1x1 transparent placeholder.
	EmptyImage string `yaml:"empty_image"`

	// MaxCacheSize bounds the planar tile cache (entries).
	MaxCacheSize int `yaml:"max_cache_size"`

	// MaxTextureCacheSize bounds the GPU texture tier of the texture cache.
	MaxTextureCacheSize int `yaml:"max_texture_cache_size"`

	// MaxImageCacheSize bounds the decoded-image tier of the texture cache.
	MaxImageCacheSize int `yaml:"max_image_cache_size"`

	// Retry controls re-requesting tiles whose load failed.
	Retry RetryParameters `yaml:"retry"`

	// MinZoom and MaxZoom clamp the planar zoom value (log2 magnification).
	MinZoom float64 `yaml:"min_zoom"`
	MaxZoom float64 `yaml:"max_zoom"`

	// WrapX and WrapY make the planar image repeat horizontally/vertically.
	WrapX bool `yaml:"wrap_x"`
	WrapY bool `yaml:"wrap_y"`

	// Margin is the number of tiles prefetched around the planar viewport.
	Margin int `yaml:"margin"`

	// MaxTextureMagnification is the initial panorama magnification ceiling.
	MaxTextureMagnification float64 `yaml:"max_texture_magnification"`

	// MaxTessellation caps face subdivision depth. Negative means no cap.
	MaxTessellation int `yaml:"max_tessellation"`

	MinFov   float64 `yaml:"min_fov"`
	MaxFov   float64 `yaml:"max_fov"`
	MinPitch float64 `yaml:"min_pitch"`
	MaxPitch float64 `yaml:"max_pitch"`
	MinYaw   float64 `yaml:"min_yaw"`
	MaxYaw   float64 `yaml:"max_yaw"`

	// YawOffset, PitchOffset and RollOffset rotate the cube in world space.
	YawOffset   float64 `yaml:"yaw_offset"`
	PitchOffset float64 `yaml:"pitch_offset"`
	RollOffset  float64 `yaml:"roll_offset"`

	// Renderer selects the panorama renderer by registered name.
	Renderer string `yaml:"renderer"`

	// LOD configures the adaptive detail controller.
	LOD LODParameters `yaml:"lod"`
}

// RetryParameters is the explicit policy applied to failed tile loads.
// A failed tile is not re-requested before BaseDelay*2^(attempt-1)
// (capped at MaxDelay) has passed, and never after MaxAttempts failures.
type RetryParameters struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// LODParameters configures the adaptive level-of-detail monitor.
type LODParameters struct {
	// TargetFPS is the frame rate the monitor tries to hold.
	TargetFPS float64 `yaml:"target_fps"`

	// Tolerance widens the accepted render time band to
	// [target/(1+tolerance), target*(1+tolerance)].
	Tolerance float64 `yaml:"tolerance"`

	// Rate is the relative magnification step per adjustment.
	Rate float64 `yaml:"rate"`

	MinMag float64 `yaml:"min_mag"`
	MaxMag float64 `yaml:"max_mag"`

	// HQRenderMag is the magnification used for the idle high-quality pass.
	HQRenderMag float64 `yaml:"hq_render_mag"`

	// HQRenderDelay is the idle time required before a high-quality pass.
	HQRenderDelay time.Duration `yaml:"hq_render_delay"`

	// HQRenderInterval is how often the idle check runs.
	HQRenderInterval time.Duration `yaml:"hq_render_interval"`
}

// DefaultParameters returns parameters with the viewer defaults filled in.
// Image geometry (Width, Height, TileSize, PosterSize, BasePath) must still
// be provided by the caller or a parameter file.
func DefaultParameters() Parameters {
	return Parameters{
		Suffix:                  ".jpg",
		MaxCacheSize:            512,
		MaxTextureCacheSize:     512,
		MaxImageCacheSize:       2048,
		Retry:                   DefaultRetryParameters(),
		MinZoom:                 0,
		MaxZoom:                 2,
		Margin:                  1,
		MaxTextureMagnification: 1,
		MaxTessellation:         -1,
		MinFov:                  2,
		MaxFov:                  90,
		MinPitch:                -90,
		MaxPitch:                90,
		MinYaw:                  -360,
		MaxYaw:                  720,
		Renderer:                "recording",
		LOD:                     DefaultLODParameters(),
	}
}

// DefaultRetryParameters returns the default load retry policy.
func DefaultRetryParameters() RetryParameters {
	return RetryParameters{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Delay returns how long to wait before re-requesting a tile that has
// failed n times.
func (r RetryParameters) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	d := r.BaseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if d >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	return min(d, r.MaxDelay)
}

// DefaultLODParameters returns the adaptive monitor defaults.
func DefaultLODParameters() LODParameters {
	return LODParameters{
		TargetFPS:        30,
		Tolerance:        0.3,
		Rate:             0.1,
		MinMag:           1.5,
		MaxMag:           16,
		HQRenderMag:      1.5,
		HQRenderDelay:    2 * time.Second,
		HQRenderInterval: time.Second,
	}
}

// PosterScale is the ratio between poster pixels and full-image pixels.
func (p *Parameters) PosterScale() float64 {
	return float64(p.PosterSize) / float64(max(p.Width, p.Height))
}

// PosterZoomLevel is the (fractional, negative) zoom level of the poster.
func (p *Parameters) PosterZoomLevel() float64 {
	return math.Log2(p.PosterScale())
}

// Validate checks the image geometry and cache settings.
func (p *Parameters) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidParameters, p.Width, p.Height)
	case p.TileSize <= 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidParameters, p.TileSize)
	case p.Overlap < 0 || p.Overlap >= p.TileSize:
		return fmt.Errorf("%w: overlap %d with tile size %d", ErrInvalidParameters, p.Overlap, p.TileSize)
	case p.PosterSize <= 0:
		return fmt.Errorf("%w: poster size %d", ErrInvalidParameters, p.PosterSize)
	case p.MaxCacheSize <= 0 || p.MaxTextureCacheSize <= 0 || p.MaxImageCacheSize <= 0:
		return fmt.Errorf("%w: cache sizes must be positive", ErrInvalidParameters)
	case p.Retry.MaxAttempts < 1 || p.Retry.BaseDelay < 0 || p.Retry.MaxDelay < p.Retry.BaseDelay:
		return fmt.Errorf("%w: retry policy %+v", ErrInvalidParameters, p.Retry)
	case p.MinZoom > p.MaxZoom:
		return fmt.Errorf("%w: zoom range [%g, %g]", ErrInvalidParameters, p.MinZoom, p.MaxZoom)
	case p.Margin < 0:
		return fmt.Errorf("%w: margin %d", ErrInvalidParameters, p.Margin)
	}
	return nil
}

// ValidatePanorama runs Validate and additionally checks the constraints a
// cube face needs: power-of-two textures and sane camera limits.
func (p *Parameters) ValidatePanorama() error {
	if err := p.Validate(); err != nil {
		return err
	}
	switch {
	case bits.OnesCount(uint(p.TileSize)) != 1:
		return fmt.Errorf("%w: tile size %d is not a power of two", ErrInvalidParameters, p.TileSize)
	case p.MaxTextureMagnification <= 0:
		return fmt.Errorf("%w: max texture magnification %g", ErrInvalidParameters, p.MaxTextureMagnification)
	case p.MinFov <= 0 || p.MinFov > p.MaxFov || p.MaxFov >= 180:
		return fmt.Errorf("%w: fov range [%g, %g]", ErrInvalidParameters, p.MinFov, p.MaxFov)
	case p.MinPitch > p.MaxPitch || p.MinPitch < -90 || p.MaxPitch > 90:
		return fmt.Errorf("%w: pitch range [%g, %g]", ErrInvalidParameters, p.MinPitch, p.MaxPitch)
	}
	return p.LOD.Validate()
}

// Validate checks the adaptive monitor settings.
func (l *LODParameters) Validate() error {
	switch {
	case l.TargetFPS <= 0:
		return fmt.Errorf("%w: target fps %g", ErrInvalidParameters, l.TargetFPS)
	case l.Tolerance < 0 || l.Rate <= 0:
		return fmt.Errorf("%w: tolerance %g, rate %g", ErrInvalidParameters, l.Tolerance, l.Rate)
	case l.MinMag <= 0 || l.MinMag > l.MaxMag:
		return fmt.Errorf("%w: magnification range [%g, %g]", ErrInvalidParameters, l.MinMag, l.MaxMag)
	case l.HQRenderInterval <= 0:
		return fmt.Errorf("%w: hq render interval %v", ErrInvalidParameters, l.HQRenderInterval)
	}
	return nil
}

// ParseParameters decodes YAML over DefaultParameters, so a parameter file
// only needs to list the values it changes.
func ParseParameters(raw []byte) (Parameters, error) {
	p := DefaultParameters()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("bigtile: parse parameters: %w", err)
	}
	return p, nil
}

// LoadParameters reads and decodes a YAML parameter file.
// This is the blocking startup path; it must not be called from a render pass.
func LoadParameters(path string) (Parameters, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return DefaultParameters(), err
	}
	p, err := ParseParameters(raw)
	if err != nil {
		return p, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
