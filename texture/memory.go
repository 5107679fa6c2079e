// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import "image"

// Memory is a texture kept in host memory. It stands in for GPU textures in
// headless rendering.
type Memory struct {
	Image     *image.RGBA
	Destroyed bool
}

// Destroy marks the texture released and drops its pixels.
func (m *Memory) Destroy() {
	m.Destroyed = true
	m.Image = nil
}

// Width returns the texture width in pixels.
func (m *Memory) Width() int { return m.Image.Bounds().Dx() }

// Height returns the texture height in pixels.
func (m *Memory) Height() int { return m.Image.Bounds().Dy() }

// NewMemoryUploader returns an uploader that creates *Memory textures.
func NewMemoryUploader() *Uploader {
	return NewUploaderFunc(func(width, height int, data []byte) (any, error) {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		copy(img.Pix, data)
		return &Memory{Image: img}, nil
	})
}
