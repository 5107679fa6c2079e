// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/bigtile"
)

// Format is the pixel format of every uploaded texture: tightly packed,
// alpha-premultiplied RGBA, 8 bits per channel.
const Format = gputypes.TextureFormatRGBA8Unorm

// ErrInvalidDimensions is returned by Upload for images without pixels.
var ErrInvalidDimensions = errors.New("texture: invalid image dimensions")

// CreateFunc creates a texture from tightly packed RGBA pixels.
type CreateFunc func(width, height int, data []byte) (any, error)

// textureDestroyer is implemented by GPU textures that hold resources.
type textureDestroyer interface {
	Destroy()
}

// Uploader turns decoded tile images into GPU textures. It implements
// tile.TextureUploader.
//
// Uploader is used from the event loop only.
type Uploader struct {
	create CreateFunc
	live   int
}

// NewUploader creates textures through a gpucontext.TextureCreator, such as
// the renderer of a gogpu window.
func NewUploader(c gpucontext.TextureCreator) *Uploader {
	return NewUploaderFunc(func(width, height int, data []byte) (any, error) {
		return c.NewTextureFromRGBA(width, height, data)
	})
}

// NewUploaderFunc creates textures with create.
func NewUploaderFunc(create CreateFunc) *Uploader {
	return &Uploader{create: create}
}

// Upload copies img into a new texture. Images with a zero or negative
// dimension are rejected with ErrInvalidDimensions.
func (u *Uploader) Upload(img image.Image) (any, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidDimensions)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Dx(), b.Dy())
	}

	rgba := Packed(img)
	tex, err := u.create(b.Dx(), b.Dy(), rgba.Pix)
	if err != nil {
		return nil, fmt.Errorf("texture: create %dx%d: %w", b.Dx(), b.Dy(), err)
	}

	// image.RGBA is premultiplied; tell the renderer so it blends correctly.
	if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
		pt.SetPremultiplied(true)
	}
	u.live++
	return tex, nil
}

// Release destroys a texture returned by Upload. Nil handles are ignored.
func (u *Uploader) Release(handle any) {
	if handle == nil {
		return
	}
	if d, ok := handle.(textureDestroyer); ok {
		d.Destroy()
	}
	u.live--
	if u.live < 0 {
		bigtile.Logger().Warn("texture: more releases than uploads", "live", u.live)
	}
}

// Live returns the number of uploaded textures not yet released.
func (u *Uploader) Live() int {
	return u.live
}

// Packed returns img as an *image.RGBA with origin (0, 0) and no row
// padding. img itself is returned when it already has that layout.
func Packed(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
