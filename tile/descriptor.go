// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/bigtile"
)

// ErrInvalidDescriptor is returned when a pyramid descriptor cannot be parsed.
var ErrInvalidDescriptor = errors.New("tile: invalid descriptor")

// Descriptor is the image geometry stored alongside a pyramid.
type Descriptor struct {
	Width      int
	Height     int
	TileSize   int
	Overlap    int
	PosterSize int
	MinZoom    int
	Suffix     string
}

// Apply copies the descriptor geometry into p.
func (d Descriptor) Apply(p *bigtile.Parameters) {
	p.Width = d.Width
	p.Height = d.Height
	p.TileSize = d.TileSize
	p.Overlap = d.Overlap
	p.PosterSize = d.PosterSize
	p.MinZoom = float64(d.MinZoom)
	if d.Suffix != "" {
		p.Suffix = d.Suffix
	}
}

// ParseDescriptor decodes the colon-separated key:value descriptor written by
// the pyramid builder, for example
//
//	width:4096:height:4096:tileSize:256:overlap:0:posterSize:512:minZoom:-4:suffix:.jpg
//
// Unknown keys are ignored.
func ParseDescriptor(raw []byte) (Descriptor, error) {
	var d Descriptor
	fields := strings.Split(strings.TrimSpace(string(raw)), ":")
	if len(fields)%2 != 0 {
		return d, fmt.Errorf("%w: odd number of fields", ErrInvalidDescriptor)
	}
	for i := 0; i < len(fields); i += 2 {
		name, value := fields[i], fields[i+1]
		if name == "suffix" {
			d.Suffix = value
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return d, fmt.Errorf("%w: %s: %v", ErrInvalidDescriptor, name, err)
		}
		switch name {
		case "width":
			d.Width = n
		case "height":
			d.Height = n
		case "tileSize":
			d.TileSize = n
		case "overlap":
			d.Overlap = n
		case "posterSize":
			d.PosterSize = n
		case "minZoom":
			d.MinZoom = n
		}
	}
	if d.Width <= 0 || d.Height <= 0 || d.TileSize <= 0 {
		return d, fmt.Errorf("%w: missing geometry", ErrInvalidDescriptor)
	}
	return d, nil
}

// DeepZoomSource reads a Deep Zoom Image pyramid: <base>.xml describes the
// image and <base>/<level>/<col>_<row>.<format> holds the tiles, where level
// counts up from 0 at 1x1 pixel.
type DeepZoomSource struct {
	BasePath string

	// FullZoom is the DZI level of the full-resolution image.
	FullZoom int
	Suffix   string

	posterZoom int
}

// DescriptorURL returns the location of the DZI XML document.
func (s DeepZoomSource) DescriptorURL() string {
	return s.BasePath + ".xml"
}

// TileURL implements Source.
func (s DeepZoomSource) TileURL(k Key) string {
	return s.BasePath + "/" + strconv.Itoa(s.FullZoom+k.Zoom) + "/" + strconv.Itoa(k.Col) + "_" + strconv.Itoa(k.Row) + s.Suffix
}

// PosterURL implements Source. The poster is the single tile at the
// coarsest level that still fills one tile.
func (s DeepZoomSource) PosterURL() string {
	return s.TileURL(Key{Zoom: s.posterZoom})
}

type dziImage struct {
	TileSize int    `xml:"TileSize,attr"`
	Overlap  int    `xml:"Overlap,attr"`
	Format   string `xml:"Format,attr"`
	Size     struct {
		Width  int `xml:"Width,attr"`
		Height int `xml:"Height,attr"`
	} `xml:"Size"`
}

// ParseDeepZoom decodes a DZI document and returns the matching source and
// descriptor. The poster is the tile-sized level, as DZI has no poster file.
func ParseDeepZoom(basePath string, raw []byte) (DeepZoomSource, Descriptor, error) {
	var img dziImage
	if err := xml.Unmarshal(raw, &img); err != nil {
		return DeepZoomSource{}, Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if img.Size.Width <= 0 || img.Size.Height <= 0 || img.TileSize <= 0 {
		return DeepZoomSource{}, Descriptor{}, fmt.Errorf("%w: missing geometry", ErrInvalidDescriptor)
	}
	full := int(math.Ceil(math.Log2(float64(max(img.Size.Width, img.Size.Height)))))
	posterLevel := int(math.Ceil(math.Log2(float64(img.TileSize))))
	src := DeepZoomSource{
		BasePath:   basePath,
		FullZoom:   full,
		Suffix:     "." + img.Format,
		posterZoom: posterLevel - full,
	}
	d := Descriptor{
		Width:      img.Size.Width,
		Height:     img.Size.Height,
		TileSize:   img.TileSize,
		Overlap:    img.Overlap,
		PosterSize: img.TileSize,
		MinZoom:    -full,
		Suffix:     src.Suffix,
	}
	return src, d, nil
}
