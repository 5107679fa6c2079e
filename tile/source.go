// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import (
	"fmt"
	"image"
	"strconv"

	"github.com/gogpu/bigtile"
)

// Source maps tile keys to resource locations.
type Source interface {
	// TileURL returns the location of the tile image for k.
	TileURL(k Key) string

	// PosterURL returns the location of the low-resolution poster image.
	PosterURL() string
}

// Loader fetches and decodes images asynchronously.
//
// Load must return promptly. done is called exactly once, on the event loop,
// with either a decoded image or an error.
type Loader interface {
	Load(url string, done func(image.Image, error))
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(url string, done func(image.Image, error))

// Load calls f(url, done).
func (f LoaderFunc) Load(url string, done func(image.Image, error)) { f(url, done) }

// FolderSource is the directory layout written by the pyramid builder:
//
//	<base>/[<prefix>/]poster<suffix>
//	<base>/[<prefix>/]descriptor
//	<base>/[<prefix>/]<-zoom>/<col>_<row><suffix>
//
// BasePath may be a directory or an http(s) URL.
type FolderSource struct {
	BasePath string
	Prefix   string
	Suffix   string
}

// NewFolderSource returns the folder layout described by p.
func NewFolderSource(p bigtile.Parameters) FolderSource {
	return FolderSource{BasePath: p.BasePath, Suffix: p.Suffix}
}

// Face returns the source for one cube face ("f", "b", "l", "r", "u", "d").
func (s FolderSource) Face(name string) FolderSource {
	s.Prefix = "face_" + name
	return s
}

// TileURL implements Source.
func (s FolderSource) TileURL(k Key) string {
	return s.filename(strconv.Itoa(-k.Zoom) + "/" + strconv.Itoa(k.Col) + "_" + strconv.Itoa(k.Row) + s.Suffix)
}

// PosterURL implements Source.
func (s FolderSource) PosterURL() string {
	return s.filename("poster" + s.Suffix)
}

// DescriptorURL returns the location of the pyramid descriptor.
func (s FolderSource) DescriptorURL() string {
	return s.filename("descriptor")
}

func (s FolderSource) filename(name string) string {
	if s.Prefix != "" {
		return s.BasePath + "/" + s.Prefix + "/" + name
	}
	return s.BasePath + "/" + name
}

// String returns a short description for logs.
func (s FolderSource) String() string {
	return fmt.Sprintf("folder(%s, prefix=%q)", s.BasePath, s.Prefix)
}
