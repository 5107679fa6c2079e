// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

import (
	"math"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/tile"
)

// Visibility classifies a projected quad against the viewport.
type Visibility int

const (
	// VisibleNone means the quad is behind the camera or off screen.
	VisibleNone Visibility = iota
	// VisibleSome means the quad overlaps the viewport.
	VisibleSome
	// VisibleAll means all four corners are inside the viewport.
	VisibleAll
)

// String returns the visibility name.
func (v Visibility) String() string {
	switch v {
	case VisibleNone:
		return "none"
	case VisibleSome:
		return "some"
	case VisibleAll:
		return "all"
	default:
		return "unknown"
	}
}

// FaceCache is the texture source of one face. *tile.TextureCache
// implements it.
type FaceCache interface {
	ResetUsed()
	GetTexture(col, row, zoom int) *tile.Texture
	Purge()
}

// Quad is one textured square emitted by a face.
type Quad struct {
	Face string

	// TopLeft is the first corner; U runs along the top edge and V down
	// the left edge. Both include the tile overlap.
	TopLeft, U, V Vec3

	Texture *tile.Texture

	// Depth is the subdivision depth and Col, Row the tile at that depth.
	Depth    int
	Col, Row int
}

// Scene collects the quads of one render pass.
type Scene interface {
	AddQuad(q Quad)

	// Render draws the collected quads.
	Render()
}

// Face is one side of the panorama cube. It tessellates itself into a
// quad-tree whose leaves match the resolution of the available tiles.
type Face struct {
	name    string
	topLeft Vec3
	width   float64
	u, v    Vec3
	cache   FaceCache

	tileSize float64
	overlap  float64

	minDivisions    int
	maxDivisions    int
	maxTessellation int

	updated bool
}

// NewFace creates a face spanning width units along u and v from topLeft.
// Its pyramid geometry is taken from p.
func NewFace(name string, topLeft Vec3, width float64, u, v Vec3, p bigtile.Parameters, c FaceCache) *Face {
	f := &Face{
		name:     name,
		topLeft:  topLeft,
		width:    width,
		u:        u,
		v:        v,
		cache:    c,
		tileSize: float64(p.TileSize),
		overlap:  float64(p.Overlap),
	}
	full := math.Log2(float64(p.Width - p.Overlap))
	single := math.Log2(float64(p.TileSize - p.Overlap))
	f.maxDivisions = int(math.Floor(full - single))
	f.maxTessellation = f.maxDivisions
	if p.MaxTessellation >= 0 {
		f.maxTessellation = p.MaxTessellation
	}
	return f
}

// Name returns the face key ("f", "b", "l", "r", "u" or "d").
func (f *Face) Name() string { return f.name }

// MaxDivisions returns the depth at which quads use full-resolution tiles.
func (f *Face) MaxDivisions() int { return f.maxDivisions }

// Updated reports whether the face's cache has delivered new textures since
// the face was last rendered.
func (f *Face) Updated() bool { return f.updated }

// MarkUpdated flags the face for the next partial render.
func (f *Face) MarkUpdated() { f.updated = true }

// Render starts a new pass on the face's cache and adds the face's quads to
// scene. mag is the largest allowed texture magnification.
func (f *Face) Render(scene Scene, proj Projector, mag float64) {
	f.updated = false
	f.cache.ResetUsed()
	f.subdivide(scene, proj, mag, f.topLeft, f.width, 0, 0, 0)
}

// EndRender purges the face's cache after a pass.
func (f *Face) EndRender() {
	f.cache.Purge()
}

func (f *Face) subdivide(scene Scene, proj Projector, mag float64, topLeft Vec3, width float64, depth, tx, ty int) {
	bottomLeft := f.v.MulAdd(width, topLeft)
	corners := [4]Vec3{
		topLeft,
		f.u.MulAdd(width, topLeft),
		f.u.MulAdd(width, bottomLeft),
		bottomLeft,
	}
	var pts [4]Point
	var ok [4]bool
	for i, c := range corners {
		pts[i], ok[i] = proj.Project(c)
	}

	vw, vh := proj.Viewport()
	if classify(pts, ok, float64(vw), float64(vh)) == VisibleNone {
		return
	}

	var dmax float64
	for i := range pts {
		next := (i + 1) % 4
		if ok[i] && ok[next] {
			dmax = max(dmax, math.Max(math.Abs(pts[i].X-pts[next].X), math.Abs(pts[i].Y-pts[next].Y)))
		}
	}
	dmax *= proj.PixelScale()

	if depth < f.minDivisions ||
		(dmax > mag*(f.tileSize-f.overlap) && depth < f.maxDivisions && depth < f.maxTessellation) {
		half := width / 2
		midTop := f.u.MulAdd(half, topLeft)
		midLeft := f.v.MulAdd(half, topLeft)
		center := f.u.Add(f.v).MulAdd(half, topLeft)
		f.subdivide(scene, proj, mag, topLeft, half, depth+1, tx*2, ty*2)
		f.subdivide(scene, proj, mag, midTop, half, depth+1, tx*2+1, ty*2)
		f.subdivide(scene, proj, mag, midLeft, half, depth+1, tx*2, ty*2+1)
		f.subdivide(scene, proj, mag, center, half, depth+1, tx*2+1, ty*2+1)
		return
	}

	width *= f.tileSize / (f.tileSize - f.overlap)
	scene.AddQuad(Quad{
		Face:    f.name,
		TopLeft: topLeft,
		U:       f.u.Scale(width),
		V:       f.v.Scale(width),
		Texture: f.cache.GetTexture(tx, ty, depth-f.maxDivisions),
		Depth:   depth,
		Col:     tx,
		Row:     ty,
	})
}

// classify intersects the bounding box of the projected corners with the
// viewport. Corners that did not project are ignored.
func classify(pts [4]Point, ok [4]bool, vw, vh float64) Visibility {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	projected, inside := 0, 0
	for i, p := range pts {
		if !ok[i] {
			continue
		}
		projected++
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		if p.X >= 0 && p.Y >= 0 && p.X < vw && p.Y < vh {
			inside++
		}
	}
	switch {
	case projected == 0:
		return VisibleNone
	case inside == 4:
		return VisibleAll
	case math.Max(minX, 0) <= math.Min(maxX, vw) && math.Max(minY, 0) <= math.Min(maxY, vh):
		return VisibleSome
	}
	return VisibleNone
}
