// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

import "math"

// Clip planes of the panorama projection.
const (
	nearPlane = 0.1
	farPlane  = 100.0
)

// State is the panorama camera. Angles are in degrees; positive yaw turns
// right and positive pitch looks down.
type State struct {
	Yaw   float64
	Pitch float64
	Fov   float64

	// TX, TY and TZ translate the camera inside the cube.
	TX, TY, TZ float64
}

// Offsets rotate the whole cube in world space, in degrees.
type Offsets struct {
	Yaw, Pitch, Roll float64
}

// Projector maps world points to the viewport.
type Projector interface {
	// Project returns the viewport position of p, or false when p is behind
	// the camera.
	Project(p Vec3) (Point, bool)

	// Viewport returns the viewport size in logical pixels.
	Viewport() (width, height int)

	// PixelScale returns the number of device pixels per logical pixel.
	PixelScale() float64
}

// Camera is the perspective Projector shared by the built-in renderers.
type Camera struct {
	mv, p, mvp Mat4
	w, h       int
	scale      float64
}

// NewCamera returns a camera for a w x h viewport looking down -Z.
func NewCamera(w, h int) *Camera {
	c := &Camera{w: w, h: h, scale: 1}
	c.Setup(State{Fov: defaultFov}, Offsets{})
	return c
}

// Setup rebuilds the camera matrices for s and o.
func (c *Camera) Setup(s State, o Offsets) {
	proj := NewTransformStack()
	proj.Perspective(s.Fov, float64(c.w)/float64(max(c.h, 1)), nearPlane, farPlane)

	mv := NewTransformStack()
	mv.Translate(Vec3{s.TX, s.TY, s.TZ})
	mv.RotateZ(o.Roll)
	mv.RotateX(o.Pitch)
	mv.RotateY(o.Yaw)
	mv.RotateY(s.Yaw)
	mv.RotateX(s.Pitch)

	c.p = proj.Matrix()
	c.mv = mv.Matrix()
	c.mvp = c.p.Mul(c.mv)
}

// Resize changes the viewport size. Call Setup afterwards.
func (c *Camera) Resize(w, h int) {
	c.w, c.h = w, h
}

// SetPixelScale sets the device pixel ratio.
func (c *Camera) SetPixelScale(s float64) {
	c.scale = s
}

// Project implements Projector. Points closer than the near plane, or
// behind the camera, are not projected.
func (c *Camera) Project(p Vec3) (Point, bool) {
	v := c.mvp.Transform(p)
	if v[2] < 0 || math.Abs(v[3]) < 1e-9 {
		return Point{}, false
	}
	hw, hh := float64(c.w)/2, float64(c.h)/2
	return Point{
		X: hw*v[0]/v[3] + hw,
		Y: -hh*v[1]/v[3] + hh,
	}, true
}

// Viewport implements Projector.
func (c *Camera) Viewport() (int, int) {
	return c.w, c.h
}

// PixelScale implements Projector.
func (c *Camera) PixelScale() float64 {
	return c.scale
}

// ModelView returns the current model-view matrix.
func (c *Camera) ModelView() Mat4 {
	return c.mv
}
