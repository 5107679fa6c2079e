// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

import "math"

// Vec3 is a point or direction in panorama world space. The cube spans
// [-1, 1] on every axis; the camera sits at the origin looking down -Z.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// MulAdd returns v*s + a.
func (v Vec3) MulAdd(s float64, a Vec3) Vec3 {
	return Vec3{v.X*s + a.X, v.Y*s + a.Y, v.Z*s + a.Z}
}

// Point is a position in viewport pixels, origin top-left, y down.
type Point struct {
	X, Y float64
}

// Mat4 is a 4x4 matrix in row-major order. Vectors are columns, so
// m.Mul(n) applied to v transforms v by n first.
type Mat4 [16]float64

// Identity4 returns the identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a matrix translating by v.
func Translation(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}
}

// RotationX returns a rotation of deg degrees around the X axis.
func RotationX(deg float64) Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Mat4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotationY returns a rotation of deg degrees around the Y axis.
func RotationY(deg float64) Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotationZ returns a rotation of deg degrees around the Z axis.
func RotationZ(deg float64) Mat4 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Mat4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective returns a projection with a vertical field of view of fovy
// degrees, as glu's gluPerspective.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovy*math.Pi/360)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), 2 * far * near / (near - far),
		0, 0, -1, 0,
	}
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i*4+k] * n[k*4+j]
			}
			r[i*4+j] = sum
		}
	}
	return r
}

// Transform returns m * (v, 1) in homogeneous coordinates.
func (m Mat4) Transform(v Vec3) [4]float64 {
	var r [4]float64
	for i := 0; i < 4; i++ {
		r[i] = m[i*4]*v.X + m[i*4+1]*v.Y + m[i*4+2]*v.Z + m[i*4+3]
	}
	return r
}
