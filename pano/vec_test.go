// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func nearVec(a, b Vec3) bool { return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z) }

func apply(m Mat4, v Vec3) Vec3 {
	r := m.Transform(v)
	return Vec3{r[0] / r[3], r[1] / r[3], r[2] / r[3]}
}

func TestMat4Identity(t *testing.T) {
	m := RotationX(30).Mul(Translation(Vec3{1, 2, 3}))
	if got := Identity4().Mul(m); got != m {
		t.Errorf("I * m = %v, want %v", got, m)
	}
	if got := m.Mul(Identity4()); got != m {
		t.Errorf("m * I = %v, want %v", got, m)
	}
}

func TestRotations(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"Y90 right to front", RotationY(90), Vec3{1, 0, 0}, Vec3{0, 0, -1}},
		{"Y180", RotationY(180), Vec3{0, 0, -1}, Vec3{0, 0, 1}},
		{"X90 down to front", RotationX(90), Vec3{0, -1, 0}, Vec3{0, 0, -1}},
		{"Z90", RotationZ(90), Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"translate", Translation(Vec3{1, -1, 2}), Vec3{1, 1, 1}, Vec3{2, 0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apply(tt.m, tt.in); !nearVec(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3(t *testing.T) {
	v := Vec3{1, 2, 3}
	if got := v.MulAdd(2, Vec3{1, 1, 1}); got != (Vec3{3, 5, 7}) {
		t.Errorf("MulAdd = %v", got)
	}
	if got := v.Add(v).Scale(0.5); got != v {
		t.Errorf("Add/Scale = %v", got)
	}
}

func TestTransformStackOrder(t *testing.T) {
	s := NewTransformStack()
	s.Translate(Vec3{1, 0, 0})
	s.RotateY(90)
	if got := apply(s.Matrix(), Vec3{}); !nearVec(got, Vec3{0, 0, -1}) {
		t.Errorf("origin -> %v, want translated then rotated (0,0,-1)", got)
	}
}

func TestTransformStackPushPop(t *testing.T) {
	s := NewTransformStack()
	s.Translate(Vec3{1, 2, 3})
	saved := s.Matrix()

	s.Push()
	s.RotateZ(45)
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", s.Depth())
	}
	if err := s.Pop(); err != nil {
		t.Fatalf("Pop() = %v", err)
	}
	if s.Matrix() != saved {
		t.Error("Pop did not restore the pushed matrix")
	}

	s.PushMatrix(Identity4())
	if s.Matrix() != Identity4() {
		t.Error("PushMatrix did not make the matrix current")
	}
	s.Reset()
	if s.Depth() != 1 {
		t.Errorf("Reset dropped saved matrices: depth %d", s.Depth())
	}
}

func TestTransformStackPopEmpty(t *testing.T) {
	s := NewTransformStack()
	if err := s.Pop(); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("Pop() on empty stack = %v, want ErrEmptyStack", err)
	}
	s.Push()
	_ = s.Pop()
	if err := s.Pop(); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("second Pop() = %v, want ErrEmptyStack", err)
	}
}

func TestCameraProjectFrontFace(t *testing.T) {
	c := NewCamera(100, 100)
	c.Setup(State{Fov: 90}, Offsets{})

	tests := []struct {
		in   Vec3
		want Point
	}{
		{Vec3{-1, 1, -1}, Point{0, 0}},
		{Vec3{1, -1, -1}, Point{100, 100}},
		{Vec3{0, 0, -1}, Point{50, 50}},
		{Vec3{0, 0.5, -1}, Point{50, 25}},
	}
	for _, tt := range tests {
		got, ok := c.Project(tt.in)
		if !ok || !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("Project(%v) = %v, %v; want %v", tt.in, got, ok, tt.want)
		}
	}
}

func TestCameraBehind(t *testing.T) {
	c := NewCamera(100, 100)
	c.Setup(State{Fov: 90}, Offsets{})
	for _, v := range []Vec3{{0, 0, 1}, {0, 0, 0}, {0, 0, -0.05}, {1, 1, 1}} {
		if p, ok := c.Project(v); ok {
			t.Errorf("Project(%v) = %v, want behind the camera", v, p)
		}
	}
}

func TestCameraYawPitch(t *testing.T) {
	tests := []struct {
		name string
		s    State
		o    Offsets
		look Vec3
	}{
		{"yaw right", State{Yaw: 90, Fov: 90}, Offsets{}, Vec3{1, 0, 0}},
		{"yaw back", State{Yaw: 180, Fov: 90}, Offsets{}, Vec3{0, 0, 1}},
		{"pitch down", State{Pitch: 90, Fov: 90}, Offsets{}, Vec3{0, -1, 0}},
		{"yaw offset", State{Fov: 90}, Offsets{Yaw: -90}, Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(100, 100)
			c.Setup(tt.s, tt.o)
			got, ok := c.Project(tt.look)
			if !ok || !near(got.X, 50) || !near(got.Y, 50) {
				t.Errorf("Project(%v) = %v, %v; want viewport center", tt.look, got, ok)
			}
		})
	}
}
