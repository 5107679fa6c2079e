// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

import "errors"

// ErrEmptyStack is returned by TransformStack.Pop when nothing was pushed.
var ErrEmptyStack = errors.New("pano: pop from empty transform stack")

// TransformStack accumulates a model-view or projection matrix. Every
// operation premultiplies the current matrix, so a transformed point sees
// the operations in the order they were applied.
type TransformStack struct {
	current Mat4
	saved   []Mat4
}

// NewTransformStack returns a stack holding the identity matrix.
func NewTransformStack() *TransformStack {
	return &TransformStack{current: Identity4()}
}

// Reset replaces the current matrix with the identity. Saved matrices are
// kept.
func (s *TransformStack) Reset() {
	s.current = Identity4()
}

// Push saves the current matrix.
func (s *TransformStack) Push() {
	s.saved = append(s.saved, s.current)
}

// PushMatrix saves m and makes it current.
func (s *TransformStack) PushMatrix(m Mat4) {
	s.saved = append(s.saved, m)
	s.current = m
}

// Pop restores the most recently saved matrix.
func (s *TransformStack) Pop() error {
	if len(s.saved) == 0 {
		return ErrEmptyStack
	}
	s.current = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	return nil
}

// Depth returns the number of saved matrices.
func (s *TransformStack) Depth() int {
	return len(s.saved)
}

// Multiply sets the current matrix to m * current.
func (s *TransformStack) Multiply(m Mat4) {
	s.current = m.Mul(s.current)
}

// Translate applies a translation by v.
func (s *TransformStack) Translate(v Vec3) {
	s.Multiply(Translation(v))
}

// RotateX applies a rotation of deg degrees around the X axis.
func (s *TransformStack) RotateX(deg float64) {
	s.Multiply(RotationX(deg))
}

// RotateY applies a rotation of deg degrees around the Y axis.
func (s *TransformStack) RotateY(deg float64) {
	s.Multiply(RotationY(deg))
}

// RotateZ applies a rotation of deg degrees around the Z axis.
func (s *TransformStack) RotateZ(deg float64) {
	s.Multiply(RotationZ(deg))
}

// Perspective applies a perspective projection.
func (s *TransformStack) Perspective(fovy, aspect, near, far float64) {
	s.Multiply(Perspective(fovy, aspect, near, far))
}

// Matrix returns the current matrix.
func (s *TransformStack) Matrix() Mat4 {
	return s.current
}
