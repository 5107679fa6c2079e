// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import "fmt"

// Key identifies one tile of the pyramid.
//
// Zoom is 0 at full resolution and decreases by one for every halving, so a
// key at Zoom -2 covers 4x4 full-resolution tiles. Key is comparable and is
// used directly as a map key.
type Key struct {
	Col  int
	Row  int
	Zoom int
}

// String returns the unique textual form I<col>_<row>_<zoom>.
func (k Key) String() string {
	return fmt.Sprintf("I%d_%d_%d", k.Col, k.Row, k.Zoom)
}

// Parent returns the key of the tile one level coarser that covers k.
func (k Key) Parent() Key {
	return Key{Col: k.Col >> 1, Row: k.Row >> 1, Zoom: k.Zoom - 1}
}

// Kind tells how a tile's pixels were obtained.
type Kind uint8

const (
	// Placeholder is the empty image used for out-of-range or unavailable tiles.
	Placeholder Kind = iota

	// Partial is a low-resolution approximation cut from an ancestor or the poster.
	Partial

	// Exact is the real tile as loaded from the source.
	Exact
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Placeholder:
		return "placeholder"
	case Partial:
		return "partial"
	case Exact:
		return "exact"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}
