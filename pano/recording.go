// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

// Frame is the output of one recorded render pass.
type Frame struct {
	State   State
	Offsets Offsets
	Quads   []Quad
}

// RecordingRenderer is a headless Renderer that keeps the quads of every
// pass. It is registered as "recording".
type RecordingRenderer struct {
	*Camera

	state   State
	offsets Offsets
	frames  []Frame
	partial bool
}

// NewRecordingRenderer returns a recording renderer for a w x h viewport.
func NewRecordingRenderer(w, h int) *RecordingRenderer {
	return &RecordingRenderer{Camera: NewCamera(w, h)}
}

// SetSupportsUpdate controls the value reported by SupportsUpdate.
func (r *RecordingRenderer) SetSupportsUpdate(v bool) {
	r.partial = v
}

// BeginRender implements Renderer.
func (r *RecordingRenderer) BeginRender(s State, o Offsets) {
	r.state, r.offsets = s, o
	r.Setup(s, o)
}

// NewScene implements Renderer.
func (r *RecordingRenderer) NewScene() Scene {
	return &recordingScene{r: r}
}

// EndRender implements Renderer.
func (r *RecordingRenderer) EndRender() {}

// SupportsUpdate implements Renderer.
func (r *RecordingRenderer) SupportsUpdate() bool {
	return r.partial
}

// Frames returns every recorded frame, oldest first.
func (r *RecordingRenderer) Frames() []Frame {
	return r.frames
}

// Last returns the most recent frame and false if nothing was rendered.
func (r *RecordingRenderer) Last() (Frame, bool) {
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Reset drops the recorded frames.
func (r *RecordingRenderer) Reset() {
	r.frames = nil
}

type recordingScene struct {
	r     *RecordingRenderer
	quads []Quad
}

func (s *recordingScene) AddQuad(q Quad) {
	s.quads = append(s.quads, q)
}

func (s *recordingScene) Render() {
	s.r.frames = append(s.r.frames, Frame{State: s.r.state, Offsets: s.r.offsets, Quads: s.quads})
}

func init() {
	Register("recording", 10, func(opts RendererOptions) (Renderer, error) {
		r := NewRecordingRenderer(opts.Width, opts.Height)
		r.SetPixelScale(opts.PixelScale)
		return r, nil
	}, nil)
}
