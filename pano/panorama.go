// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

import (
	"fmt"
	"math"
	"time"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
	"github.com/gogpu/bigtile/tile"
)

const (
	defaultFov = 45.0

	// rotateStep is the interval between smooth rotation steps.
	rotateStep = 16 * time.Millisecond

	// idleTick is the resolution of AutoRotateWhenIdle.
	idleTick = time.Second

	// settle is the step below which a smooth rotation counts as arrived.
	settle = 1e-9
)

// Phase tells render listeners whether a pass is starting or finished.
type Phase int

const (
	PhaseBegin Phase = iota
	PhaseEnd
)

// String returns the phase name.
func (p Phase) String() string {
	if p == PhaseBegin {
		return "begin"
	}
	return "end"
}

// Cause tells render listeners why a pass was started.
type Cause int

const (
	// CauseNone is a plain redraw (interaction, resize, animation).
	CauseNone Cause = iota
	// CauseTextureUpdate is a redraw after new tiles arrived.
	CauseTextureUpdate
	// CauseHighQuality is the idle high-quality pass.
	CauseHighQuality
)

// String returns the cause name.
func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseTextureUpdate:
		return "texture-update"
	case CauseHighQuality:
		return "high-quality"
	default:
		return fmt.Sprintf("Cause(%d)", int(c))
	}
}

// RenderListener observes render passes.
type RenderListener func(phase Phase, cause Cause)

// Options supplies the collaborators of a Panorama.
type Options struct {
	Scheduler eventloop.Scheduler
	Loader    tile.Loader
	Uploader  tile.TextureUploader

	// Source returns the tile source of one face. The default is the
	// folder layout of the parameters with a "face_<name>" prefix.
	Source func(face string) tile.Source

	// FaceParameters returns the parameters of one face, starting from the
	// panorama parameters. Faces may differ in size and tiling; see
	// DescriptorParameters. The default uses the panorama parameters for
	// every face.
	FaceParameters func(face string, p bigtile.Parameters) (bigtile.Parameters, error)

	// Registry resolves Parameters.Renderer. The default is the global
	// registry.
	Registry *Registry

	ViewportWidth, ViewportHeight int
	PixelScale                    float64

	// OnLoad is called once every face's poster has arrived.
	OnLoad func()
}

// faceGeometry is the cube layout: key, top-left corner, u and v.
var faceGeometry = [6]struct {
	name    string
	topLeft Vec3
	u, v    Vec3
}{
	{"f", Vec3{-1, 1, -1}, Vec3{1, 0, 0}, Vec3{0, -1, 0}},
	{"b", Vec3{1, 1, 1}, Vec3{-1, 0, 0}, Vec3{0, -1, 0}},
	{"l", Vec3{-1, 1, 1}, Vec3{0, 0, -1}, Vec3{0, -1, 0}},
	{"r", Vec3{1, 1, -1}, Vec3{0, 0, 1}, Vec3{0, -1, 0}},
	{"u", Vec3{-1, 1, 1}, Vec3{1, 0, 0}, Vec3{0, 0, -1}},
	{"d", Vec3{-1, -1, -1}, Vec3{1, 0, 0}, Vec3{0, 0, 1}},
}

// FaceNames lists the cube faces in render order.
var FaceNames = [6]string{"f", "b", "l", "r", "u", "d"}

type listener struct {
	id int
	fn RenderListener
}

// Panorama is a cube-map panorama viewer: six faces, a camera and a
// renderer.
//
// Panorama is used from the event loop only.
type Panorama struct {
	params   bigtile.Parameters
	sched    eventloop.Scheduler
	renderer Renderer
	faces    [6]*Face
	caches   [6]*tile.TextureCache

	state   State
	offsets Offsets
	mag     float64

	listeners []listener
	nextID    int

	asapPending bool
	rotation    eventloop.Animator

	idleCount, idleMax int
	idle               eventloop.Animator

	onLoad func()
	loaded bool
	ready  bool
}

// NewPanorama creates the panorama described by p. It fails on invalid
// parameters and on an unknown renderer name.
func NewPanorama(p bigtile.Parameters, opts Options) (*Panorama, error) {
	if err := p.ValidatePanorama(); err != nil {
		return nil, err
	}
	reg := opts.Registry
	if reg == nil {
		reg = globalRegistry
	}
	r, err := reg.New(p.Renderer, RendererOptions{
		Width:      opts.ViewportWidth,
		Height:     opts.ViewportHeight,
		PixelScale: opts.PixelScale,
	})
	if err != nil {
		return nil, err
	}

	pan := &Panorama{
		params:   p,
		sched:    opts.Scheduler,
		renderer: r,
		mag:      p.MaxTextureMagnification,
		offsets:  Offsets{Yaw: p.YawOffset, Pitch: p.PitchOffset, Roll: p.RollOffset},
		idleMax:  -1,
		onLoad:   opts.OnLoad,
	}
	for i, g := range faceGeometry {
		fp, err := pan.faceParameters(g.name, opts.FaceParameters)
		if err != nil {
			pan.Close()
			return nil, fmt.Errorf("pano: face %s: %w", g.name, err)
		}
		var src tile.Source = tile.NewFolderSource(fp).Face(g.name)
		if opts.Source != nil {
			src = opts.Source(g.name)
		}

		var face *Face
		c, err := tile.NewTextureCache(fp, src, opts.Loader, opts.Uploader, opts.Scheduler, func() {
			if face == nil || !pan.ready {
				return
			}
			face.MarkUpdated()
			pan.facesLoaded()
			pan.RenderUpdated(CauseTextureUpdate)
		})
		if err != nil {
			pan.Close()
			return nil, fmt.Errorf("pano: face %s: %w", g.name, err)
		}
		face = NewFace(g.name, g.topLeft, 2, g.u, g.v, fp, c)
		pan.faces[i] = face
		pan.caches[i] = c
	}

	pan.SetPitch(0)
	pan.SetYaw(0)
	pan.SetFov(defaultFov)
	pan.ready = true
	pan.facesLoaded()
	bigtile.Logger().Info("pano: created", "width", p.Width, "tile_size", p.TileSize,
		"max_divisions", pan.faces[0].MaxDivisions())
	return pan, nil
}

func (p *Panorama) faceParameters(name string, fn func(string, bigtile.Parameters) (bigtile.Parameters, error)) (bigtile.Parameters, error) {
	if fn == nil {
		return p.params, nil
	}
	fp, err := fn(name, p.params)
	if err != nil {
		return fp, err
	}
	return fp, fp.ValidatePanorama()
}

// DescriptorParameters returns a FaceParameters function that reads each
// face's geometry from the descriptor of its "face_<name>" folder. fetch
// is called on the construction path and may block.
func DescriptorParameters(fetch func(url string) ([]byte, error)) func(string, bigtile.Parameters) (bigtile.Parameters, error) {
	return func(face string, p bigtile.Parameters) (bigtile.Parameters, error) {
		raw, err := fetch(tile.NewFolderSource(p).Face(face).DescriptorURL())
		if err != nil {
			return p, err
		}
		d, err := tile.ParseDescriptor(raw)
		if err != nil {
			return p, err
		}
		d.Apply(&p)
		return p, nil
	}
}

// facesLoaded fires OnLoad the first time every face has its poster.
func (p *Panorama) facesLoaded() {
	if p.loaded {
		return
	}
	for _, c := range p.caches {
		if c == nil || !c.PosterReady() {
			return
		}
	}
	p.loaded = true
	bigtile.Logger().Info("pano: all faces loaded")
	if p.onLoad != nil {
		p.onLoad()
	}
}

// Faces returns the six faces in render order.
func (p *Panorama) Faces() []*Face {
	return p.faces[:]
}

// Renderer returns the active renderer.
func (p *Panorama) Renderer() Renderer {
	return p.renderer
}

// Stats returns the cache statistics of each face.
func (p *Panorama) Stats() map[string]tile.Stats {
	s := make(map[string]tile.Stats, len(p.caches))
	for i, c := range p.caches {
		s[p.faces[i].Name()] = c.Stats()
	}
	return s
}

// State returns the camera state.
func (p *Panorama) State() State {
	return p.state
}

// Yaw returns the camera yaw in degrees.
func (p *Panorama) Yaw() float64 { return p.state.Yaw }

// Pitch returns the camera pitch in degrees.
func (p *Panorama) Pitch() float64 { return p.state.Pitch }

// Fov returns the vertical field of view in degrees.
func (p *Panorama) Fov() float64 { return p.state.Fov }

// SetYaw sets the yaw, snapped into the allowed interval.
func (p *Panorama) SetYaw(y float64) {
	p.state.Yaw = SnapYaw(y, p.params.MinYaw, p.params.MaxYaw)
}

// SetPitch sets the pitch, clamped to the allowed range.
func (p *Panorama) SetPitch(pitch float64) {
	p.state.Pitch = p.snapPitch(pitch)
}

// SetFov sets the field of view, clamped to the allowed range.
func (p *Panorama) SetFov(fov float64) {
	p.state.Fov = max(p.params.MinFov, min(p.params.MaxFov, fov))
}

// SetTranslation moves the camera inside the cube.
func (p *Panorama) SetTranslation(x, y, z float64) {
	p.state.TX, p.state.TY, p.state.TZ = x, y, z
}

// Translation returns the camera translation.
func (p *Panorama) Translation() Vec3 {
	return Vec3{p.state.TX, p.state.TY, p.state.TZ}
}

func (p *Panorama) snapPitch(pitch float64) float64 {
	return max(p.params.MinPitch, min(p.params.MaxPitch, pitch))
}

// MaxTextureMagnification returns the largest texture stretch allowed
// before a face quad is subdivided.
func (p *Panorama) MaxTextureMagnification() float64 {
	return p.mag
}

// SetMaxTextureMagnification sets the magnification used by the next pass.
func (p *Panorama) SetMaxTextureMagnification(m float64) {
	p.mag = m
}

// MinFovFromViewport returns the smallest field of view, in degrees, at
// which the faces are not stretched beyond the maximum magnification.
func (p *Panorama) MinFovFromViewport() float64 {
	_, vh := p.renderer.Viewport()
	edge := p.mag * float64(p.params.Height) / 2
	return 2 * math.Atan(float64(vh)/2/edge) * 180 / math.Pi
}

// OnRender registers l for every pass and returns a function that removes
// it.
func (p *Panorama) OnRender(l RenderListener) (remove func()) {
	p.nextID++
	id := p.nextID
	p.listeners = append(p.listeners, listener{id: id, fn: l})
	return func() {
		for i, e := range p.listeners {
			if e.id == id {
				p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

func (p *Panorama) notify(phase Phase, cause Cause) {
	// Listeners may register or remove others while being called.
	ls := p.listeners
	for _, l := range ls {
		l.fn(phase, cause)
	}
}

// Render draws every face.
func (p *Panorama) Render(cause Cause) {
	p.render(cause, false)
}

// RenderUpdated draws only the faces with new textures when the renderer
// supports partial updates, and everything otherwise.
func (p *Panorama) RenderUpdated(cause Cause) {
	p.render(cause, p.renderer.SupportsUpdate())
}

// RenderAsap schedules a full render on the next turn of the event loop.
// Calls made before it runs are coalesced.
func (p *Panorama) RenderAsap() {
	if p.asapPending {
		return
	}
	p.asapPending = true
	p.sched.Post(func() {
		p.asapPending = false
		p.Render(CauseNone)
	})
}

func (p *Panorama) render(cause Cause, onlyUpdated bool) {
	p.notify(PhaseBegin, cause)
	p.renderer.BeginRender(p.state, p.offsets)

	scene := p.renderer.NewScene()
	for _, f := range p.faces {
		if onlyUpdated && !f.Updated() {
			continue
		}
		f.Render(scene, p.renderer, p.mag)
	}
	scene.Render()

	for _, f := range p.faces {
		f.EndRender()
	}
	p.renderer.EndRender()
	p.notify(PhaseEnd, cause)
}

// Resize changes the viewport size and schedules a render.
func (p *Panorama) Resize(w, h int) {
	p.renderer.Resize(w, h)
	p.RenderAsap()
}

// ScreenToRayDelta returns the camera-space direction through viewport
// point (x, y).
func (p *Panorama) ScreenToRayDelta(x, y float64) Vec3 {
	vw, vh := p.renderer.Viewport()
	hw, hh := float64(vw)/2, float64(vh)/2
	edgeY := math.Tan(p.state.Fov / 2 * math.Pi / 180)
	edgeX := edgeY * float64(vw) / float64(vh)
	return Vec3{
		X: (x - hw) * edgeX / hw,
		Y: (y - hh) * edgeY / hh,
		Z: -1,
	}
}

// SmoothRotate animates the camera by calling dyaw, dpitch and dfov for
// the step to apply every frame. Nil functions leave their angle alone.
// The animation ends when all steps are zero or when a newer animation
// starts; calling SmoothRotate with no functions only stops the current
// one.
func (p *Panorama) SmoothRotate(dyaw, dpitch, dfov func() float64) {
	ctx := p.rotation.Start()
	if dyaw == nil && dpitch == nil && dfov == nil {
		p.rotation.Stop()
		return
	}
	step := func() bool {
		moved := false
		if dyaw != nil {
			if d := dyaw(); math.Abs(d) > settle {
				p.SetYaw(p.Yaw() + d)
				moved = true
			}
		}
		if dpitch != nil {
			if d := dpitch(); math.Abs(d) > settle {
				p.SetPitch(p.Pitch() + d)
				moved = true
			}
		}
		if dfov != nil {
			if d := dfov(); math.Abs(d) > settle {
				p.SetFov(p.Fov() + d)
				moved = true
			}
		}
		p.Render(CauseNone)
		return moved
	}
	if step() {
		eventloop.Repeat(ctx, p.sched, rotateStep, step)
	}
}

// StopRotating stops the current smooth rotation.
func (p *Panorama) StopRotating() {
	p.SmoothRotate(nil, nil, nil)
}

// SmoothRotateTo animates the camera to the given angles at speed degrees
// per step.
func (p *Panorama) SmoothRotateTo(yaw, pitch, fov, speed float64) {
	yaw = SnapYaw(yaw, p.params.MinYaw, p.params.MaxYaw)
	pitch = p.snapPitch(pitch)
	p.SmoothRotate(
		func() float64 {
			return -Ease(0, CircleDistance(normDeg(yaw), normDeg(p.Yaw())), speed, 0)
		},
		func() float64 { return Ease(p.Pitch(), pitch, speed, 0) },
		func() float64 { return Ease(p.Fov(), fov, speed, 0) },
	)
}

// SmoothRotateToXY turns the camera toward viewport point (x, y).
func (p *Panorama) SmoothRotateToXY(x, y float64) {
	ray := p.ScreenToRayDelta(x, y)
	dpitch := math.Atan(ray.Y) * 180 / math.Pi
	dyaw := math.Atan(ray.X) * 180 / math.Pi
	p.SmoothRotateTo(p.Yaw()+dyaw, p.Pitch()+dpitch, p.Fov(), p.Fov()/200)
}

// AutoRotate pans the camera continuously, bouncing off the yaw limits,
// while easing pitch to 0 and the field of view to the default.
func (p *Panorama) AutoRotate() {
	speed := p.Fov() / 400
	dy := speed
	p.SmoothRotate(
		func() float64 {
			if !yawAllowed(p.Yaw()+dy, p.params.MinYaw, p.params.MaxYaw) {
				dy = -dy
			}
			return dy
		},
		func() float64 { return Ease(p.Pitch(), 0, speed, 0) },
		func() float64 { return Ease(p.Fov(), defaultFov, 0.1, 0) },
	)
}

// AutoRotateWhenIdle starts AutoRotate after the given number of seconds
// without a ResetIdle. A negative value disables it.
func (p *Panorama) AutoRotateWhenIdle(seconds int) {
	p.idleMax = seconds
	p.idleCount = 0
	if seconds < 0 {
		p.idle.Stop()
		return
	}
	ctx := p.idle.Start()
	eventloop.Repeat(ctx, p.sched, idleTick, func() bool {
		p.idleCount++
		if p.idleCount == p.idleMax {
			p.AutoRotate()
		}
		return true
	})
}

// ResetIdle restarts the idle countdown. Input handlers call it.
func (p *Panorama) ResetIdle() {
	p.idleCount = 0
}

// Close stops animations and releases every face texture.
func (p *Panorama) Close() {
	p.rotation.Stop()
	p.idle.Stop()
	for _, c := range p.caches {
		if c != nil {
			c.Close()
		}
	}
}
