// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lod

import (
	"context"
	"time"

	"github.com/gogpu/bigtile"
	"github.com/gogpu/bigtile/eventloop"
	"github.com/gogpu/bigtile/pano"
)

const (
	// warmupFrames are sampled unconditionally; after that only every
	// sampleEvery-th frame is.
	warmupFrames = 20
	sampleEvery  = 5

	// window is the number of samples averaged before an adjustment.
	window = 5
)

// Target is the viewer whose magnification the monitor controls.
// *pano.Panorama implements it.
type Target interface {
	MaxTextureMagnification() float64
	SetMaxTextureMagnification(m float64)
	Render(cause pano.Cause)
}

// Monitor adapts the texture magnification of a Target to hold a frame
// rate. Register Listener as a render listener of the target.
//
// A Monitor is used from the event loop only.
type Monitor struct {
	params bigtile.LODParameters
	target Target
	sched  eventloop.Scheduler

	lower, upper time.Duration

	magnification float64

	frames      int
	samples     int
	total       time.Duration
	samplesLast int
	totalLast   time.Duration
	lastRender  time.Time

	hqRender  bool // inside the high-quality pass
	hqMode    bool // the last pass was the high-quality pass
	hqWaiting bool // a high-quality tick is scheduled
	hq        eventloop.Animator
	hqCtx     context.Context
}

// NewMonitor creates a monitor for t. The starting magnification is the
// target's current one, clamped to [MinMag, MaxMag].
func NewMonitor(p bigtile.LODParameters, t Target, s eventloop.Scheduler) (*Monitor, error) {
	m := &Monitor{target: t, sched: s}
	if err := m.SetParameters(p); err != nil {
		return nil, err
	}
	m.magnification = m.clamp(t.MaxTextureMagnification())
	m.hqCtx = m.hq.Start()
	return m, nil
}

// SetParameters replaces the monitor settings.
func (m *Monitor) SetParameters(p bigtile.LODParameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.params = p
	target := time.Duration(float64(time.Second) / p.TargetFPS)
	m.lower = time.Duration(float64(target) / (1 + p.Tolerance))
	m.upper = time.Duration(float64(target) * (1 + p.Tolerance))
	m.magnification = m.clamp(m.magnification)
	return nil
}

func (m *Monitor) clamp(mag float64) float64 {
	return max(m.params.MinMag, min(m.params.MaxMag, mag))
}

// Magnification returns the adaptive magnification.
func (m *Monitor) Magnification() float64 {
	return m.magnification
}

// Samples returns the number of render times measured so far.
func (m *Monitor) Samples() int {
	return m.samples
}

// AverageRenderTime returns the mean of every sample, or 0 before the first.
func (m *Monitor) AverageRenderTime() time.Duration {
	if m.samples == 0 {
		return 0
	}
	return m.total / time.Duration(m.samples)
}

// AverageRenderTimeLast returns the mean of the samples in the current
// window, or 0 when the window is empty.
func (m *Monitor) AverageRenderTimeLast() time.Duration {
	if m.samplesLast == 0 {
		return 0
	}
	return m.totalLast / time.Duration(m.samplesLast)
}

// IncreaseDetail lowers the magnification by one step, down to MinMag.
func (m *Monitor) IncreaseDetail() {
	m.magnification = max(m.params.MinMag, m.magnification/(1+m.params.Rate))
}

// DecreaseDetail raises the magnification by one step, up to MaxMag.
func (m *Monitor) DecreaseDetail() {
	m.magnification = min(m.params.MaxMag, m.magnification*(1+m.params.Rate))
}

// Listener observes the target's render passes.
func (m *Monitor) Listener(phase pano.Phase, cause pano.Cause) {
	if m.hqRender {
		return
	}
	if m.hqMode && cause == pano.CauseTextureUpdate {
		// New tiles while the view is at rest: keep it sharp.
		m.target.SetMaxTextureMagnification(m.params.MinMag)
		return
	}
	m.hqMode = false
	m.target.SetMaxTextureMagnification(m.magnification)

	if phase != pano.PhaseBegin {
		return
	}
	m.frames++
	now := m.sched.Now()
	m.lastRender = now
	if m.frames <= warmupFrames || m.frames%sampleEvery == 0 {
		m.sched.Post(func() {
			m.sample(m.sched.Now().Sub(now))
		})
	}
	if !m.hqWaiting && m.hqCtx.Err() == nil {
		m.hqWaiting = true
		m.sched.After(m.params.HQRenderInterval, m.hqTick)
	}
}

func (m *Monitor) sample(d time.Duration) {
	m.samples++
	m.total += d
	m.samplesLast++
	m.totalLast += d
	if m.samplesLast < window {
		return
	}

	avg := m.totalLast / time.Duration(m.samplesLast)
	prev := m.magnification
	switch {
	case avg < m.lower:
		m.IncreaseDetail()
	case avg > m.upper:
		m.DecreaseDetail()
	}
	if m.magnification != prev {
		bigtile.Logger().Debug("lod: magnification changed", "from", prev, "to", m.magnification, "avg", avg)
	}
	m.samplesLast = 0
	m.totalLast = 0
}

func (m *Monitor) hqTick() {
	if m.hqCtx.Err() != nil {
		m.hqWaiting = false
		return
	}
	if m.sched.Now().Sub(m.lastRender) <= m.params.HQRenderDelay {
		m.sched.After(m.params.HQRenderInterval, m.hqTick)
		return
	}

	bigtile.Logger().Debug("lod: high-quality pass", "mag", m.params.HQRenderMag)
	m.hqRender = true
	m.hqMode = true
	m.target.SetMaxTextureMagnification(m.params.HQRenderMag)
	m.target.Render(pano.CauseHighQuality)
	m.hqRender = false
	m.hqWaiting = false
}

// Close stops the high-quality timer. Listener keeps adjusting the
// magnification but no further high-quality passes are scheduled.
func (m *Monitor) Close() {
	m.hq.Stop()
}
