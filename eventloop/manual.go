// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package eventloop

import (
	"container/heap"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler for tests. Time only moves when
// Advance is called, and callbacks only run inside Advance or RunPending.
//
// Post and After are safe to call from any goroutine.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers timerHeap
	seq    uint64
}

// NewManual creates a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Post queues fn for the next RunPending or Advance.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// After queues fn to run once the clock has moved d forward.
func (m *Manual) After(d time.Duration, fn func()) {
	m.mu.Lock()
	m.seq++
	heap.Push(&m.timers, &timer{when: m.now.Add(d), seq: m.seq, fn: fn})
	m.mu.Unlock()
}

// Pending returns the number of queued callbacks and timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue) + len(m.timers)
}

// RunPending runs posted callbacks and due timers, including any they
// schedule for the current instant, and returns how many ran.
func (m *Manual) RunPending() int {
	n := 0
	for {
		m.mu.Lock()
		for len(m.timers) > 0 && !m.timers[0].when.After(m.now) {
			t := heap.Pop(&m.timers).(*timer)
			m.queue = append(m.queue, t.fn)
		}
		batch := m.queue
		m.queue = nil
		m.mu.Unlock()

		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			fn()
			n++
		}
	}
}

// Advance moves the clock forward by d, stopping at every timer deadline on
// the way so callbacks observe the time they were scheduled for.
// It returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	n := m.RunPending()
	for {
		m.mu.Lock()
		if len(m.timers) == 0 || m.timers[0].when.After(target) {
			m.now = target
			m.mu.Unlock()
			return n + m.RunPending()
		}
		if m.timers[0].when.After(m.now) {
			m.now = m.timers[0].when
		}
		m.mu.Unlock()
		n += m.RunPending()
	}
}
