// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package eventloop

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/bigtile"
)

// ErrRunning is returned by Run when the loop is already running.
var ErrRunning = errors.New("eventloop: loop already running")

// Scheduler runs callbacks on a single logical thread.
//
// Caches, layouts and cameras are only ever mutated from callbacks run by the
// scheduler, so they need no locking. Post and After may be called from any
// goroutine; the callbacks themselves never run concurrently with each other.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// Post queues fn to run on the next turn of the loop.
	Post(fn func())

	// After queues fn to run once d has elapsed.
	After(d time.Duration, fn func())
}

// Loop is a Scheduler backed by one goroutine running Run.
//
// Loop is safe for concurrent use. It must not be copied after creation.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	timers timerHeap
	seq    uint64

	// wake has capacity 1; a pending value means "queue changed".
	wake    chan struct{}
	running atomic.Bool
}

// New creates a stopped loop. Call Run to start processing callbacks.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
}

// After queues fn to run on the loop goroutine once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) {
	l.mu.Lock()
	l.seq++
	heap.Push(&l.timers, &timer{when: time.Now().Add(d), seq: l.seq, fn: fn})
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes callbacks until ctx is cancelled. It returns ctx.Err().
// Callbacks not yet run when ctx is cancelled stay queued for the next Run.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	bigtile.Logger().Info("eventloop: started")
	defer bigtile.Logger().Info("eventloop: stopped")

	for {
		batch, wait := l.take(time.Now())
		for i, fn := range batch {
			if ctx.Err() != nil {
				l.requeue(batch[i:])
				return ctx.Err()
			}
			fn()
		}
		if len(batch) > 0 {
			continue
		}

		var timerC <-chan time.Time
		var t *time.Timer
		if wait >= 0 {
			t = time.NewTimer(wait)
			timerC = t.C
		}
		select {
		case <-ctx.Done():
			if t != nil {
				t.Stop()
			}
			return ctx.Err()
		case <-l.wake:
		case <-timerC:
		}
		if t != nil {
			t.Stop()
		}
	}
}

// requeue puts callbacks that were taken but not run back at the head of
// the queue, so a later Run executes them first.
func (l *Loop) requeue(fns []func()) {
	l.mu.Lock()
	l.queue = append(fns[:len(fns):len(fns)], l.queue...)
	l.mu.Unlock()
	bigtile.Logger().Debug("eventloop: stopped with callbacks queued", "count", len(fns))
}

// take moves due timers into the queue and returns everything runnable.
// wait is the delay until the next timer, or -1 if none is pending.
func (l *Loop) take(now time.Time) (batch []func(), wait time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for len(l.timers) > 0 && !l.timers[0].when.After(now) {
		t := heap.Pop(&l.timers).(*timer)
		l.queue = append(l.queue, t.fn)
	}
	batch = l.queue
	l.queue = nil

	wait = -1
	if len(l.timers) > 0 {
		wait = l.timers[0].when.Sub(now)
	}
	return batch, wait
}

// timer is a delayed callback. seq keeps timers with equal deadlines FIFO.
type timer struct {
	when time.Time
	seq  uint64
	fn   func()
}

// timerHeap is a min-heap of timers ordered by deadline.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(*timer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
