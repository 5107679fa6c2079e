// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package eventloop

import (
	"context"
	"time"
)

// Animator hands out cancellation tokens for long-running animations such as
// smooth rotation or fly-to. Starting a new animation cancels the token of
// the previous one; each animation step must check its token before doing
// anything and stop once it is cancelled.
//
// Animator is used from the event loop only and is not safe for concurrent use.
// The zero value is ready to use.
type Animator struct {
	cancel context.CancelFunc
}

// Start cancels the current animation, if any, and returns the token for a
// new one.
func (a *Animator) Start() context.Context {
	a.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	return ctx
}

// Stop cancels the current animation without starting another.
func (a *Animator) Stop() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Repeat runs step on s every interval for as long as ctx is live and step
// returns true. The first step runs one interval from now.
func Repeat(ctx context.Context, s Scheduler, interval time.Duration, step func() bool) {
	var tick func()
	tick = func() {
		if ctx.Err() != nil {
			return
		}
		if step() {
			s.After(interval, tick)
		}
	}
	s.After(interval, tick)
}
