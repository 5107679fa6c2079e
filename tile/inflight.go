// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tile

import "image"

// inflight tracks outstanding tile requests. A key is present from the moment
// its request is issued until the load completes, and carries the callbacks
// waiting for it in registration order.
type inflight struct {
	waiters map[Key][]func(image.Image, error)
}

func newInflight() inflight {
	return inflight{waiters: make(map[Key][]func(image.Image, error))}
}

// add registers done for k and reports whether k was not yet in flight,
// in which case the caller must issue the request.
func (f *inflight) add(k Key, done func(image.Image, error)) bool {
	ws, ok := f.waiters[k]
	if done != nil {
		ws = append(ws, done)
	}
	f.waiters[k] = ws
	return !ok
}

// take removes k and returns its waiters.
func (f *inflight) take(k Key) []func(image.Image, error) {
	ws := f.waiters[k]
	delete(f.waiters, k)
	return ws
}

func (f *inflight) has(k Key) bool {
	_, ok := f.waiters[k]
	return ok
}

func (f *inflight) len() int { return len(f.waiters) }
