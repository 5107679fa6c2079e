// Package eventloop provides the single-threaded scheduler that drives the
// viewer.
//
// All cache, layout and camera state is mutated from callbacks run by a
// Scheduler. Background work such as tile fetching happens on other
// goroutines and posts its completion back with Scheduler.Post, so the
// callbacks never race with each other.
//
// Loop is the production scheduler. Manual is a deterministic clock for
// tests: nothing runs until Advance or RunPending is called.
//
// Animator hands out context tokens so that starting a new animation stops
// the previous one.
package eventloop
