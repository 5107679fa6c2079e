// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package eventloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLoopRunsPostedCallbacksInOrder(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() { close(done) })

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("posted callbacks did not run")
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("callback order = %v, want 0..4", got)
		}
	}
}

func TestLoopPostFromOtherGoroutines(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	count := 0 // only touched on the loop goroutine
	for i := 0; i < n; i++ {
		go l.Post(func() {
			count++
			wg.Done()
		})
	}

	waitOrFail(t, &wg)
	result := make(chan int)
	l.Post(func() { result <- count })
	if got := <-result; got != n {
		t.Errorf("count = %d, want %d", got, n)
	}
}

func TestLoopAfterOrdering(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	order := make(chan string, 3)
	l.After(30*time.Millisecond, func() { order <- "late" })
	l.After(10*time.Millisecond, func() { order <- "early" })
	l.Post(func() { order <- "now" })

	want := []string{"now", "early", "late"}
	for _, w := range want {
		select {
		case got := <-order:
			if got != w {
				t.Fatalf("got %q, want %q", got, w)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}

func TestLoopRunTwice(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	l.Post(func() { close(started) })
	go func() { _ = l.Run(ctx) }()
	<-started

	if err := l.Run(ctx); !errors.Is(err, ErrRunning) {
		t.Errorf("second Run() = %v, want ErrRunning", err)
	}
}

func TestLoopKeepsCallbacksAfterCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())

	var got []int
	l.Post(func() { got = append(got, 1) })
	l.Post(func() {
		got = append(got, 2)
		cancel()
	})
	l.Post(func() { got = append(got, 3) })
	l.Post(func() { got = append(got, 4) })

	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if len(got) != 2 {
		t.Fatalf("ran %v before cancellation, want [1 2]", got)
	}

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	l.Post(func() {
		got = append(got, 5)
		cancel2()
	})
	_ = l.Run(ctx2)
	want := []int{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("callbacks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("callbacks = %v, want %v", got, want)
		}
	}
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}
