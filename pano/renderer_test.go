// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

import (
	"errors"
	"slices"
	"testing"
)

func recordingFactory(opts RendererOptions) (Renderer, error) {
	r := NewRecordingRenderer(opts.Width, opts.Height)
	r.SetPixelScale(opts.PixelScale)
	return r, nil
}

// TestRegistryRegister tests renderer registration.
func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("test", 50, recordingFactory, nil)

	entry, ok := r.Get("test")
	if !ok {
		t.Fatal("registered renderer not found")
	}
	if entry.Name != "test" {
		t.Errorf("Name = %s, want test", entry.Name)
	}
	if entry.Priority != 50 {
		t.Errorf("Priority = %d, want 50", entry.Priority)
	}
	if !entry.Available() {
		t.Error("renderer should be available (nil Available func)")
	}

	entry.Priority = 1
	if again, _ := r.Get("test"); again.Priority != 50 {
		t.Error("Get returned the stored entry instead of a copy")
	}
}

// TestRegistryUnregister tests renderer removal.
func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("temp", 10, recordingFactory, nil)
	r.Unregister("temp")

	if _, ok := r.Get("temp"); ok {
		t.Error("renderer should not exist after unregister")
	}
	if list := r.List(); len(list) != 0 {
		t.Errorf("List() = %v, want empty", list)
	}
}

// TestRegistryList tests ordering by priority, then name.
func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register("low", 10, recordingFactory, nil)
	r.Register("high", 100, recordingFactory, nil)
	r.Register("mid-b", 50, recordingFactory, nil)
	r.Register("mid-a", 50, recordingFactory, nil)

	want := []string{"high", "mid-a", "mid-b", "low"}
	if got := r.List(); !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

// TestRegistryNewBest tests selection of the best available renderer.
func TestRegistryNewBest(t *testing.T) {
	r := NewRegistry()
	var created string
	factory := func(name string) RendererFactory {
		return func(opts RendererOptions) (Renderer, error) {
			created = name
			return recordingFactory(opts)
		}
	}
	r.Register("gpu", 100, factory("gpu"), func() bool { return false })
	r.Register("soft", 50, factory("soft"), nil)
	r.Register("fallback", 10, factory("fallback"), nil)

	rend, err := r.New("", RendererOptions{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if created != "soft" {
		t.Errorf("created %q, want soft", created)
	}
	if w, h := rend.Viewport(); w != 640 || h != 480 {
		t.Errorf("Viewport() = %dx%d, want 640x480", w, h)
	}
	if s := rend.PixelScale(); s != 1 {
		t.Errorf("PixelScale() = %g, want 1 by default", s)
	}
}

// TestRegistryNewErrors tests the typed lookup errors.
func TestRegistryNewErrors(t *testing.T) {
	r := NewRegistry()

	if _, err := r.New("", RendererOptions{}); !errors.Is(err, ErrNoRenderer) {
		t.Errorf("empty registry: err = %v, want ErrNoRenderer", err)
	}

	r.Register("gpu", 100, recordingFactory, func() bool { return false })
	if _, err := r.New("", RendererOptions{}); !errors.Is(err, ErrNoRenderer) {
		t.Errorf("nothing available: err = %v, want ErrNoRenderer", err)
	}

	var unavailable *RendererUnavailableError
	if _, err := r.New("gpu", RendererOptions{}); !errors.As(err, &unavailable) || unavailable.Name != "gpu" {
		t.Errorf("unavailable: err = %v", err)
	}

	var notFound *RendererNotFoundError
	if _, err := r.New("vulkan", RendererOptions{}); !errors.As(err, &notFound) || notFound.Name != "vulkan" {
		t.Errorf("unknown: err = %v", err)
	}
}

// TestRegistryFactoryError tests that factory failures are returned.
func TestRegistryFactoryError(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("no device")
	r.Register("gpu", 100, func(RendererOptions) (Renderer, error) { return nil, boom }, nil)

	if _, err := r.New("gpu", RendererOptions{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

// TestGlobalRecordingRenderer tests the built-in registration.
func TestGlobalRecordingRenderer(t *testing.T) {
	if !slices.Contains(List(), "recording") {
		t.Fatalf("List() = %v, missing recording", List())
	}
	rend, err := NewRenderer("recording", RendererOptions{Width: 100, Height: 50, PixelScale: 2})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	rec, ok := rend.(*RecordingRenderer)
	if !ok {
		t.Fatalf("NewRenderer returned %T", rend)
	}
	if rec.PixelScale() != 2 {
		t.Errorf("PixelScale() = %g, want 2", rec.PixelScale())
	}
	if _, ok := rec.Last(); ok {
		t.Error("Last() reported a frame before any render")
	}
}
