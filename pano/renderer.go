// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pano

import (
	"errors"
	"sort"
	"sync"
)

// Renderer draws the quads produced by the panorama faces.
type Renderer interface {
	Projector

	// BeginRender sets up the camera for a pass.
	BeginRender(s State, o Offsets)

	// NewScene returns an empty scene for the pass.
	NewScene() Scene

	// EndRender finishes the pass.
	EndRender()

	// SupportsUpdate reports whether a pass may redraw a subset of the
	// faces on top of the previous frame.
	SupportsUpdate() bool

	// Resize changes the viewport size.
	Resize(w, h int)
}

// RendererOptions configures a new renderer.
type RendererOptions struct {
	Width, Height int

	// PixelScale is the device pixel ratio. Zero means 1.
	PixelScale float64
}

// RendererFactory creates a renderer.
type RendererFactory func(opts RendererOptions) (Renderer, error)

// RegistryEntry represents a registered renderer.
type RegistryEntry struct {
	// Name is the unique identifier for this renderer.
	Name string

	// Priority determines selection order when no renderer is named
	// (higher = preferred).
	Priority int

	// Factory creates renderer instances.
	Factory RendererFactory

	// Available reports if the renderer can run on this system.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry maps renderer names to factories.
//
// Example registration:
//
//	func init() {
//	    pano.Register("gpu", 100, gpuFactory, gpuAvailable)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and NewRenderer.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a renderer to the global registry.
// If available is nil, the renderer is assumed always available.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, factory RendererFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a renderer from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered renderer names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// NewRenderer creates a renderer from the global registry. An empty name
// selects the best available renderer.
func NewRenderer(name string, opts RendererOptions) (Renderer, error) {
	return globalRegistry.New(name, opts)
}

// Register adds a renderer to this registry.
func (r *Registry) Register(name string, priority int, factory RendererFactory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a renderer from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered renderer names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Get returns information about a specific renderer.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	entryCopy := *entry
	return &entryCopy, true
}

// New creates a renderer by name, or the best available one when name is
// empty.
func (r *Registry) New(name string, opts RendererOptions) (Renderer, error) {
	if opts.PixelScale == 0 {
		opts.PixelScale = 1
	}
	if name == "" {
		r.mu.RLock()
		available := r.sortedNames(true)
		r.mu.RUnlock()
		if len(available) == 0 {
			return nil, ErrNoRenderer
		}
		name = available[0]
	}

	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &RendererNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &RendererUnavailableError{Name: name}
	}
	return entry.Factory(opts)
}

// sortedNames returns renderer names sorted by priority (highest first),
// then by name. Must be called with lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}
	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// ErrNoRenderer is returned when no renderer is registered or available.
var ErrNoRenderer = errors.New("pano: no renderer available")

// RendererNotFoundError indicates a named renderer is not registered.
type RendererNotFoundError struct {
	Name string
}

func (e *RendererNotFoundError) Error() string {
	return "pano: renderer not found: " + e.Name
}

// RendererUnavailableError indicates a renderer exists but cannot run.
type RendererUnavailableError struct {
	Name string
}

func (e *RendererUnavailableError) Error() string {
	return "pano: renderer unavailable: " + e.Name
}
