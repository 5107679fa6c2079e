// Package pano renders cube-map panoramas from tiled faces.
//
// A Panorama owns six Faces, one per cube side, each backed by a
// tile.TextureCache. Every pass the faces tessellate themselves into a
// quad-tree: a quad is split while its projected edges would stretch a tile
// beyond the maximum texture magnification, and quads that fall outside the
// viewport are dropped together with their whole subtree. The leaves request
// their textures at the matching pyramid level, so only visible tiles at a
// useful resolution are ever loaded.
//
// # Renderers
//
// Drawing is delegated to a Renderer chosen by name from a registry:
//
//	pano.Register("gpu", 100, newGPURenderer, gpuAvailable)
//
//	p.Renderer = "gpu" // or "" for the best available
//	pan, err := pano.NewPanorama(p, pano.Options{...})
//
// The built-in "recording" renderer keeps the quads of every pass and is
// used for headless rendering and tests.
//
// # Animation
//
// SmoothRotate, SmoothRotateTo and AutoRotate step the camera on the
// event loop. Starting an animation cancels the previous one.
package pano
