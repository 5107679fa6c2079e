// Package bigtile streams very large images and cube-map panoramas as a
// pyramid of progressively detailed tiles.
//
// # Overview
//
// Every frame, a viewer works out which tiles at which zoom level cover the
// viewport, resolves each one through a tile cache, and renders whatever the
// cache hands back: the exact tile, a partial image synthesized from a coarser
// cached ancestor or from the low-resolution poster, or a transparent
// placeholder. Missing tiles are fetched asynchronously and the cache calls
// back when new imagery arrives so the viewer can render again.
//
// # Packages
//
//   - tile: tile keys, the image and texture caches, request coalescing
//   - planar: viewport layout and tile slot grid for flat images
//   - pano: quad-tree subdivision of cube faces, cameras, panoramas
//   - lod: adaptive magnification control for a target frame rate
//   - loader: asynchronous fetch and decode of tiles
//   - texture: GPU texture upload through gpucontext
//   - eventloop: the single-threaded scheduler everything runs on
//
// # Quick Start
//
//	params, err := bigtile.LoadParameters("image.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	loop := eventloop.New()
//	ld := loader.New(loop, loader.Options{})
//	v, err := planar.NewViewer(params, tile.NewFolderSource(params), ld, loop, 800, 600)
//
// # Logging
//
// bigtile is silent by default. Use SetLogger to route diagnostics to a
// [log/slog] logger shared by all sub-packages.
package bigtile
