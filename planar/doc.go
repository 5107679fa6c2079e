// Package planar displays flat tiled images.
//
// ComputeLayout turns a camera (center and log2 zoom) and a viewport size
// into a grid of tile slots. A TileLayer walks that grid, resolving each
// visible slot through a tile cache, and Compose draws the result in
// software. Viewer ties it together: it clamps the camera to the image and
// zoom range, animates FlyTo on the event loop, and relays out whenever the
// camera moves or new tiles arrive.
//
//	v, _ := planar.NewViewer(p, loop, 800, 600)
//	c, _ := tile.NewImageCache(p, tile.NewFolderSource(p), ld, loop, v.Layout)
//	v.AddLayer(planar.NewTileLayer(c, p))
//	v.MoveTo(x, y, -1)
package planar
