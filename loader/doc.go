// Package loader fetches and decodes tile images.
//
// HTTPLoader implements tile.Loader. Each Load runs on its own goroutine,
// bounded by a weighted semaphore, and posts its result back to the event
// loop. Concurrent loads of one URL share a single fetch, and recently
// fetched encoded bytes are kept in a sharded LRU so that reloading a tile
// does not hit the network again.
//
// Supported formats: JPEG, PNG, GIF, WebP, BMP and TIFF.
package loader
