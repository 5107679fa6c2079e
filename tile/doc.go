// Package tile streams the tiles of an image pyramid.
//
// A pyramid stores the image at full resolution (zoom 0) and at every
// halving down to a small poster image. Each level is cut into square tiles
// addressed by Key.
//
// ImageCache serves decoded images to the planar viewer and TextureCache
// serves GPU textures to panorama faces. Both answer every lookup
// immediately: missing tiles are requested from a Loader in the background
// and replaced meanwhile by a partial image cut from the nearest cached
// ancestor, or from the poster. Caches are bounded and evict least recently
// used tiles in Purge.
//
// Failed loads are retried with exponential backoff and abandoned after the
// configured number of attempts; the tile then keeps its approximation.
//
// Everything in this package runs on the event loop and is not safe for
// concurrent use.
package tile
