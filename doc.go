// Package cellimage is the in-memory image layer of a terminal emulator.
//
// # Overview
//
// Inline graphics protocols (sixel and friends) decode their payloads into
// RGBA pixel buffers. cellimage stores those buffers, binds them to spans of
// grid cells and cuts them into per-cell fragments that a renderer uploads
// into a texture atlas.
//
// # Quick Start
//
//	pool := cellimage.NewPool()
//
//	ref, err := pool.Create(rgba, cellimage.Sz(80, 40))
//	if err != nil {
//	    return err // malformed payload, the pool is unchanged
//	}
//	defer ref.Release()
//
//	r, err := cellimage.NewRasterizedImage(ref, cellimage.Sz(8, 2),
//	    cellimage.TopStart, cellimage.NoResize)
//	if err != nil {
//	    return err
//	}
//	defer r.Release()
//
//	frag, err := r.Fragment(cellimage.Coord(1, 3))
//	if err != nil {
//	    return err
//	}
//	defer frag.Release()
//	pixels := frag.Data()
//
// # Lifetime
//
// Every pooled Image is reference counted. Ref is the counted handle:
// Clone shares, Move hands over, Release drops. Fragments, rasterized
// images and named images hold their own references. When the last
// reference is released the image removes itself from its Pool; releasing
// more references than were taken panics with ErrRefCountUnderflow.
//
// # Concurrency
//
// Pools, images and references are single-threaded by design and must be
// used from the goroutine driving the render loop.
//
// # Sub-packages
//
//   - atlas: shelf-packed texture atlas with GPU upload
//   - render: ImageRenderer, the render-time front end with the atlas cache
//   - preview: terminal preview of rendered slices using tcell
//   - config: TOML configuration
package cellimage
