// Package render is the render-time front end of cellimage.
//
// An ImageRenderer owns the image pool, slices placed images into per-cell
// fragments and keeps those fragments in a texture atlas. The atlas cache is
// keyed by image identity and slice descriptor and is write-through: a
// fragment is uploaded on the first render that needs it and reused until
// ClearCache or until its image leaves the pool.
//
//	r := render.NewImageRenderer(listener, atlas.New(atlas.DefaultConfig()), cellimage.Sz(8, 16))
//	ref, err := r.Pool().Create(rgba, cellimage.Sz(64, 64))
//	...
//	err = r.RenderImage(ref.Image(), cellimage.Coord(2, 10), cellimage.Sz(8, 4))
//
// Everything runs synchronously on the render loop; nothing here is safe
// for concurrent use.
package render
