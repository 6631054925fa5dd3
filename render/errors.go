package render

import "errors"

// Sentinel errors for render operations. Allocation failures are reported
// with cellimage.ErrAtlasAllocationFailed.
var (
	// ErrUnknownImage is returned when rendering an image that is not a live
	// image of the renderer's pool.
	ErrUnknownImage = errors.New("render: image is not in the renderer pool")

	// ErrInvalidCellSize is returned when rendering with a non-positive cell size.
	ErrInvalidCellSize = errors.New("render: invalid cell size")
)
