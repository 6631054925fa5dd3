package cellimage

import "errors"

// Sentinel errors for image operations.
var (
	// ErrInvalidImageData is returned when an RGBA buffer does not hold
	// exactly width*height*4 bytes, or when the size is negative.
	ErrInvalidImageData = errors.New("cellimage: invalid image data")

	// ErrSizeMismatch is returned when a color array does not hold exactly
	// width*height colors.
	ErrSizeMismatch = errors.New("cellimage: color count does not match image size")

	// ErrOutOfBounds is returned when a fragment rectangle exceeds the
	// parent image.
	ErrOutOfBounds = errors.New("cellimage: fragment out of image bounds")

	// ErrOutOfRange is returned when a grid position lies outside the cell
	// span of a rasterized image.
	ErrOutOfRange = errors.New("cellimage: cell position out of range")

	// ErrInvalidCellSpan is returned when a cell span has a zero or negative
	// component.
	ErrInvalidCellSpan = errors.New("cellimage: invalid cell span")

	// ErrRefCountUnderflow is the panic value raised when an image is
	// released more often than it was referenced. It always indicates a
	// bookkeeping bug and is never returned as an error.
	ErrRefCountUnderflow = errors.New("cellimage: image reference count underflow")

	// ErrAtlasAllocationFailed is returned by renderers when the atlas
	// backend could not hold a fragment. The render call is skipped; later
	// calls may succeed.
	ErrAtlasAllocationFailed = errors.New("cellimage: atlas allocation failed")
)
