package atlas

import "errors"

// Atlas-related errors.
var (
	// ErrAtlasFull is returned when the atlas cannot fit the requested slice.
	ErrAtlasFull = errors.New("atlas: texture atlas is full")

	// ErrAtlasClosed is returned when operating on a closed atlas.
	ErrAtlasClosed = errors.New("atlas: texture atlas is closed")

	// ErrUnknownSlice is returned for handles that were never reserved or
	// were already released.
	ErrUnknownSlice = errors.New("atlas: unknown slice handle")

	// ErrInvalidSliceData is returned when slice pixels do not match the
	// slice size.
	ErrInvalidSliceData = errors.New("atlas: slice data does not match size")

	// ErrNoTextureCreator is returned by Presenter when the draw context
	// cannot create textures.
	ErrNoTextureCreator = errors.New("atlas: draw context has no texture creator")

	// ErrInvalidTexture is returned by Presenter when the host texture cannot
	// be drawn.
	ErrInvalidTexture = errors.New("atlas: host texture is not drawable")
)
