package cellimage

import "fmt"

// RasterizedImage binds an image to a span of grid cells together with the
// placement policies used when the span does not match the image's natural
// size.
type RasterizedImage struct {
	image        Ref
	cellSpan     Size
	alignment    Alignment
	resize       Resize
	columnOffset bool
}

// NewRasterizedImage creates a rasterized image spanning cellSpan grid
// cells (columns x rows). It takes its own reference to the image.
func NewRasterizedImage(ref Ref, cellSpan Size, alignment Alignment, resize Resize) (*RasterizedImage, error) {
	if !cellSpan.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCellSpan, cellSpan)
	}
	if !ref.IsValid() {
		return nil, fmt.Errorf("%w: empty image reference", ErrInvalidImageData)
	}
	return &RasterizedImage{
		image:     ref.Clone(),
		cellSpan:  cellSpan,
		alignment: alignment,
		resize:    resize,
	}, nil
}

// SetColumnOffset controls whether fragments returned by Fragment read the
// pixels of their own columns (see WithColumnOffset). It is off by default.
func (r *RasterizedImage) SetColumnOffset(enabled bool) {
	r.columnOffset = enabled
}

// Image returns the rasterized image's reference. The caller must Clone it
// to keep the image alive beyond the rasterized image.
func (r *RasterizedImage) Image() Ref { return r.image }

// CellSpan returns how many grid cells the image occupies.
func (r *RasterizedImage) CellSpan() Size { return r.cellSpan }

// Alignment returns the alignment policy.
func (r *RasterizedImage) Alignment() Alignment { return r.alignment }

// Resize returns the resize policy.
func (r *RasterizedImage) Resize() Resize { return r.resize }

// CellSize returns how many pixels one grid cell covers: the image size
// divided by the cell span per axis. Remainder pixels are truncated.
func (r *RasterizedImage) CellSize() Size {
	return r.image.Image().Size().Div(r.cellSpan)
}

// Fragment returns the fragment shown by the grid cell at pos, relative to
// the top-left cell of the span. pos must lie within the span.
func (r *RasterizedImage) Fragment(pos Coordinate) (*Fragment, error) {
	if !pos.In(r.cellSpan) {
		return nil, fmt.Errorf("%w: %s outside span %s", ErrOutOfRange, pos, r.cellSpan)
	}

	cellSize := r.CellSize()
	offset := Coordinate{
		Row:    pos.Row * cellSize.Height,
		Column: pos.Column * cellSize.Width,
	}

	var opts []FragmentOption
	if r.columnOffset {
		opts = append(opts, WithColumnOffset())
	}
	return NewFragment(r.image, offset, cellSize, opts...)
}

// Release drops the rasterized image's reference.
func (r *RasterizedImage) Release() {
	r.image.Release()
}

// String returns a debug description. The format is not stable.
func (r *RasterizedImage) String() string {
	return fmt.Sprintf("RasterizedImage<%s, span=%s, %s, %s>",
		r.image, r.cellSpan, r.alignment, r.resize)
}
