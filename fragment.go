package cellimage

import "fmt"

// Fragment is a read-only view of a rectangular region of an image.
// It does not copy pixels; Data materializes them on demand.
//
// A Fragment holds its own reference to the image and must be released.
type Fragment struct {
	image        Ref
	offset       Coordinate
	size         Size
	columnOffset bool
}

// FragmentOption configures a Fragment.
type FragmentOption func(*Fragment)

// WithColumnOffset makes Data honor the column component of the offset.
//
// By default only the row component selects where copying starts, and every
// row is read from column 0 of the parent. Fragments that are sliced
// horizontally need this option to read the pixels of their own columns.
func WithColumnOffset() FragmentOption {
	return func(f *Fragment) {
		f.columnOffset = true
	}
}

// NewFragment creates a fragment of size pixels at the 0-based pixel offset
// into the image referred to by ref. The rectangle must lie within the image.
func NewFragment(ref Ref, offset Coordinate, size Size, opts ...FragmentOption) (*Fragment, error) {
	img := ref.Image()
	if img == nil {
		return nil, fmt.Errorf("%w: empty image reference", ErrOutOfBounds)
	}
	if offset.Row < 0 || offset.Column < 0 || size.Width < 0 || size.Height < 0 ||
		size.Height > img.Height()-offset.Row ||
		size.Width > img.Width()-offset.Column {
		return nil, fmt.Errorf("%w: offset %s size %s exceeds image %s",
			ErrOutOfBounds, offset, size, img.Size())
	}

	f := &Fragment{
		image:  ref.Clone(),
		offset: offset,
		size:   size,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Image returns the parent image.
func (f *Fragment) Image() *Image { return f.image.Image() }

// Offset returns the pixel offset into the parent image.
func (f *Fragment) Offset() Coordinate { return f.offset }

// Size returns the fragment size in pixels.
func (f *Fragment) Size() Size { return f.size }

// Data returns a freshly allocated RGBA buffer of exactly
// Size().Width*Size().Height*4 bytes.
//
// Row y is copied from parent row offset.Row+y. Unless the fragment was
// created WithColumnOffset, copying starts at column 0 of that row.
func (f *Fragment) Data() []byte {
	parent := f.image.Image()
	src := parent.Data()
	stride := parent.Width() * BytesPerPixel
	rowBytes := f.size.Width * BytesPerPixel

	column := 0
	if f.columnOffset {
		column = f.offset.Column * BytesPerPixel
	}

	data := make([]byte, 0, f.size.Area()*BytesPerPixel)
	for y := 0; y < f.size.Height; y++ {
		start := (f.offset.Row+y)*stride + column
		data = append(data, src[start:start+rowBytes]...)
	}
	return data
}

// Release drops the fragment's reference to its image.
func (f *Fragment) Release() {
	f.image.Release()
}

// String returns a debug description of the fragment. The format is not stable.
func (f *Fragment) String() string {
	return fmt.Sprintf("ImageFragment<%s, offset=%s, size=%s>", f.image, f.offset, f.size)
}
