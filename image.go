package cellimage

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// BytesPerPixel is the size of one RGBA pixel.
const BytesPerPixel = 4

// pixelBytes returns the RGBA buffer length of a non-negative size. ok is
// false when the length does not fit in an int.
func pixelBytes(size Size) (n int, ok bool) {
	if size.Width > 0 && size.Height > math.MaxInt/BytesPerPixel/size.Width {
		return 0, false
	}
	return size.Area() * BytesPerPixel, true
}

// ImageID identifies an image inside its pool. It is a generational index:
// the slot is reused after removal but the generation is not, so a stale ID
// never resolves to a newer image.
type ImageID struct {
	slot       uint32
	generation uint32
}

// IsZero reports whether id is the zero ID, which no pooled image carries.
func (id ImageID) IsZero() bool {
	return id.generation == 0
}

// String returns a string representation of the ID.
func (id ImageID) String() string {
	return fmt.Sprintf("#%d.%d", id.slot, id.generation)
}

// Teardown is invoked exactly once, synchronously, when the reference count
// of an image drops from 1 to 0.
type Teardown func(img *Image)

// Image is an RGBA pixel buffer (4 bytes per pixel, row-major, no padding)
// with a reference count.
//
// Images are normally created by a Pool, which owns them and removes them
// when the last Ref is released. An Image is not safe for concurrent use.
type Image struct {
	id       ImageID
	seq      uint64
	data     []byte
	size     Size
	teardown Teardown
	refCount int
	released bool
}

// NewImage creates an image from an RGBA buffer. The buffer is owned by the
// image afterwards and must not be modified by the caller.
//
// The reference count starts at 0; wrap the image with NewRef to take the
// first reference. teardown may be nil.
func NewImage(data []byte, size Size, teardown Teardown) (*Image, error) {
	if size.Width < 0 || size.Height < 0 {
		return nil, fmt.Errorf("%w: negative size %s", ErrInvalidImageData, size)
	}
	want, ok := pixelBytes(size)
	if !ok {
		return nil, fmt.Errorf("%w: size %s overflows", ErrInvalidImageData, size)
	}
	if len(data) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %s",
			ErrInvalidImageData, len(data), want, size)
	}
	return &Image{
		data:     data,
		size:     size,
		teardown: teardown,
	}, nil
}

// ID returns the pool identity of the image. Images created outside a pool
// have the zero ID.
func (img *Image) ID() ImageID { return img.id }

// Data returns the RGBA buffer. It must be treated as read-only.
func (img *Image) Data() []byte { return img.data }

// Size returns the image dimensions in pixels.
func (img *Image) Size() Size { return img.size }

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.size.Width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.size.Height }

// RefCount returns the current number of references.
func (img *Image) RefCount() int { return img.refCount }

// Released reports whether the teardown of the image already ran.
func (img *Image) Released() bool { return img.released }

func (img *Image) ref() {
	if img.released {
		panic(fmt.Sprintf("cellimage: reference taken on released %s", img))
	}
	img.refCount++
}

// unref drops one reference and runs the teardown when the count reaches 0.
// Dropping a reference that does not exist panics with ErrRefCountUnderflow.
func (img *Image) unref() {
	if img.refCount <= 0 {
		panic(fmt.Errorf("%w: %s", ErrRefCountUnderflow, img))
	}
	img.refCount--
	if img.refCount > 0 {
		return
	}
	img.released = true
	if img.teardown != nil {
		img.teardown(img)
	}
}

// String returns a debug description of the image. The format is not stable.
func (img *Image) String() string {
	return fmt.Sprintf("Image<%s, size=%s, bytes=%s, refCount=%d>",
		img.id, img.size, humanize.IBytes(uint64(len(img.data))), img.refCount)
}

// Ref is a counted handle to an Image. While at least one valid Ref exists
// the image stays alive.
//
// Assigning a Ref value does not take a reference. Use Clone to share an
// image, Move to hand a reference over, and Release to drop it.
type Ref struct {
	img *Image
}

// NewRef takes a new reference to img. A nil image yields an empty Ref.
func NewRef(img *Image) Ref {
	if img == nil {
		return Ref{}
	}
	img.ref()
	return Ref{img: img}
}

// Image returns the referenced image, or nil for an empty Ref.
func (r Ref) Image() *Image { return r.img }

// IsValid reports whether r refers to an image.
func (r Ref) IsValid() bool { return r.img != nil }

// Clone returns a new reference to the same image.
func (r Ref) Clone() Ref {
	return NewRef(r.img)
}

// Move transfers the reference to the returned Ref and leaves r empty.
// The reference count does not change.
func (r *Ref) Move() Ref {
	moved := *r
	r.img = nil
	return moved
}

// Release drops the reference and empties r. Releasing an empty Ref is a
// no-op, so a handle can never be released twice.
func (r *Ref) Release() {
	img := r.img
	if img == nil {
		return
	}
	r.img = nil
	img.unref()
}

// Equal reports whether both handles refer to the same image.
// Image contents are never compared.
func (r Ref) Equal(o Ref) bool {
	return r.img == o.img
}

// String returns a debug description of the referenced image.
func (r Ref) String() string {
	if r.img == nil {
		return "Ref<nil>"
	}
	return r.img.String()
}
