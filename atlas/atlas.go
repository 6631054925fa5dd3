package atlas

import (
	"fmt"
	"image"

	"github.com/gogpu/cellimage"
	"github.com/gogpu/gputypes"
)

// SliceHandle identifies a slice reserved in a TextureAtlas.
// The zero handle is never issued.
type SliceHandle uint32

// String returns a string representation of the handle.
func (h SliceHandle) String() string {
	return fmt.Sprintf("Slice#%d", uint32(h))
}

// Config holds configuration for creating a TextureAtlas.
type Config struct {
	// Width is the atlas width in pixels. Defaults to DefaultAtlasSize.
	Width int

	// Height is the atlas height in pixels. Defaults to DefaultAtlasSize.
	Height int

	// Padding is the spacing between slices. Negative means DefaultShelfPadding.
	Padding int

	// Label is an optional debug label, used for GPU resources.
	Label string
}

// DefaultConfig returns the default atlas configuration.
func DefaultConfig() Config {
	return Config{
		Width:   DefaultAtlasSize,
		Height:  DefaultAtlasSize,
		Padding: DefaultShelfPadding,
		Label:   "cellimage_atlas",
	}
}

// TextureUsage is the GPU usage of atlas textures: sampled when drawing,
// written when slices are uploaded.
const TextureUsage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst

// TextureAtlas packs image slices into one RGBA texture.
//
// Pixels live in a CPU shadow copy; GPUSync or Presenter upload the shadow
// whenever it is dirty. TextureAtlas provides the reserve/release/bind
// capability consumed by render.ImageRenderer.
//
// TextureAtlas is not safe for concurrent use.
type TextureAtlas struct {
	pixels    *image.RGBA
	allocator *RectAllocator
	slices    map[SliceHandle]Region
	next      SliceHandle
	bound     SliceHandle
	label     string

	closed bool
	dirty  bool
}

// New creates a texture atlas with the given configuration.
func New(config Config) *TextureAtlas {
	width := config.Width
	if width < MinAtlasSize {
		width = DefaultAtlasSize
	}

	height := config.Height
	if height < MinAtlasSize {
		height = DefaultAtlasSize
	}

	padding := config.Padding
	if padding < 0 {
		padding = DefaultShelfPadding
	}

	return &TextureAtlas{
		pixels:    image.NewRGBA(image.Rect(0, 0, width, height)),
		allocator: NewRectAllocator(width, height, padding),
		slices:    make(map[SliceHandle]Region),
		label:     config.Label,
	}
}

// Reserve allocates a region for size pixels and copies data (RGBA,
// width*height*4 bytes) into it.
func (a *TextureAtlas) Reserve(data []byte, size cellimage.Size) (SliceHandle, error) {
	if a.closed {
		return 0, ErrAtlasClosed
	}
	if !size.IsPositive() || len(data) != size.Area()*cellimage.BytesPerPixel {
		return 0, fmt.Errorf("%w: %d bytes for %s", ErrInvalidSliceData, len(data), size)
	}

	region := a.allocator.Allocate(size.Width, size.Height)
	if !region.IsValid() {
		cellimage.Logger().Warn("atlas: no room for slice",
			"size", size, "slices", len(a.slices), "utilization", a.allocator.Utilization())
		return 0, fmt.Errorf("%w: no room for %s", ErrAtlasFull, size)
	}
	a.upload(region, data)

	a.next++
	h := a.next
	a.slices[h] = region
	a.dirty = true

	cellimage.Logger().Debug("atlas: slice reserved", "slice", h, "region", region)
	return h, nil
}

// upload copies tightly packed RGBA rows into region of the shadow texture.
func (a *TextureAtlas) upload(region Region, data []byte) {
	rowBytes := region.Width * cellimage.BytesPerPixel
	for y := 0; y < region.Height; y++ {
		dst := a.pixels.PixOffset(region.X, region.Y+y)
		copy(a.pixels.Pix[dst:dst+rowBytes], data[y*rowBytes:(y+1)*rowBytes])
	}
}

// Release frees the slice. Releasing an unknown handle is a no-op.
func (a *TextureAtlas) Release(h SliceHandle) {
	region, ok := a.slices[h]
	if !ok {
		return
	}
	delete(a.slices, h)
	if a.bound == h {
		a.bound = 0
	}
	a.allocator.Free(region)
	cellimage.Logger().Debug("atlas: slice released", "slice", h)
}

// Bind makes h the slice of the next draw and returns its region.
func (a *TextureAtlas) Bind(h SliceHandle) (Region, error) {
	if a.closed {
		return Region{}, ErrAtlasClosed
	}
	region, ok := a.slices[h]
	if !ok {
		return Region{}, fmt.Errorf("%w: %s", ErrUnknownSlice, h)
	}
	a.bound = h
	return region, nil
}

// Bound returns the most recently bound slice, or 0.
func (a *TextureAtlas) Bound() SliceHandle {
	return a.bound
}

// Region returns the region of a reserved slice.
func (a *TextureAtlas) Region(h SliceHandle) (Region, bool) {
	region, ok := a.slices[h]
	return region, ok
}

// SubImage returns the pixels of a reserved slice. The image shares memory
// with the atlas.
func (a *TextureAtlas) SubImage(h SliceHandle) (*image.RGBA, bool) {
	region, ok := a.slices[h]
	if !ok {
		return nil, false
	}
	sub, _ := a.pixels.SubImage(region.Rect()).(*image.RGBA)
	return sub, true
}

// Len returns the number of reserved slices.
func (a *TextureAtlas) Len() int {
	return len(a.slices)
}

// Pixels returns the shadow texture.
func (a *TextureAtlas) Pixels() *image.RGBA {
	return a.pixels
}

// Width returns the atlas width in pixels.
func (a *TextureAtlas) Width() int {
	return a.pixels.Rect.Dx()
}

// Height returns the atlas height in pixels.
func (a *TextureAtlas) Height() int {
	return a.pixels.Rect.Dy()
}

// Label returns the debug label.
func (a *TextureAtlas) Label() string {
	return a.label
}

// Format returns the GPU texture format of the atlas.
func (a *TextureAtlas) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Utilization returns the fraction of atlas area used (0.0 to 1.0).
func (a *TextureAtlas) Utilization() float64 {
	return a.allocator.Utilization()
}

// Dirty reports whether the shadow changed since the last upload.
func (a *TextureAtlas) Dirty() bool {
	return a.dirty
}

// MarkClean records that the shadow has been uploaded.
func (a *TextureAtlas) MarkClean() {
	a.dirty = false
}

// Reset releases every slice at once.
// Note: This does not clear the pixel data, just the allocation tracking.
func (a *TextureAtlas) Reset() {
	if a.closed {
		return
	}
	clear(a.slices)
	a.bound = 0
	a.allocator.Reset()
}

// Close releases the atlas resources.
// The atlas should not be used after Close is called.
func (a *TextureAtlas) Close() {
	if a.closed {
		return
	}
	a.slices = nil
	a.allocator.Reset()
	a.closed = true
}

// IsClosed returns true if the atlas has been closed.
func (a *TextureAtlas) IsClosed() bool {
	return a.closed
}
