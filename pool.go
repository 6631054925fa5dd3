package cellimage

import (
	"cmp"
	"fmt"
	"slices"
)

// slot is one entry of the pool's slot map. The generation is bumped every
// time the slot is filled, so IDs of removed images never match again.
type slot struct {
	image      *Image
	generation uint32
}

// Pool is the authoritative store of live images.
//
// Images are kept in a slot map addressed by generational ImageIDs, which
// makes lookup and removal O(1) and turns stale IDs into misses instead of
// dangling pointers. Images keep their creation order.
//
// Every image created by the pool is removed from it exactly once, when its
// last Ref is released. The image only signals that its count reached zero;
// the pool decides, by identity and generation, whether there is anything
// left to erase.
//
// A Pool is not safe for concurrent use. It is owned by the component that
// created it, typically a render.ImageRenderer.
type Pool struct {
	slots []slot
	free  []uint32
	live  int
	seq   uint64

	instances []*RasterizedImage
	named     map[string]*NamedImage
	observers []func(ImageID)
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		slots: make([]slot, 0, 16),
		named: make(map[string]*NamedImage),
	}
}

// Create stores an RGBA image of the given pixel size and returns the first
// reference to it. The pool takes ownership of data.
//
// A buffer that does not hold exactly width*height*4 bytes is rejected with
// ErrInvalidImageData and the pool is left unchanged.
func (p *Pool) Create(data []byte, size Size) (Ref, error) {
	img, err := NewImage(data, size, p.Remove)
	if err != nil {
		Logger().Warn("cellimage: rejected image payload", "size", size, "bytes", len(data), "err", err)
		return Ref{}, err
	}
	p.insert(img)
	Logger().Debug("cellimage: image created", "image", img.id, "size", size)
	return NewRef(img), nil
}

// CreateRGB stores an opaque image built from one RGBColor per pixel.
// Each color becomes an RGBA pixel with alpha 255.
//
// A color slice that does not hold exactly width*height entries is rejected
// with ErrSizeMismatch and the pool is left unchanged.
func (p *Pool) CreateRGB(colors []RGBColor, size Size) (Ref, error) {
	if size.Width < 0 || size.Height < 0 {
		return Ref{}, fmt.Errorf("%w: got %d colors for %s", ErrSizeMismatch, len(colors), size)
	}
	if _, ok := pixelBytes(size); !ok || len(colors) != size.Area() {
		return Ref{}, fmt.Errorf("%w: got %d colors for %s", ErrSizeMismatch, len(colors), size)
	}

	data := make([]byte, len(colors)*BytesPerPixel)
	i := 0
	for _, c := range colors {
		data[i] = c.Red
		data[i+1] = c.Green
		data[i+2] = c.Blue
		data[i+3] = 0xFF
		i += BytesPerPixel
	}
	return p.Create(data, size)
}

// insert places img into a free slot and assigns its identity.
func (p *Pool) insert(img *Image) {
	var index uint32
	if n := len(p.free); n > 0 {
		index = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		p.slots = append(p.slots, slot{})
		index = uint32(len(p.slots) - 1) //nolint:gosec // slot count is bounded by memory
	}

	s := &p.slots[index]
	s.generation++
	s.image = img

	p.seq++
	img.id = ImageID{slot: index, generation: s.generation}
	img.seq = p.seq
	p.live++
}

// Remove erases img from the pool. Removing an image that is not (or no
// longer) in the pool is a no-op.
//
// Remove is the teardown of every pooled image and normally does not need
// to be called directly.
func (p *Pool) Remove(img *Image) {
	if img == nil {
		return
	}
	s := p.slotOf(img.id)
	if s == nil || s.image != img {
		return
	}
	p.erase(img.id)
}

func (p *Pool) erase(id ImageID) {
	s := &p.slots[id.slot]
	Logger().Debug("cellimage: image removed", "image", id)
	s.image = nil
	p.free = append(p.free, id.slot)
	p.live--
	for _, fn := range p.observers {
		fn(id)
	}
}

func (p *Pool) slotOf(id ImageID) *slot {
	if id.IsZero() || int(id.slot) >= len(p.slots) {
		return nil
	}
	s := &p.slots[id.slot]
	if s.generation != id.generation || s.image == nil {
		return nil
	}
	return s
}

// Lookup returns the live image with the given ID.
func (p *Pool) Lookup(id ImageID) (*Image, bool) {
	s := p.slotOf(id)
	if s == nil {
		return nil, false
	}
	return s.image, true
}

// Contains reports whether img is a live image of this pool.
func (p *Pool) Contains(img *Image) bool {
	if img == nil {
		return false
	}
	got, ok := p.Lookup(img.id)
	return ok && got == img
}

// ImageCount returns the number of live images.
func (p *Pool) ImageCount() int {
	return p.live
}

// Images returns the live images in creation order.
func (p *Pool) Images() []*Image {
	images := make([]*Image, 0, p.live)
	for i := range p.slots {
		if img := p.slots[i].image; img != nil {
			images = append(images, img)
		}
	}
	slices.SortFunc(images, func(a, b *Image) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return images
}

// OnRemove registers fn to be called with the ID of every image erased from
// the pool, after the erase.
func (p *Pool) OnRemove(fn func(ImageID)) {
	p.observers = append(p.observers, fn)
}

// Attach hands a rasterized image over to the pool, which keeps it (and
// therefore its image) alive until Detach or Clear.
func (p *Pool) Attach(r *RasterizedImage) {
	p.instances = append(p.instances, r)
}

// Detach releases a previously attached rasterized image. It reports
// whether r was attached.
func (p *Pool) Detach(r *RasterizedImage) bool {
	i := slices.Index(p.instances, r)
	if i < 0 {
		return false
	}
	p.instances = slices.Delete(p.instances, i, i+1)
	r.Release()
	return true
}

// Instances returns the attached rasterized images in attach order.
func (p *Pool) Instances() []*RasterizedImage {
	return slices.Clone(p.instances)
}

// InstanceCount returns the number of attached rasterized images.
func (p *Pool) InstanceCount() int {
	return len(p.instances)
}

// Clear tears the pool down: every image is erased, attached instances and
// named images are released. References still held elsewhere stay valid
// handles, but releasing them no longer affects the pool.
func (p *Pool) Clear() {
	for i := range p.slots {
		s := &p.slots[i]
		if s.image == nil {
			continue
		}
		p.erase(s.image.id)
	}

	instances := p.instances
	p.instances = nil
	for _, r := range instances {
		r.Release()
	}

	named := p.named
	p.named = make(map[string]*NamedImage)
	for _, n := range named {
		n.image.Release()
	}
}

// String returns a short debug description of the pool.
func (p *Pool) String() string {
	return fmt.Sprintf("ImagePool<images=%d, instances=%d, named=%d>", p.live, len(p.instances), len(p.named))
}
