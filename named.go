package cellimage

import (
	"cmp"
	"fmt"
	"slices"
)

// NamedImage is an image registered under a name, so that uploading an
// image and placing it can happen in separate protocol commands.
type NamedImage struct {
	name      string
	createdAt uint64
	image     Ref
}

// Name returns the registered name.
func (n *NamedImage) Name() string { return n.name }

// CreatedAt returns the caller supplied creation stamp.
func (n *NamedImage) CreatedAt() uint64 { return n.createdAt }

// Image returns the named image.
func (n *NamedImage) Image() *Image { return n.image.Image() }

// Ref returns a new reference to the named image.
func (n *NamedImage) Ref() Ref { return n.image.Clone() }

// String returns a debug description. The format is not stable.
func (n *NamedImage) String() string {
	return fmt.Sprintf("NamedImage<%q, createdAt=%d, %s>", n.name, n.createdAt, n.image)
}

// compareNamed orders named images by creation stamp, then by name.
func compareNamed(a, b *NamedImage) int {
	if c := cmp.Compare(a.createdAt, b.createdAt); c != 0 {
		return c
	}
	return cmp.Compare(a.name, b.name)
}

// AddNamed registers a new reference to ref's image under name. An image
// previously registered under the same name is released.
func (p *Pool) AddNamed(name string, createdAt uint64, ref Ref) (*NamedImage, error) {
	if !ref.IsValid() {
		return nil, fmt.Errorf("%w: empty image reference for %q", ErrInvalidImageData, name)
	}
	n := &NamedImage{name: name, createdAt: createdAt, image: ref.Clone()}
	if old, ok := p.named[name]; ok {
		old.image.Release()
	}
	p.named[name] = n
	return n, nil
}

// Named returns the image registered under name.
func (p *Pool) Named(name string) (*NamedImage, bool) {
	n, ok := p.named[name]
	return n, ok
}

// RemoveNamed releases the image registered under name. It reports whether
// the name was registered.
func (p *Pool) RemoveNamed(name string) bool {
	n, ok := p.named[name]
	if !ok {
		return false
	}
	delete(p.named, name)
	n.image.Release()
	return true
}

// NamedImages returns all named images ordered by creation stamp and name.
func (p *Pool) NamedImages() []*NamedImage {
	all := make([]*NamedImage, 0, len(p.named))
	for _, n := range p.named {
		all = append(all, n)
	}
	slices.SortFunc(all, compareNamed)
	return all
}
