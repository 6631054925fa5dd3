package atlas

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Presenter shows a TextureAtlas through a host's gpucontext.TextureDrawer,
// for hosts that own the GPU device (for example a gogpu application).
//
// The host texture is created lazily on the first Present and updated in
// place whenever the atlas is dirty.
type Presenter struct {
	texture any
	width   int
	height  int
}

// Present uploads the atlas if needed and draws the whole atlas texture at
// (x, y). It is mainly a debugging aid; draw backends sample slices from
// Texture themselves.
func (p *Presenter) Present(dc gpucontext.TextureDrawer, a *TextureAtlas, x, y float32) error {
	if a.IsClosed() {
		return ErrAtlasClosed
	}

	if p.texture == nil || p.width != a.Width() || p.height != a.Height() {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrNoTextureCreator
		}

		tex, err := creator.NewTextureFromRGBA(a.Width(), a.Height(), a.Pixels().Pix)
		if err != nil {
			return fmt.Errorf("atlas: NewTextureFromRGBA failed: %w", err)
		}
		p.texture = tex
		p.width = a.Width()
		p.height = a.Height()
		a.MarkClean()
	} else if a.Dirty() {
		if updater, ok := p.texture.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(a.Pixels().Pix); err != nil {
				return fmt.Errorf("atlas: texture update failed: %w", err)
			}
		}
		a.MarkClean()
	}

	gpuTex, ok := p.texture.(gpucontext.Texture)
	if !ok {
		return ErrInvalidTexture
	}
	return dc.DrawTexture(gpuTex, x, y)
}

// Texture returns the host texture, or nil before the first Present.
func (p *Presenter) Texture() any {
	return p.texture
}
