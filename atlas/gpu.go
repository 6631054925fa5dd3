package atlas

import (
	"fmt"

	"github.com/gogpu/cellimage"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// GPUSync mirrors a TextureAtlas into a GPU texture owned by a HAL device.
//
// The texture is created on the first Sync and recreated when the atlas
// size changes; every Sync with a dirty atlas uploads the whole shadow
// through the device queue.
type GPUSync struct {
	device hal.Device
	queue  hal.Queue

	texture hal.Texture
	view    hal.TextureView
	width   int
	height  int
	uploads int
}

// NewGPUSync creates a syncer for the given device and queue.
// The device is borrowed: GPUSync never destroys it.
func NewGPUSync(device hal.Device, queue hal.Queue) *GPUSync {
	return &GPUSync{device: device, queue: queue}
}

// Sync uploads the atlas shadow if it is dirty or has no texture yet.
func (s *GPUSync) Sync(a *TextureAtlas) error {
	if a.IsClosed() {
		return ErrAtlasClosed
	}
	if s.texture != nil && !a.Dirty() && s.width == a.Width() && s.height == a.Height() {
		return nil
	}

	if s.texture == nil || s.width != a.Width() || s.height != a.Height() {
		s.destroyTexture()
		if err := s.createTexture(a); err != nil {
			return err
		}
	}

	width := uint32(a.Width())   //nolint:gosec // atlas size always fits uint32
	height := uint32(a.Height()) //nolint:gosec // atlas size always fits uint32

	s.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  s.texture,
			MipLevel: 0,
		},
		a.Pixels().Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)

	a.MarkClean()
	s.uploads++
	cellimage.Logger().Debug("atlas: uploaded to GPU", "label", a.Label(), "uploads", s.uploads)
	return nil
}

func (s *GPUSync) createTexture(a *TextureAtlas) error {
	width := uint32(a.Width())   //nolint:gosec // atlas size always fits uint32
	height := uint32(a.Height()) //nolint:gosec // atlas size always fits uint32

	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         a.Label(),
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        a.Format(),
		Usage:         TextureUsage,
	})
	if err != nil {
		return fmt.Errorf("atlas: create texture: %w", err)
	}

	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         a.Label() + "_view",
		Format:        a.Format(),
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.device.DestroyTexture(tex)
		return fmt.Errorf("atlas: create texture view: %w", err)
	}

	s.texture = tex
	s.view = view
	s.width = a.Width()
	s.height = a.Height()
	return nil
}

// Texture returns the GPU texture, or nil before the first Sync.
func (s *GPUSync) Texture() hal.Texture {
	return s.texture
}

// View returns the texture view used for binding, or nil before the first Sync.
func (s *GPUSync) View() hal.TextureView {
	return s.view
}

// Uploads returns how many times the shadow was uploaded.
func (s *GPUSync) Uploads() int {
	return s.uploads
}

// Destroy releases the GPU texture. The syncer can be reused afterwards.
func (s *GPUSync) Destroy() {
	s.destroyTexture()
}

func (s *GPUSync) destroyTexture() {
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.texture != nil {
		s.device.DestroyTexture(s.texture)
		s.texture = nil
	}
	s.width, s.height = 0, 0
}
