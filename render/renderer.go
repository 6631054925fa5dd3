package render

import (
	"fmt"

	"github.com/gogpu/cellimage"
	"github.com/gogpu/cellimage/atlas"
	"github.com/gogpu/cellimage/internal/bufpool"
	"github.com/gogpu/cellimage/internal/cache"
	"golang.org/x/image/draw"
)

// Slice describes one cell-sized piece of a placed image. Together with the
// image identity it keys the atlas cache; the screen position is not part of
// it, so moving an image across the grid reuses its slices.
type Slice struct {
	Cell      cellimage.Coordinate
	Extent    cellimage.Size
	CellSize  cellimage.Size
	Resize    cellimage.Resize
	Alignment cellimage.Alignment
}

type sliceKey struct {
	image cellimage.ImageID
	slice Slice
}

// Stats reports atlas cache statistics.
type Stats struct {
	Slices  int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// Option configures an ImageRenderer.
type Option func(*ImageRenderer)

// WithScaler sets the scaler used when an image has to be resized.
// The default is draw.CatmullRom.
func WithScaler(s draw.Scaler) Option {
	return func(r *ImageRenderer) {
		if s != nil {
			r.scaler = s
		}
	}
}

// WithColumnOffset controls whether slices read the pixels of their own
// columns. It is on by default; turning it off makes every slice of a row
// read from column 0 of the placed image.
func WithColumnOffset(enabled bool) Option {
	return func(r *ImageRenderer) {
		r.columnOffset = enabled
	}
}

// WithPool makes the renderer own an existing pool instead of a new one.
func WithPool(p *cellimage.Pool) Option {
	return func(r *ImageRenderer) {
		if p != nil {
			r.pool = p
		}
	}
}

// ImageRenderer draws pooled images as per-cell atlas slices.
//
// Every slice is uploaded once and then served from the cache until
// ClearCache, or until its image is removed from the pool. A render pass
// either emits every draw command of the request or, when the atlas runs out
// of room, none.
type ImageRenderer struct {
	pool      *cellimage.Pool
	listener  CommandListener
	allocator Allocator
	cellSize  cellimage.Size

	cache        *cache.Cache[sliceKey, atlas.SliceHandle]
	buffers      *bufpool.Pool
	scaler       draw.Scaler
	columnOffset bool
}

// NewImageRenderer creates a renderer emitting draw commands to listener and
// storing slices in allocator.
func NewImageRenderer(listener CommandListener, allocator Allocator, cellSize cellimage.Size, opts ...Option) *ImageRenderer {
	r := &ImageRenderer{
		listener:     listener,
		allocator:    allocator,
		cellSize:     cellSize,
		cache:        cache.New[sliceKey, atlas.SliceHandle](),
		buffers:      bufpool.New(4),
		scaler:       draw.CatmullRom,
		columnOffset: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pool == nil {
		r.pool = cellimage.NewPool()
	}
	r.pool.OnRemove(r.evict)
	return r
}

// Pool returns the pool owned by the renderer.
func (r *ImageRenderer) Pool() *cellimage.Pool {
	return r.pool
}

// CellSize returns the current grid cell size in pixels.
func (r *ImageRenderer) CellSize() cellimage.Size {
	return r.cellSize
}

// SetCellSize changes the grid cell size used by subsequent renders.
// Slices cached for the previous size stay in the atlas until ClearCache.
func (r *ImageRenderer) SetCellSize(size cellimage.Size) {
	if size == r.cellSize {
		return
	}
	cellimage.Logger().Debug("render: cell size changed", "from", r.cellSize, "to", size)
	r.cellSize = size
}

// RenderImage draws img into the extent grid cells starting at offset,
// fitted and centered.
func (r *ImageRenderer) RenderImage(img *cellimage.Image, offset cellimage.Coordinate, extent cellimage.Size) error {
	return r.Render(RenderImage{
		Image:     img,
		Offset:    offset,
		Extent:    extent,
		Resize:    cellimage.ResizeToFit,
		Alignment: cellimage.MiddleCenter,
	})
}

// Render executes a render request. Missing slices are cut and uploaded;
// then one draw command per visible cell is sent to the listener.
//
// If the atlas cannot hold a slice the error wraps
// cellimage.ErrAtlasAllocationFailed and no command is emitted. Slices
// uploaded before the failure stay cached.
func (r *ImageRenderer) Render(cmd RenderImage) error {
	if !r.pool.Contains(cmd.Image) {
		return fmt.Errorf("%w: %v", ErrUnknownImage, cmd.Image)
	}
	if !cmd.Extent.IsPositive() {
		return fmt.Errorf("%w: extent %s", cellimage.ErrInvalidCellSpan, cmd.Extent)
	}
	if !r.cellSize.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidCellSize, r.cellSize)
	}

	p := placement{renderer: r, cmd: &cmd}
	defer p.release()

	type pending struct {
		handle atlas.SliceHandle
		cell   cellimage.Coordinate
	}
	draws := make([]pending, 0, cmd.Extent.Area())

	for row := 0; row < cmd.Extent.Height; row++ {
		for col := 0; col < cmd.Extent.Width; col++ {
			if !cmd.visible(row*cmd.Extent.Width + col) {
				continue
			}
			cell := cellimage.Coord(row, col)
			key := sliceKey{
				image: cmd.Image.ID(),
				slice: Slice{
					Cell:      cell,
					Extent:    cmd.Extent,
					CellSize:  r.cellSize,
					Resize:    cmd.Resize,
					Alignment: cmd.Alignment,
				},
			}

			h, created, err := r.cache.GetOrCreate(key, func() (atlas.SliceHandle, error) {
				return p.upload(cell)
			})
			if err != nil {
				cellimage.Logger().Warn("render: slice upload failed", "image", key.image, "cell", cell, "err", err)
				return err
			}
			if created {
				cellimage.Logger().Debug("render: slice cached", "image", key.image, "cell", cell, "slice", h)
			}
			draws = append(draws, pending{handle: h, cell: cmd.Offset.Add(cell)})
		}
	}

	commands := make([]DrawCommand, 0, len(draws))
	for _, d := range draws {
		region, err := r.allocator.Bind(d.handle)
		if err != nil {
			return fmt.Errorf("render: bind %s: %w", d.handle, err)
		}
		commands = append(commands, DrawCommand{
			Image:    cmd.Image.ID(),
			Slice:    d.handle,
			Region:   region,
			Cell:     d.cell,
			CellSize: r.cellSize,
		})
	}
	for _, c := range commands {
		r.listener.DrawSlice(c)
	}
	return nil
}

// ClearCache releases every cached slice. Pool images are not affected.
func (r *ImageRenderer) ClearCache() {
	n := r.cache.Len()
	r.cache.Clear(func(_ sliceKey, h atlas.SliceHandle) {
		r.allocator.Release(h)
	})
	if n > 0 {
		cellimage.Logger().Debug("render: atlas cache cleared", "slices", n)
	}
}

// Stats returns atlas cache statistics.
func (r *ImageRenderer) Stats() Stats {
	s := r.cache.Stats()
	return Stats{Slices: s.Len, Hits: s.Hits, Misses: s.Misses, HitRate: s.HitRate}
}

// Close releases every cached slice and clears the pool.
func (r *ImageRenderer) Close() {
	r.ClearCache()
	r.pool.Clear()
	r.buffers.Reset()
}

// evict drops the cached slices of a removed image.
func (r *ImageRenderer) evict(id cellimage.ImageID) {
	n := r.cache.DeleteFunc(
		func(k sliceKey, _ atlas.SliceHandle) bool { return k.image == id },
		func(_ sliceKey, h atlas.SliceHandle) { r.allocator.Release(h) },
	)
	if n > 0 {
		cellimage.Logger().Debug("render: evicted slices", "image", id, "slices", n)
	}
}

// placement lazily builds the placed canvas of one render request, so that
// fully cached requests never touch pixels.
type placement struct {
	renderer *ImageRenderer
	cmd      *RenderImage
	raster   *cellimage.RasterizedImage
	area     cellimage.Size
	pix      []byte
}

func (p *placement) upload(cell cellimage.Coordinate) (atlas.SliceHandle, error) {
	if p.raster == nil {
		if err := p.build(); err != nil {
			return 0, err
		}
	}

	frag, err := p.raster.Fragment(cell)
	if err != nil {
		return 0, err
	}
	defer frag.Release()

	h, err := p.renderer.allocator.Reserve(frag.Data(), frag.Size())
	if err != nil {
		return 0, fmt.Errorf("%w: %s cell %s: %w", cellimage.ErrAtlasAllocationFailed, p.cmd.Image.ID(), cell, err)
	}
	return h, nil
}

func (p *placement) build() error {
	p.area = p.cmd.Extent.Mul(p.renderer.cellSize)
	p.pix = p.renderer.buffers.Get(p.area)
	canvas := placeImage(p.pix, p.cmd.Image, p.area, p.cmd.Resize, p.cmd.Alignment, p.renderer.scaler)

	placed, err := cellimage.NewImage(canvas.Pix, p.area, nil)
	if err != nil {
		return err
	}
	ref := cellimage.NewRef(placed)
	defer ref.Release()

	raster, err := cellimage.NewRasterizedImage(ref, p.cmd.Extent, p.cmd.Alignment, p.cmd.Resize)
	if err != nil {
		return err
	}
	raster.SetColumnOffset(p.renderer.columnOffset)
	p.raster = raster
	return nil
}

// release drops the placed canvas and recycles its pixels. Fragments never
// outlive the render pass, so nothing references the buffer afterwards.
func (p *placement) release() {
	if p.raster != nil {
		p.raster.Release()
	}
	if p.pix != nil {
		p.renderer.buffers.Put(p.area, p.pix)
	}
}
