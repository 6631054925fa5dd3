package render

import (
	"errors"
	"testing"

	"github.com/gogpu/cellimage"
	"github.com/gogpu/cellimage/atlas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

// fakeAllocator records every slice it is asked to store.
type fakeAllocator struct {
	next     atlas.SliceHandle
	data     map[atlas.SliceHandle][]byte
	sizes    map[atlas.SliceHandle]cellimage.Size
	released []atlas.SliceHandle
	reserves int
	failAt   int // Reserve call that fails, 0 for never
	binds    int
	bindFail int // Bind call that fails, 0 for never
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{
		data:  make(map[atlas.SliceHandle][]byte),
		sizes: make(map[atlas.SliceHandle]cellimage.Size),
	}
}

func (a *fakeAllocator) Reserve(data []byte, size cellimage.Size) (atlas.SliceHandle, error) {
	a.reserves++
	if a.failAt != 0 && a.reserves >= a.failAt {
		return 0, atlas.ErrAtlasFull
	}
	a.next++
	a.data[a.next] = data
	a.sizes[a.next] = size
	return a.next, nil
}

func (a *fakeAllocator) Release(h atlas.SliceHandle) {
	delete(a.data, h)
	delete(a.sizes, h)
	a.released = append(a.released, h)
}

func (a *fakeAllocator) Bind(h atlas.SliceHandle) (atlas.Region, error) {
	a.binds++
	if a.bindFail != 0 && a.binds == a.bindFail {
		return atlas.Region{}, atlas.ErrUnknownSlice
	}
	size, ok := a.sizes[h]
	if !ok {
		return atlas.Region{}, atlas.ErrUnknownSlice
	}
	return atlas.Region{X: int(h), Width: size.Width, Height: size.Height}, nil
}

type recorder struct {
	cmds []DrawCommand
}

func (r *recorder) DrawSlice(cmd DrawCommand) { r.cmds = append(r.cmds, cmd) }

func (r *recorder) cells() []cellimage.Coordinate {
	cells := make([]cellimage.Coordinate, len(r.cmds))
	for i, c := range r.cmds {
		cells[i] = c.Cell
	}
	return cells
}

var (
	red    = [4]byte{0xFF, 0, 0, 0xFF}
	green  = [4]byte{0, 0xFF, 0, 0xFF}
	blue   = [4]byte{0, 0, 0xFF, 0xFF}
	yellow = [4]byte{0xFF, 0xFF, 0, 0xFF}
	clear4 = [4]byte{}
)

// quadrants builds a size x size image with a distinct color per quadrant.
func quadrants(size int) []byte {
	data := make([]byte, 0, size*size*4)
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var px [4]byte
			switch {
			case y < half && x < half:
				px = red
			case y < half:
				px = green
			case x < half:
				px = blue
			default:
				px = yellow
			}
			data = append(data, px[:]...)
		}
	}
	return data
}

func fill(n int, px [4]byte) []byte {
	data := make([]byte, 0, n*4)
	for range n {
		data = append(data, px[:]...)
	}
	return data
}

func newRenderer(t *testing.T) (*ImageRenderer, *fakeAllocator, *recorder) {
	t.Helper()
	alloc := newFakeAllocator()
	rec := &recorder{}
	r := NewImageRenderer(rec, alloc, cellimage.Sz(4, 4), WithScaler(draw.NearestNeighbor))
	return r, alloc, rec
}

func createQuadrants(t *testing.T, r *ImageRenderer) cellimage.Ref {
	t.Helper()
	ref, err := r.Pool().Create(quadrants(8), cellimage.Sz(8, 8))
	require.NoError(t, err)
	return ref
}

func TestRenderImage_CachesSlices(t *testing.T) {
	r, alloc, rec := newRenderer(t)
	ref := createQuadrants(t, r)
	defer ref.Release()

	require.NoError(t, r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	assert.Equal(t, 4, alloc.reserves)
	assert.Equal(t, []cellimage.Coordinate{
		cellimage.Coord(0, 0), cellimage.Coord(0, 1),
		cellimage.Coord(1, 0), cellimage.Coord(1, 1),
	}, rec.cells())

	want := map[cellimage.Coordinate][]byte{
		cellimage.Coord(0, 0): fill(16, red),
		cellimage.Coord(0, 1): fill(16, green),
		cellimage.Coord(1, 0): fill(16, blue),
		cellimage.Coord(1, 1): fill(16, yellow),
	}
	for _, cmd := range rec.cmds {
		assert.Equal(t, want[cmd.Cell], alloc.data[cmd.Slice], "cell %s", cmd.Cell)
		assert.Equal(t, ref.Image().ID(), cmd.Image)
		assert.Equal(t, cellimage.Sz(4, 4), cmd.CellSize)
		assert.Equal(t, 4, cmd.Region.Width)
	}

	// Second pass is served from the cache, at a different position.
	rec.cmds = nil
	require.NoError(t, r.RenderImage(ref.Image(), cellimage.Coord(3, 5), cellimage.Sz(2, 2)))
	assert.Equal(t, 4, alloc.reserves)
	assert.Equal(t, []cellimage.Coordinate{
		cellimage.Coord(3, 5), cellimage.Coord(3, 6),
		cellimage.Coord(4, 5), cellimage.Coord(4, 6),
	}, rec.cells())

	stats := r.Stats()
	assert.Equal(t, 4, stats.Slices)
	assert.Equal(t, uint64(4), stats.Hits)
	assert.Equal(t, uint64(4), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestRenderImage_WithoutColumnOffset(t *testing.T) {
	alloc := newFakeAllocator()
	rec := &recorder{}
	r := NewImageRenderer(rec, alloc, cellimage.Sz(4, 4), WithColumnOffset(false))
	ref := createQuadrants(t, r)
	defer ref.Release()

	require.NoError(t, r.Render(RenderImage{Image: ref.Image(), Extent: cellimage.Sz(2, 2)}))
	require.Len(t, rec.cmds, 4)
	// Right-hand cells read from column 0.
	assert.Equal(t, fill(16, red), alloc.data[rec.cmds[1].Slice])
	assert.Equal(t, fill(16, blue), alloc.data[rec.cmds[3].Slice])
}

func TestRenderImage_ClearCache(t *testing.T) {
	r, alloc, _ := newRenderer(t)
	ref := createQuadrants(t, r)
	defer ref.Release()

	require.NoError(t, r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	r.ClearCache()

	assert.Len(t, alloc.released, 4)
	assert.Equal(t, 0, r.Stats().Slices)
	assert.Equal(t, 1, r.Pool().ImageCount())
	assert.Equal(t, 1, ref.Image().RefCount())

	r.ClearCache()
	assert.Len(t, alloc.released, 4)

	require.NoError(t, r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	assert.Equal(t, 8, alloc.reserves)
}

func TestRenderImage_SetCellSize(t *testing.T) {
	r, alloc, rec := newRenderer(t)
	ref := createQuadrants(t, r)
	defer ref.Release()

	require.NoError(t, r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	r.SetCellSize(cellimage.Sz(2, 2))
	assert.Equal(t, cellimage.Sz(2, 2), r.CellSize())

	rec.cmds = nil
	require.NoError(t, r.Render(RenderImage{
		Image:  ref.Image(),
		Extent: cellimage.Sz(2, 2),
		Resize: cellimage.StretchToFill,
	}))
	assert.Equal(t, 8, alloc.reserves)
	assert.Empty(t, alloc.released)
	assert.Equal(t, 8, r.Stats().Slices)
	for _, cmd := range rec.cmds {
		assert.Equal(t, cellimage.Sz(2, 2), cmd.CellSize)
		assert.Len(t, alloc.data[cmd.Slice], 2*2*4)
	}
}

func TestRenderImage_AllocationFailure(t *testing.T) {
	r, alloc, rec := newRenderer(t)
	ref := createQuadrants(t, r)
	defer ref.Release()

	alloc.failAt = 3
	err := r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, cellimage.ErrAtlasAllocationFailed)
	assert.ErrorIs(t, err, atlas.ErrAtlasFull)
	assert.Empty(t, rec.cmds)
	assert.Equal(t, 2, r.Stats().Slices)

	alloc.failAt = 0
	require.NoError(t, r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	assert.Len(t, rec.cmds, 4)
	assert.Equal(t, 4, r.Stats().Slices)
}

func TestRenderImage_BindFailure(t *testing.T) {
	r, alloc, rec := newRenderer(t)
	ref := createQuadrants(t, r)
	defer ref.Release()

	alloc.bindFail = 3
	err := r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2))
	require.ErrorIs(t, err, atlas.ErrUnknownSlice)
	assert.Empty(t, rec.cmds)
	assert.Equal(t, 4, r.Stats().Slices)

	require.NoError(t, r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	assert.Len(t, rec.cmds, 4)
}

func TestRenderImage_EvictsRemovedImages(t *testing.T) {
	r, alloc, _ := newRenderer(t)
	keep := createQuadrants(t, r)
	defer keep.Release()
	gone := createQuadrants(t, r)

	require.NoError(t, r.RenderImage(keep.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	require.NoError(t, r.RenderImage(gone.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	require.Equal(t, 8, r.Stats().Slices)

	gone.Release()
	assert.Equal(t, 1, r.Pool().ImageCount())
	assert.Equal(t, 4, r.Stats().Slices)
	assert.Len(t, alloc.released, 4)
}

func TestRenderImage_Mask(t *testing.T) {
	r, alloc, rec := newRenderer(t)
	ref := createQuadrants(t, r)
	defer ref.Release()

	require.NoError(t, r.Render(RenderImage{
		Image:  ref.Image(),
		Extent: cellimage.Sz(2, 2),
		Mask:   []bool{true, false, false},
	}))
	assert.Equal(t, []cellimage.Coordinate{cellimage.Coord(0, 0), cellimage.Coord(1, 1)}, rec.cells())
	assert.Equal(t, 2, alloc.reserves)
}

func TestRenderImage_ResizeToFitCenters(t *testing.T) {
	r, alloc, rec := newRenderer(t)
	ref, err := r.Pool().Create(fill(8*4, red), cellimage.Sz(8, 4))
	require.NoError(t, err)
	defer ref.Release()

	// 8x4 image in an 8x8 area: rows 0-1 and 6-7 stay transparent.
	require.NoError(t, r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	require.Len(t, rec.cmds, 4)

	top := append(fill(8, clear4), fill(8, red)...)
	bottom := append(fill(8, red), fill(8, clear4)...)
	assert.Equal(t, top, alloc.data[rec.cmds[0].Slice])
	assert.Equal(t, top, alloc.data[rec.cmds[1].Slice])
	assert.Equal(t, bottom, alloc.data[rec.cmds[2].Slice])
	assert.Equal(t, bottom, alloc.data[rec.cmds[3].Slice])
}

func TestRenderImage_StretchScales(t *testing.T) {
	r, alloc, rec := newRenderer(t)
	ref, err := r.Pool().Create(quadrants(2), cellimage.Sz(2, 2))
	require.NoError(t, err)
	defer ref.Release()

	require.NoError(t, r.Render(RenderImage{
		Image:  ref.Image(),
		Extent: cellimage.Sz(2, 2),
		Resize: cellimage.StretchToFill,
	}))
	require.Len(t, rec.cmds, 4)
	assert.Equal(t, fill(16, red), alloc.data[rec.cmds[0].Slice])
	assert.Equal(t, fill(16, green), alloc.data[rec.cmds[1].Slice])
	assert.Equal(t, fill(16, blue), alloc.data[rec.cmds[2].Slice])
	assert.Equal(t, fill(16, yellow), alloc.data[rec.cmds[3].Slice])
}

func TestRender_Errors(t *testing.T) {
	r, _, rec := newRenderer(t)
	ref := createQuadrants(t, r)
	defer ref.Release()

	other := cellimage.NewPool()
	foreign, err := other.Create(quadrants(8), cellimage.Sz(8, 8))
	require.NoError(t, err)
	defer foreign.Release()

	err = r.RenderImage(foreign.Image(), cellimage.Coord(0, 0), cellimage.Sz(1, 1))
	assert.ErrorIs(t, err, ErrUnknownImage)

	err = r.RenderImage(nil, cellimage.Coord(0, 0), cellimage.Sz(1, 1))
	assert.ErrorIs(t, err, ErrUnknownImage)

	err = r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(0, 1))
	assert.ErrorIs(t, err, cellimage.ErrInvalidCellSpan)

	r.SetCellSize(cellimage.Sz(0, 4))
	err = r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(1, 1))
	assert.ErrorIs(t, err, ErrInvalidCellSize)

	assert.Empty(t, rec.cmds)
}

func TestRenderImage_Atlas(t *testing.T) {
	a := atlas.New(atlas.Config{Width: 64, Height: 64})
	rec := &recorder{}
	r := NewImageRenderer(rec, a, cellimage.Sz(4, 4))
	ref := createQuadrants(t, r)

	require.NoError(t, r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, rec.cmds[3].Slice, a.Bound())

	sub, ok := a.SubImage(rec.cmds[3].Slice)
	require.True(t, ok)
	assert.Equal(t, yellow[:], sub.Pix[:4])

	ref.Release()
	assert.Equal(t, 0, a.Len())

	r.Close()
	assert.Equal(t, 0, r.Pool().ImageCount())
}

func TestCommandListenerFunc(t *testing.T) {
	var got []DrawCommand
	l := CommandListenerFunc(func(cmd DrawCommand) { got = append(got, cmd) })
	l.DrawSlice(DrawCommand{Cell: cellimage.Coord(1, 2)})
	require.Len(t, got, 1)
	assert.Equal(t, cellimage.Coord(1, 2), got[0].Cell)
	assert.Contains(t, got[0].String(), "(1, 2)")
}

func TestRenderImage_VisibleMask(t *testing.T) {
	cmd := RenderImage{Mask: []bool{false, true}}
	assert.False(t, cmd.visible(0))
	assert.True(t, cmd.visible(1))
	assert.True(t, cmd.visible(2))
}

func TestAllocationFailure_KeepsPool(t *testing.T) {
	r, alloc, _ := newRenderer(t)
	ref := createQuadrants(t, r)
	defer ref.Release()
	alloc.failAt = 1

	err := r.RenderImage(ref.Image(), cellimage.Coord(0, 0), cellimage.Sz(1, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cellimage.ErrAtlasAllocationFailed))
	assert.Equal(t, 1, r.Pool().ImageCount())
}

func TestRenderImage_RecyclesCanvas(t *testing.T) {
	r, _, _ := newRenderer(t)
	a := createQuadrants(t, r)
	defer a.Release()
	b := createQuadrants(t, r)
	defer b.Release()

	require.NoError(t, r.RenderImage(a.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	assert.Equal(t, 1, r.buffers.Len())

	// Fully cached passes never build a canvas.
	require.NoError(t, r.RenderImage(a.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	assert.Equal(t, uint64(1), r.buffers.Allocated())

	require.NoError(t, r.RenderImage(b.Image(), cellimage.Coord(0, 0), cellimage.Sz(2, 2)))
	assert.Equal(t, uint64(1), r.buffers.Reused())
	assert.Equal(t, uint64(1), r.buffers.Allocated())
}
