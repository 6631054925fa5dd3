package cellimage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripes returns an 8x8 image whose rows alternate between red (even)
// and blue (odd).
func stripes() []byte {
	var data []byte
	for y := range 8 {
		px := []byte{0xFF, 0, 0, 0xFF}
		if y%2 == 1 {
			px = []byte{0, 0, 0xFF, 0xFF}
		}
		data = append(data, bytes.Repeat(px, 8)...)
	}
	return data
}

func TestNewRasterizedImage(t *testing.T) {
	p := NewPool()
	ref, err := p.Create(gradient(10, 7), Sz(10, 7))
	require.NoError(t, err)
	defer ref.Release()

	r, err := NewRasterizedImage(ref, Sz(3, 2), MiddleCenter, ResizeToFit)
	require.NoError(t, err)
	assert.Equal(t, 2, ref.Image().RefCount())
	assert.Equal(t, Sz(3, 2), r.CellSpan())
	assert.Equal(t, MiddleCenter, r.Alignment())
	assert.Equal(t, ResizeToFit, r.Resize())
	assert.True(t, r.Image().Equal(ref))

	// 10/3 and 7/2 truncate.
	assert.Equal(t, Sz(3, 3), r.CellSize())

	r.Release()
	assert.Equal(t, 1, ref.Image().RefCount())
}

func TestNewRasterizedImage_Errors(t *testing.T) {
	p := NewPool()
	ref, err := p.Create(gradient(4, 4), Sz(4, 4))
	require.NoError(t, err)
	defer ref.Release()

	for _, span := range []Size{Sz(0, 1), Sz(1, 0), Sz(-1, 2)} {
		_, err := NewRasterizedImage(ref, span, TopStart, NoResize)
		assert.ErrorIs(t, err, ErrInvalidCellSpan, "span %s", span)
	}
	_, err = NewRasterizedImage(Ref{}, Sz(1, 1), TopStart, NoResize)
	assert.ErrorIs(t, err, ErrInvalidImageData)
	assert.Equal(t, 1, ref.Image().RefCount())
}

func TestRasterizedImage_Fragment(t *testing.T) {
	p := NewPool()
	ref, err := p.Create(gradient(4, 4), Sz(4, 4))
	require.NoError(t, err)
	defer ref.Release()

	r, err := NewRasterizedImage(ref, Sz(2, 2), TopStart, NoResize)
	require.NoError(t, err)
	defer r.Release()

	for row := range 2 {
		for col := range 2 {
			f, err := r.Fragment(Coord(row, col))
			require.NoError(t, err)
			assert.Equal(t, Coord(row*2, col*2), f.Offset())
			assert.Equal(t, Sz(2, 2), f.Size())
			assert.Len(t, f.Data(), r.CellSpan().Area()*BytesPerPixel)
			f.Release()
		}
	}

	for _, pos := range []Coordinate{Coord(2, 0), Coord(0, 2), Coord(-1, 0)} {
		_, err := r.Fragment(pos)
		assert.ErrorIs(t, err, ErrOutOfRange, "pos %s", pos)
	}
	assert.Equal(t, 2, ref.Image().RefCount())
}

func TestRasterizedImage_ColumnOffset(t *testing.T) {
	p := NewPool()
	ref, err := p.Create(gradient(4, 2), Sz(4, 2))
	require.NoError(t, err)
	defer ref.Release()

	r, err := NewRasterizedImage(ref, Sz(2, 1), TopStart, NoResize)
	require.NoError(t, err)
	defer r.Release()

	f, err := r.Fragment(Coord(0, 1))
	require.NoError(t, err)
	assert.Equal(t, byte(0), f.Data()[0])
	f.Release()

	r.SetColumnOffset(true)
	f, err = r.Fragment(Coord(0, 1))
	require.NoError(t, err)
	assert.Equal(t, byte(2), f.Data()[0])
	f.Release()
}

func TestScenario_StripedImage(t *testing.T) {
	p := NewPool()
	ref, err := p.Create(stripes(), Sz(8, 8))
	require.NoError(t, err)

	r, err := NewRasterizedImage(ref, Sz(2, 2), TopStart, NoResize)
	require.NoError(t, err)
	assert.Equal(t, Sz(4, 4), r.CellSize())

	red := bytes.Repeat([]byte{0xFF, 0, 0, 0xFF}, 4)
	blue := bytes.Repeat([]byte{0, 0, 0xFF, 0xFF}, 4)
	want := bytes.Join([][]byte{red, blue, red, blue}, nil)

	// Rows 0..3 of the parent.
	top, err := r.Fragment(Coord(0, 0))
	require.NoError(t, err)
	require.Len(t, top.Data(), 4*4*BytesPerPixel)
	assert.Equal(t, want, top.Data())
	top.Release()

	f, err := r.Fragment(Coord(1, 1))
	require.NoError(t, err)

	// Rows 4..7 of the parent.
	data := f.Data()
	require.Len(t, data, 4*4*BytesPerPixel)
	assert.Equal(t, want, data)

	ref.Release()
	f.Release()
	assert.Equal(t, 1, p.ImageCount())
	r.Release()
	assert.Equal(t, 0, p.ImageCount())
}

func TestScenario_TwoReferences(t *testing.T) {
	p := NewPool()
	first, err := p.Create(gradient(2, 2), Sz(2, 2))
	require.NoError(t, err)
	second := first.Clone()

	first.Release()
	assert.Equal(t, 1, p.ImageCount())
	second.Release()
	assert.Equal(t, 0, p.ImageCount())
}
