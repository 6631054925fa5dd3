package render

import (
	"testing"

	"github.com/gogpu/cellimage"
	"github.com/stretchr/testify/assert"
	"golang.org/x/image/draw"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		name    string
		natural cellimage.Size
		area    cellimage.Size
		policy  cellimage.Resize
		want    cellimage.Size
	}{
		{"none keeps size", cellimage.Sz(30, 10), cellimage.Sz(8, 8), cellimage.NoResize, cellimage.Sz(30, 10)},
		{"stretch", cellimage.Sz(30, 10), cellimage.Sz(8, 8), cellimage.StretchToFill, cellimage.Sz(8, 8)},
		{"fit wide", cellimage.Sz(16, 8), cellimage.Sz(8, 8), cellimage.ResizeToFit, cellimage.Sz(8, 4)},
		{"fit tall", cellimage.Sz(8, 16), cellimage.Sz(8, 8), cellimage.ResizeToFit, cellimage.Sz(4, 8)},
		{"fit upscale", cellimage.Sz(4, 2), cellimage.Sz(16, 16), cellimage.ResizeToFit, cellimage.Sz(16, 8)},
		{"fill wide", cellimage.Sz(16, 8), cellimage.Sz(8, 8), cellimage.ResizeToFill, cellimage.Sz(16, 8)},
		{"fill tall", cellimage.Sz(8, 16), cellimage.Sz(8, 8), cellimage.ResizeToFill, cellimage.Sz(8, 16)},
		{"fill into wide area", cellimage.Sz(8, 8), cellimage.Sz(16, 8), cellimage.ResizeToFill, cellimage.Sz(16, 16)},
		{"empty image", cellimage.Sz(0, 0), cellimage.Sz(8, 8), cellimage.ResizeToFit, cellimage.Sz(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fitSize(tt.natural, tt.area, tt.policy))
		})
	}
}

func TestPlaceImage_CropsOverflow(t *testing.T) {
	img, err := cellimage.NewImage(quadrants(8), cellimage.Sz(8, 8), nil)
	if err != nil {
		t.Fatal(err)
	}

	// 8x8 image kept at natural size in a 4x4 area, aligned to the end:
	// only the bottom-right quadrant is visible.
	canvas := placeImage(make([]byte, 64), img, cellimage.Sz(4, 4), cellimage.NoResize, cellimage.BottomEnd, draw.NearestNeighbor)
	assert.Equal(t, fill(16, yellow), canvas.Pix)

	canvas = placeImage(make([]byte, 64), img, cellimage.Sz(4, 4), cellimage.NoResize, cellimage.TopStart, draw.NearestNeighbor)
	assert.Equal(t, fill(16, red), canvas.Pix)
}

func TestPlaceImage_EmptyImage(t *testing.T) {
	img, err := cellimage.NewImage(nil, cellimage.Sz(0, 0), nil)
	if err != nil {
		t.Fatal(err)
	}
	canvas := placeImage(make([]byte, 16), img, cellimage.Sz(2, 2), cellimage.ResizeToFit, cellimage.MiddleCenter, draw.CatmullRom)
	assert.Equal(t, fill(4, clear4), canvas.Pix)
}

func TestScaler(t *testing.T) {
	assert.Equal(t, draw.Scaler(draw.NearestNeighbor), Scaler("nearest"))
	assert.Equal(t, draw.Scaler(draw.ApproxBiLinear), Scaler("approxbilinear"))
	assert.Equal(t, draw.Scaler(draw.BiLinear), Scaler("bilinear"))
	assert.Equal(t, draw.Scaler(draw.CatmullRom), Scaler("catmullrom"))
	assert.Equal(t, draw.Scaler(draw.CatmullRom), Scaler("unknown"))
}
