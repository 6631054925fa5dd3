// Package preview shows rendered image slices in a text terminal.
//
// Each grid cell becomes one terminal cell drawn with an upper half block:
// the foreground carries the average color of the slice's top half, the
// background the average of its bottom half.
package preview

import (
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/cellimage"
	"github.com/gogpu/cellimage/atlas"
	"github.com/gogpu/cellimage/render"
	"github.com/lucasb-eyer/go-colorful"
)

// HalfBlock is the rune used for every previewed cell.
const HalfBlock = '▀'

// Screen is a render.CommandListener painting slices onto a tcell screen.
type Screen struct {
	screen tcell.Screen
	atlas  *atlas.TextureAtlas
	drawn  int
}

// New creates a preview reading slice pixels from a.
func New(screen tcell.Screen, a *atlas.TextureAtlas) *Screen {
	return &Screen{screen: screen, atlas: a}
}

// DrawSlice paints the slice at its grid cell. Cells outside the screen and
// unknown slices are skipped.
func (s *Screen) DrawSlice(cmd render.DrawCommand) {
	w, h := s.screen.Size()
	if cmd.Cell.Column < 0 || cmd.Cell.Row < 0 || cmd.Cell.Column >= w || cmd.Cell.Row >= h {
		return
	}

	sub, ok := s.atlas.SubImage(cmd.Slice)
	if !ok {
		cellimage.Logger().Warn("preview: unknown slice", "slice", cmd.Slice)
		return
	}
	s.screen.SetContent(cmd.Cell.Column, cmd.Cell.Row, HalfBlock, nil, CellStyle(sub))
	s.drawn++
}

// Drawn returns how many cells have been painted.
func (s *Screen) Drawn() int {
	return s.drawn
}

// Show flushes painted cells to the terminal.
func (s *Screen) Show() {
	s.screen.Show()
}

// CellStyle returns the half block style for one slice.
func CellStyle(img *image.RGBA) tcell.Style {
	b := img.Bounds()
	mid := b.Min.Y + (b.Dy()+1)/2
	top := average(img, image.Rect(b.Min.X, b.Min.Y, b.Max.X, mid))
	bottom := average(img, image.Rect(b.Min.X, mid, b.Max.X, b.Max.Y))
	return tcell.StyleDefault.Foreground(top).Background(bottom)
}

// average blends the pixels of r in linear RGB, weighted by alpha.
// Fully transparent areas yield tcell.ColorDefault.
func average(img *image.RGBA, r image.Rectangle) tcell.Color {
	var sr, sg, sb, weight float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := img.PixOffset(x, y)
			px := img.Pix[i : i+4 : i+4]
			if px[3] == 0 {
				continue
			}
			alpha := float64(px[3]) / 255
			c := colorful.Color{R: float64(px[0]) / 255, G: float64(px[1]) / 255, B: float64(px[2]) / 255}
			lr, lg, lb := c.LinearRgb()
			sr += lr * alpha
			sg += lg * alpha
			sb += lb * alpha
			weight += alpha
		}
	}
	if weight == 0 {
		return tcell.ColorDefault
	}
	red, green, blue := colorful.LinearRgb(sr/weight, sg/weight, sb/weight).Clamped().RGB255()
	return tcell.NewRGBColor(int32(red), int32(green), int32(blue))
}
