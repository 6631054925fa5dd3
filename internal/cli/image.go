package cli

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/gogpu/cellimage"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// decodeFile reads an image file and returns its pixels as tightly packed
// straight-alpha RGBA.
func decodeFile(path string) ([]byte, cellimage.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cellimage.Size{}, err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, cellimage.Size{}, fmt.Errorf("decode %s: %w", path, err)
	}

	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	cellimage.Logger().Info("image decoded", "path", path, "format", format, "size", b.Size())
	return dst.Pix, cellimage.Sz(b.Dx(), b.Dy()), nil
}

// placement flags shared by slice and preview.
type placementFlags struct {
	cols      int
	rows      int
	resize    string
	alignment string
	scaler    string
}

func (p *placementFlags) policies(defResize cellimage.Resize, defAlign cellimage.Alignment) (cellimage.Resize, cellimage.Alignment, error) {
	resize, align := defResize, defAlign
	var err error
	if p.resize != "" {
		if resize, err = cellimage.ParseResize(p.resize); err != nil {
			return 0, 0, err
		}
	}
	if p.alignment != "" {
		if align, err = cellimage.ParseAlignment(p.alignment); err != nil {
			return 0, 0, err
		}
	}
	return resize, align, nil
}

// extent returns the requested cell extent, deriving a missing dimension
// from the image aspect ratio.
func (p *placementFlags) extent(img, cell cellimage.Size) (cellimage.Size, error) {
	cols, rows := p.cols, p.rows
	if cols < 0 || rows < 0 || !cell.IsPositive() {
		return cellimage.Size{}, fmt.Errorf("%w: %dx%d", cellimage.ErrInvalidCellSpan, cols, rows)
	}
	switch {
	case cols > 0 && rows > 0:
	case cols > 0 && img.Width > 0:
		rows = max(1, (img.Height*cols*cell.Width)/(img.Width*cell.Height))
	case rows > 0 && img.Height > 0:
		cols = max(1, (img.Width*rows*cell.Height)/(img.Height*cell.Width))
	default:
		cols = max(1, (img.Width+cell.Width-1)/cell.Width)
		rows = max(1, (img.Height+cell.Height-1)/cell.Height)
	}
	return cellimage.Sz(cols, rows), nil
}
