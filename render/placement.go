package render

import (
	"image"

	"github.com/gogpu/cellimage"
	"golang.org/x/image/draw"
)

// fitSize returns the pixel size an image of size natural takes inside
// area under the given resize policy.
func fitSize(natural, area cellimage.Size, policy cellimage.Resize) cellimage.Size {
	switch policy {
	case cellimage.StretchToFill:
		return area
	case cellimage.ResizeToFit, cellimage.ResizeToFill:
		if !natural.IsPositive() || !area.IsPositive() {
			return natural
		}
		// Width of the image when its height matches the area.
		heightBound := area.Height * natural.Width / natural.Height
		if (heightBound <= area.Width) == (policy == cellimage.ResizeToFit) {
			return cellimage.Size{Width: heightBound, Height: area.Height}
		}
		return cellimage.Size{Width: area.Width, Height: area.Width * natural.Height / natural.Width}
	default:
		return natural
	}
}

// placeImage draws img into pix, a zeroed canvas of area pixels, following
// the resize and alignment policies. Overflow is cropped.
func placeImage(pix []byte, img *cellimage.Image, area cellimage.Size, resize cellimage.Resize, align cellimage.Alignment, scaler draw.Scaler) *image.NRGBA {
	canvas := &image.NRGBA{
		Pix:    pix,
		Stride: area.Width * cellimage.BytesPerPixel,
		Rect:   image.Rect(0, 0, area.Width, area.Height),
	}

	natural := img.Size()
	target := fitSize(natural, area, resize)
	if target.Area() == 0 || natural.Area() == 0 {
		return canvas
	}

	src := &image.NRGBA{
		Pix:    img.Data(),
		Stride: natural.Width * cellimage.BytesPerPixel,
		Rect:   image.Rect(0, 0, natural.Width, natural.Height),
	}

	origin := align.Offset(area, target)
	dst := image.Rect(origin.Column, origin.Row, origin.Column+target.Width, origin.Row+target.Height)

	if target == natural {
		draw.Draw(canvas, dst, src, image.Point{}, draw.Src)
	} else {
		scaler.Scale(canvas, dst, src, src.Bounds(), draw.Src, nil)
	}
	return canvas
}

// Scaler returns the x/image/draw scaler for a configuration name:
// "nearest", "approxbilinear", "bilinear" or "catmullrom". Unknown names
// select CatmullRom.
func Scaler(name string) draw.Scaler {
	switch name {
	case "nearest":
		return draw.NearestNeighbor
	case "approxbilinear":
		return draw.ApproxBiLinear
	case "bilinear":
		return draw.BiLinear
	default:
		return draw.CatmullRom
	}
}
