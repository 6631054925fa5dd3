package cellimage

import "fmt"

// Size is a two-dimensional extent. Depending on context it is measured in
// pixels (image and cell sizes) or in grid cells (cell spans, extents).
type Size struct {
	Width  int
	Height int
}

// Sz is a convenience function to create a Size.
func Sz(width, height int) Size {
	return Size{Width: width, Height: height}
}

// Area returns Width*Height.
func (s Size) Area() int {
	return s.Width * s.Height
}

// IsPositive reports whether both components are strictly positive.
func (s Size) IsPositive() bool {
	return s.Width > 0 && s.Height > 0
}

// Div divides s by d per axis using integer division.
// The caller must ensure both components of d are non-zero.
func (s Size) Div(d Size) Size {
	return Size{Width: s.Width / d.Width, Height: s.Height / d.Height}
}

// Mul multiplies s by m per axis.
func (s Size) Mul(m Size) Size {
	return Size{Width: s.Width * m.Width, Height: s.Height * m.Height}
}

// String returns a string representation of the size.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Coordinate is a 0-based (row, column) position. Like Size it is either a
// pixel position or a grid cell position depending on context.
type Coordinate struct {
	Row    int
	Column int
}

// Coord is a convenience function to create a Coordinate.
func Coord(row, column int) Coordinate {
	return Coordinate{Row: row, Column: column}
}

// Add returns the component-wise sum of two coordinates.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{Row: c.Row + o.Row, Column: c.Column + o.Column}
}

// In reports whether c lies inside [0, s.Height) x [0, s.Width).
func (c Coordinate) In(s Size) bool {
	return c.Row >= 0 && c.Row < s.Height && c.Column >= 0 && c.Column < s.Width
}

// String returns a string representation of the coordinate.
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Column)
}

// RGBColor is an opaque 24-bit color as produced by palette based graphics
// protocols.
type RGBColor struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// RGB is a convenience function to create an RGBColor.
func RGB(r, g, b uint8) RGBColor {
	return RGBColor{Red: r, Green: g, Blue: b}
}
