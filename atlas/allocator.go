package atlas

import (
	"fmt"
	"image"
)

// Default atlas settings.
const (
	// DefaultAtlasSize is the default atlas dimension (2048x2048).
	DefaultAtlasSize = 2048

	// MinAtlasSize is the minimum atlas dimension (64x64).
	MinAtlasSize = 64

	// DefaultShelfPadding is the padding between slices and shelves.
	DefaultShelfPadding = 1
)

// Region is a rectangular area of the atlas texture, in pixels.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// IsValid returns true if the region has valid dimensions.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// Contains returns true if the point (x, y) is inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf represents a horizontal shelf in the shelf-packing algorithm.
type shelf struct {
	y      int // Top Y coordinate of this shelf
	height int // Height of this shelf (tallest item so far)
	nextX  int // Next available X position on this shelf
}

// RectAllocator packs rectangles into a fixed area using shelves.
//
// Each new rectangle is placed on the first shelf it fits on, or on a new
// shelf below the last one. Freed rectangles are not reused individually;
// the whole area becomes available again once every rectangle is freed.
// Terminal image slices all have the cell size, so shelves fill evenly.
type RectAllocator struct {
	width   int
	height  int
	padding int

	shelves []*shelf

	allocCount int
	usedArea   int
}

// NewRectAllocator creates a new rectangular region allocator.
func NewRectAllocator(width, height, padding int) *RectAllocator {
	if width < MinAtlasSize {
		width = MinAtlasSize
	}
	if height < MinAtlasSize {
		height = MinAtlasSize
	}
	if padding < 0 {
		padding = 0
	}

	return &RectAllocator{
		width:   width,
		height:  height,
		shelves: make([]*shelf, 0, 16),
		padding: padding,
	}
}

// Allocate finds space for a rectangle of the given size.
// Returns an invalid region if the rectangle cannot be allocated.
func (a *RectAllocator) Allocate(width, height int) Region {
	if width <= 0 || height <= 0 {
		return Region{}
	}

	paddedWidth := width + a.padding
	paddedHeight := height + a.padding

	if paddedWidth > a.width || paddedHeight > a.height {
		return Region{}
	}

	for _, s := range a.shelves {
		if a.fitsOnShelf(s, paddedWidth, paddedHeight) {
			return a.allocateOnShelf(s, width, height, paddedWidth)
		}
	}

	return a.allocateNewShelf(width, height, paddedWidth, paddedHeight)
}

// fitsOnShelf checks if a rectangle fits on the given shelf. A shelf can only
// grow taller while it is still empty.
func (a *RectAllocator) fitsOnShelf(s *shelf, paddedWidth, paddedHeight int) bool {
	if s.nextX+paddedWidth > a.width {
		return false
	}
	if paddedHeight > s.height && s.nextX > 0 {
		return false
	}
	return true
}

func (a *RectAllocator) allocateOnShelf(s *shelf, width, height, paddedWidth int) Region {
	region := Region{X: s.nextX, Y: s.y, Width: width, Height: height}

	s.nextX += paddedWidth
	if height+a.padding > s.height {
		s.height = height + a.padding
	}

	a.allocCount++
	a.usedArea += width * height
	return region
}

func (a *RectAllocator) allocateNewShelf(width, height, paddedWidth, paddedHeight int) Region {
	newY := 0
	if len(a.shelves) > 0 {
		last := a.shelves[len(a.shelves)-1]
		newY = last.y + last.height
	}

	if newY+paddedHeight > a.height {
		return Region{}
	}

	a.shelves = append(a.shelves, &shelf{
		y:      newY,
		height: paddedHeight,
		nextX:  paddedWidth,
	})

	a.allocCount++
	a.usedArea += width * height
	return Region{X: 0, Y: newY, Width: width, Height: height}
}

// Free returns a region to the allocator. When the last region is freed the
// shelves are reset and the whole area is available again.
func (a *RectAllocator) Free(r Region) {
	if !r.IsValid() || a.allocCount == 0 {
		return
	}
	a.allocCount--
	a.usedArea -= r.Width * r.Height
	if a.allocCount == 0 {
		a.Reset()
	}
}

// Reset clears all allocations, making the entire area available again.
func (a *RectAllocator) Reset() {
	a.shelves = a.shelves[:0]
	a.allocCount = 0
	a.usedArea = 0
}

// UsedArea returns the total area of allocated rectangles.
func (a *RectAllocator) UsedArea() int {
	return a.usedArea
}

// Utilization returns the fraction of area used (0.0 to 1.0).
func (a *RectAllocator) Utilization() float64 {
	totalArea := a.width * a.height
	if totalArea == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(totalArea)
}

// AllocCount returns the number of live allocations.
func (a *RectAllocator) AllocCount() int {
	return a.allocCount
}

// ShelfCount returns the number of shelves currently in use.
func (a *RectAllocator) ShelfCount() int {
	return len(a.shelves)
}
