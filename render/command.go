package render

import (
	"fmt"

	"github.com/gogpu/cellimage"
	"github.com/gogpu/cellimage/atlas"
)

// Allocator is the texture atlas capability consumed by ImageRenderer.
// atlas.TextureAtlas implements it.
type Allocator interface {
	// Reserve stores RGBA pixels of the given size and returns a handle.
	Reserve(data []byte, size cellimage.Size) (atlas.SliceHandle, error)

	// Release frees every resource tied to the handle.
	Release(h atlas.SliceHandle)

	// Bind prepares the slice for drawing and returns its atlas region.
	Bind(h atlas.SliceHandle) (atlas.Region, error)
}

// DrawCommand asks the backend to draw one cached slice into one grid cell.
type DrawCommand struct {
	// Image is the image the slice was cut from.
	Image cellimage.ImageID

	// Slice is the atlas handle, already bound.
	Slice atlas.SliceHandle

	// Region is the slice's area in the atlas texture.
	Region atlas.Region

	// Cell is the destination grid cell on screen.
	Cell cellimage.Coordinate

	// CellSize is the pixel size of the destination cell.
	CellSize cellimage.Size
}

// String returns a debug description of the command.
func (c DrawCommand) String() string {
	return fmt.Sprintf("Draw<%s %s %s -> cell %s>", c.Image, c.Slice, c.Region, c.Cell)
}

// CommandListener receives the draw commands of a render pass.
type CommandListener interface {
	DrawSlice(cmd DrawCommand)
}

// CommandListenerFunc adapts a function to CommandListener.
type CommandListenerFunc func(cmd DrawCommand)

// DrawSlice calls f(cmd).
func (f CommandListenerFunc) DrawSlice(cmd DrawCommand) { f(cmd) }

// RenderImage is a request to draw an image into a rectangle of grid cells.
type RenderImage struct {
	// Image must be a live image of the renderer's pool.
	Image *cellimage.Image

	// Offset is the top-left destination grid cell.
	Offset cellimage.Coordinate

	// Extent is the destination size in grid cells.
	Extent cellimage.Size

	// Resize fits the image into Extent.
	Resize cellimage.Resize

	// Alignment positions the image inside Extent when it does not cover it.
	Alignment cellimage.Alignment

	// Mask optionally selects cells, row-major over Extent. Cells whose index
	// is covered by Mask and set to false are skipped; a nil or short mask
	// draws the remaining cells.
	Mask []bool
}

// visible reports whether the cell at index i is drawn.
func (cmd *RenderImage) visible(i int) bool {
	return i >= len(cmd.Mask) || cmd.Mask[i]
}
