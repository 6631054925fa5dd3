package cellimage

import (
	"fmt"
	"strings"
)

// Resize hints how an image is fitted into an area of a different size.
type Resize uint8

const (
	// NoResize keeps the natural pixel size.
	NoResize Resize = iota

	// ResizeToFit scales uniformly until the image fits entirely.
	ResizeToFit

	// ResizeToFill scales uniformly until the area is covered, cropping overflow.
	ResizeToFill

	// StretchToFill scales each axis independently to the area size.
	StretchToFill
)

var resizeNames = [...]string{
	NoResize:      "NoResize",
	ResizeToFit:   "ResizeToFit",
	ResizeToFill:  "ResizeToFill",
	StretchToFill: "StretchToFill",
}

// String returns the policy name.
func (r Resize) String() string {
	if int(r) < len(resizeNames) {
		return resizeNames[r]
	}
	return fmt.Sprintf("Resize(%d)", r)
}

// ParseResize parses a policy name case-insensitively.
func ParseResize(s string) (Resize, error) {
	for i, name := range resizeNames {
		if strings.EqualFold(name, s) {
			return Resize(i), nil
		}
	}
	return NoResize, fmt.Errorf("cellimage: unknown resize policy %q", s)
}

// Alignment positions an image inside an area it does not fully cover.
type Alignment uint8

const (
	TopStart Alignment = iota
	TopCenter
	TopEnd
	MiddleStart
	MiddleCenter
	MiddleEnd
	BottomStart
	BottomCenter
	BottomEnd
)

var alignmentNames = [...]string{
	TopStart:     "TopStart",
	TopCenter:    "TopCenter",
	TopEnd:       "TopEnd",
	MiddleStart:  "MiddleStart",
	MiddleCenter: "MiddleCenter",
	MiddleEnd:    "MiddleEnd",
	BottomStart:  "BottomStart",
	BottomCenter: "BottomCenter",
	BottomEnd:    "BottomEnd",
}

// String returns the policy name.
func (a Alignment) String() string {
	if int(a) < len(alignmentNames) {
		return alignmentNames[a]
	}
	return fmt.Sprintf("Alignment(%d)", a)
}

// ParseAlignment parses a policy name case-insensitively.
func ParseAlignment(s string) (Alignment, error) {
	for i, name := range alignmentNames {
		if strings.EqualFold(name, s) {
			return Alignment(i), nil
		}
	}
	return TopStart, fmt.Errorf("cellimage: unknown alignment %q", s)
}

// Offset returns where content of size inner starts inside outer.
// Offsets are negative on an axis where inner is larger than outer.
func (a Alignment) Offset(outer, inner Size) Coordinate {
	free := Size{Width: outer.Width - inner.Width, Height: outer.Height - inner.Height}

	var c Coordinate
	switch a % 3 {
	case 1:
		c.Column = free.Width / 2
	case 2:
		c.Column = free.Width
	}
	switch a / 3 {
	case 1:
		c.Row = free.Height / 2
	case 2:
		c.Row = free.Height
	}
	return c
}
