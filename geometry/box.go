// Package geometry - Axis-aligned bounding box primitives shared by the
// detection, tracking, and suppression stages.
package geometry

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Point is a pixel coordinate.
type Point struct {
	X, Y float32
}

// DistanceTo returns the Euclidean distance to another point.
func (p Point) DistanceTo(o Point) float32 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math32.Sqrt(dx*dx + dy*dy)
}

// Box is a lightweight bounding box.
type Box struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 float32
}

func (b Box) String() string {
	return fmt.Sprintf("(%.1f, %.1f)-(%.1f, %.1f)", b.X1, b.Y1, b.X2, b.Y2)
}

// Width returns the box width in pixels.
func (b Box) Width() float32 {
	return b.X2 - b.X1
}

// Height returns the box height in pixels.
func (b Box) Height() float32 {
	return b.Y2 - b.Y1
}

// Area returns the box area in square pixels.
func (b Box) Area() float32 {
	return b.Width() * b.Height()
}

// Center returns the center point of the box.
func (b Box) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Valid reports whether the box has positive extent on both axes.
func (b Box) Valid() bool {
	return b.X2 > b.X1 && b.Y2 > b.Y1
}

// AspectRatio returns width/height, or 0 for a degenerate box.
func (b Box) AspectRatio() float32 {
	h := b.Height()
	if h <= 0 {
		return 0
	}
	return b.Width() / h
}

// Intersection calculates the intersection area between two bounding boxes.
//
// Arguments:
// - other: The other bounding box to calculate intersection with.
//
// Returns:
// - The area of intersection in pixels as float32, 0 when disjoint.
func (b Box) Intersection(other Box) float32 {
	ix1 := math32.Max(b.X1, other.X1)
	iy1 := math32.Max(b.Y1, other.Y1)
	ix2 := math32.Min(b.X2, other.X2)
	iy2 := math32.Min(b.Y2, other.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	return interW * interH
}

// Union calculates the union area between two bounding boxes using the
// principle of inclusion-exclusion:
//
//	Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
func (b Box) Union(other Box) float32 {
	return b.Area() + other.Area() - b.Intersection(other)
}

// IoU calculates the Intersection over Union between two bounding boxes.
//
// This metric is used for duplicate suppression and for matching detections
// to existing tracks across frames.
//
// Returns:
// - The IoU value between 0 and 1; 0 when the boxes do not overlap.
func (b Box) IoU(other Box) float32 {
	inter := b.Intersection(other)
	if inter <= 0 {
		return 0
	}
	union := b.Union(other)
	if union <= 0 {
		return 0
	}
	return inter / union
}
