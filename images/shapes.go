// Package images - Image processing utilities
package images

import "image"

// Rect is a lightweight bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1 int `json:"x1" yaml:"x1"`
	Y1 int `json:"y1" yaml:"y1"`
	X2 int `json:"x2" yaml:"x2"`
	Y2 int `json:"y2" yaml:"y2"`
}

// RectFromPoints returns the smallest Rect containing every point.
//
// Points are pixel coordinates, so the returned maximum is one past the largest
// coordinate. An empty slice yields the zero Rect.
func RectFromPoints(pts []image.Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{X1: pts[0].X, Y1: pts[0].Y, X2: pts[0].X + 1, Y2: pts[0].Y + 1}
	for _, p := range pts[1:] {
		r.X1 = min(r.X1, p.X)
		r.Y1 = min(r.Y1, p.Y)
		r.X2 = max(r.X2, p.X+1)
		r.Y2 = max(r.Y2, p.Y+1)
	}
	return r
}

// Dx returns the width of the box.
func (r Rect) Dx() int { return r.X2 - r.X1 }

// Dy returns the height of the box.
func (r Rect) Dy() int { return r.Y2 - r.Y1 }

// Area returns the pixel area, zero for empty boxes.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Dx() * r.Dy()
}

// Empty reports whether the box contains no pixels.
func (r Rect) Empty() bool {
	return r.X2 <= r.X1 || r.Y2 <= r.Y1
}

// Rectangle converts the box to an image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// CalculateIoU returns the intersection over union of two boxes.
//
// The result lies in [0, 1]; disjoint or empty boxes score 0.
//
// Example Usage:
// ```go
//
//	rect1 := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	rect2 := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//	iou := CalculateIoU(rect1, rect2) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	// Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}
	return float32(interArea) / float32(unionArea)
}
