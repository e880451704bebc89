// Package detector - Plate localisation, isolation and the detection pipeline.
package detector

import (
	"image"
	"sort"

	"github.com/nvr-ai/go-anpr/images"
	"gocv.io/x/gocv"
)

const (
	// DefaultMaxCandidates is the number of largest contours scanned for a plate.
	DefaultMaxCandidates = 10
	// DefaultEpsilon is the polygon simplification tolerance in pixels.
	DefaultEpsilon = 10.0
)

// Contour is a closed boundary in an edge map, points in boundary order.
type Contour []image.Point

// PlateRegion is a four-vertex plate polygon and its bounding box.
type PlateRegion struct {
	Vertices [4]image.Point `json:"vertices" yaml:"vertices"`
	Bounds   images.Rect    `json:"bounds" yaml:"bounds"`
}

// NewPlateRegion creates a region from four vertices.
func NewPlateRegion(vertices [4]image.Point) PlateRegion {
	return PlateRegion{
		Vertices: vertices,
		Bounds:   images.RectFromPoints(vertices[:]),
	}
}

// Polygon returns the vertices as a slice.
func (r PlateRegion) Polygon() []image.Point {
	return r.Vertices[:]
}

// Locator picks the plate quadrilateral among the contours of an edge map.
type Locator struct {
	// MaxCandidates bounds how many contours are simplified, largest first.
	MaxCandidates int
	// Epsilon is the maximum deviation of the simplified polygon.
	Epsilon float64
	// Simplify approximates a closed contour by a polygon.
	Simplify func(c Contour, epsilon float64) Contour
	// Area returns the enclosed area of a contour.
	Area func(c Contour) float64
}

// NewLocator returns a locator with the default candidate bound and tolerance,
// backed by OpenCV polygon approximation and contour area.
func NewLocator() *Locator {
	return &Locator{
		MaxCandidates: DefaultMaxCandidates,
		Epsilon:       DefaultEpsilon,
		Simplify:      ApproxPolygon,
		Area:          ContourArea,
	}
}

// Locate finds the plate region in a binary edge map.
//
// Arguments:
//   - edges: The single-channel edge map.
//
// Returns:
//   - PlateRegion: The selected region when found.
//   - bool: False when no top ranked contour simplifies to four vertices.
func (l *Locator) Locate(edges gocv.Mat) (PlateRegion, bool) {
	if edges.Empty() {
		return PlateRegion{}, false
	}
	return l.Select(FindContours(edges))
}

// Select ranks contours by enclosed area, keeps the largest MaxCandidates and
// accepts the first whose simplification has exactly four vertices.
//
// Ties keep the input order. Contours with fewer than four points still occupy
// a ranked slot but are never simplified.
func (l *Locator) Select(contours []Contour) (PlateRegion, bool) {
	type ranked struct {
		contour Contour
		area    float64
	}

	candidates := make([]ranked, 0, len(contours))
	for _, c := range contours {
		candidates = append(candidates, ranked{contour: c, area: l.Area(c)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})

	limit := l.MaxCandidates
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	for _, c := range candidates[:limit] {
		if len(c.contour) < 4 {
			continue
		}
		approx := l.Simplify(c.contour, l.Epsilon)
		if len(approx) == 4 {
			return NewPlateRegion([4]image.Point{approx[0], approx[1], approx[2], approx[3]}), true
		}
	}

	return PlateRegion{}, false
}

// FindContours extracts every closed boundary of the edge map.
func FindContours(edges gocv.Mat) []Contour {
	found := gocv.FindContours(edges, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		contours = append(contours, Contour(found.At(i).ToPoints()))
	}
	return contours
}

// ApproxPolygon simplifies a closed contour with the Douglas-Peucker algorithm.
func ApproxPolygon(c Contour, epsilon float64) Contour {
	pv := gocv.NewPointVectorFromPoints(c)
	defer pv.Close()

	approx := gocv.ApproxPolyDP(pv, epsilon, true)
	defer approx.Close()

	return Contour(approx.ToPoints())
}

// ContourArea returns the area enclosed by a contour.
func ContourArea(c Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	pv := gocv.NewPointVectorFromPoints(c)
	defer pv.Close()

	return gocv.ContourArea(pv)
}
