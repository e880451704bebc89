package detector

import (
	"image"
	"image/color"
	"testing"

	"github.com/nvr-ai/go-anpr/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func rectContour(x, y, w, h int) Contour {
	return Contour{
		image.Pt(x, y),
		image.Pt(x, y+h),
		image.Pt(x+w, y+h),
		image.Pt(x+w, y),
	}
}

// hexContour is a closed six point boundary whose area grows with size.
func hexContour(x, y, size int) Contour {
	return Contour{
		image.Pt(x+size, y),
		image.Pt(x+2*size, y),
		image.Pt(x+3*size, y+size),
		image.Pt(x+2*size, y+2*size),
		image.Pt(x+size, y+2*size),
		image.Pt(x, y+size),
	}
}

// plateFrame draws a white filled rectangle on a black BGR canvas.
func plateFrame(width, height int, plate image.Rectangle) gocv.Mat {
	frame := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	frame.SetTo(gocv.NewScalar(0, 0, 0, 0))
	gocv.Rectangle(&frame, plate, color.RGBA{255, 255, 255, 0}, -1)
	return frame
}

func TestSelect_LargestQuadrilateralWins(t *testing.T) {
	small := rectContour(10, 10, 20, 25) // 500
	large := rectContour(100, 100, 30, 40) // 1200

	tests := []struct {
		name     string
		contours []Contour
	}{
		{name: "large first", contours: []Contour{large, small}},
		{name: "large later", contours: []Contour{small, large}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, ok := NewLocator().Select(tt.contours)
			require.True(t, ok)
			assert.ElementsMatch(t, []image.Point(large), region.Polygon())
			assert.Equal(t, 1200, (region.Bounds.Dx()-1)*(region.Bounds.Dy()-1))
		})
	}
}

func TestSelect_Deterministic(t *testing.T) {
	contours := []Contour{
		hexContour(0, 0, 10),
		rectContour(50, 50, 30, 10),
		rectContour(200, 200, 30, 10),
		hexContour(300, 300, 4),
	}
	l := NewLocator()
	l.Simplify = func(c Contour, epsilon float64) Contour { return c }

	first, ok := l.Select(contours)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := l.Select(contours)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
	// equal areas keep input order
	assert.Equal(t, rectContour(50, 50, 30, 10)[0], first.Vertices[0])
}

func TestSelect_BoundedSearch(t *testing.T) {
	contours := make([]Contour, 0, 25)
	for i := 0; i < 25; i++ {
		contours = append(contours, hexContour(i*100, 0, 5+i))
	}

	calls := 0
	l := NewLocator()
	l.Simplify = func(c Contour, epsilon float64) Contour {
		calls++
		return c
	}

	_, ok := l.Select(contours)
	assert.False(t, ok)
	assert.Equal(t, DefaultMaxCandidates, calls)
}

func TestSelect_QuadrilateralOutsideTopCandidatesNeverWins(t *testing.T) {
	contours := []Contour{rectContour(0, 0, 5, 5)}
	for i := 0; i < DefaultMaxCandidates; i++ {
		contours = append(contours, hexContour(i*100, 100, 20+i))
	}

	l := NewLocator()
	l.Simplify = func(c Contour, epsilon float64) Contour { return c }

	_, ok := l.Select(contours)
	assert.False(t, ok)

	l.MaxCandidates = DefaultMaxCandidates + 1
	region, ok := l.Select(contours)
	require.True(t, ok)
	assert.Equal(t, image.Pt(0, 0), region.Vertices[0])
}

func TestSelect_ShortContoursUseASlot(t *testing.T) {
	line := Contour{image.Pt(0, 0), image.Pt(500, 0)}
	quad := rectContour(0, 0, 10, 10)

	calls := 0
	l := &Locator{
		MaxCandidates: 1,
		Epsilon:       DefaultEpsilon,
		Simplify: func(c Contour, epsilon float64) Contour {
			calls++
			return c
		},
		Area: func(c Contour) float64 {
			if len(c) == 2 {
				return 1e6
			}
			return ContourArea(c)
		},
	}

	_, ok := l.Select([]Contour{quad, line})
	assert.False(t, ok)
	assert.Zero(t, calls)
}

func TestSelect_Empty(t *testing.T) {
	_, ok := NewLocator().Select(nil)
	assert.False(t, ok)
}

func TestApproxPolygon(t *testing.T) {
	// a rectangle with small bumps along its edges
	noisy := Contour{
		image.Pt(0, 0), image.Pt(50, 2), image.Pt(100, 0),
		image.Pt(98, 25), image.Pt(100, 50),
		image.Pt(50, 48), image.Pt(0, 50),
		image.Pt(2, 25),
	}
	approx := ApproxPolygon(noisy, DefaultEpsilon)
	assert.Len(t, approx, 4)
	assert.InDelta(t, 4700, ContourArea(noisy), 1)
}

func TestLocate_SyntheticPlate(t *testing.T) {
	frame := plateFrame(320, 240, image.Rect(80, 90, 240, 150))
	defer frame.Close()

	edges := images.ExtractEdges(frame, images.DefaultEdgeConfig())
	defer edges.Close()

	l := NewLocator()
	region, ok := l.Locate(edges)
	require.True(t, ok)

	assert.InDelta(t, 80, region.Bounds.X1, 3)
	assert.InDelta(t, 90, region.Bounds.Y1, 3)
	assert.InDelta(t, 240, region.Bounds.X2, 3)
	assert.InDelta(t, 150, region.Bounds.Y2, 3)

	again, ok := l.Locate(edges)
	require.True(t, ok)
	assert.Equal(t, region, again)
}

func TestLocate_BlankImage(t *testing.T) {
	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(90, 90, 90, 0))

	edges := images.ExtractEdges(frame, images.DefaultEdgeConfig())
	defer edges.Close()

	_, ok := NewLocator().Locate(edges)
	assert.False(t, ok)

	empty := gocv.NewMat()
	defer empty.Close()
	_, ok = NewLocator().Locate(empty)
	assert.False(t, ok)
}
