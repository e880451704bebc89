package detector

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// DefaultTextOffset is the vertical margin between the plate and its label.
const DefaultTextOffset = 60

var (
	boxColor  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	textColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

// Annotate returns a colour copy of img with the plate bounding rectangle
// and the recognised text drawn below the polygon.
//
// The text origin is (first vertex X, second vertex Y + offset), clamped to
// stay inside the image.
func Annotate(img gocv.Mat, region PlateRegion, text string, offset int) gocv.Mat {
	out := gocv.NewMat()
	switch img.Channels() {
	case 1:
		gocv.CvtColor(img, &out, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(img, &out, gocv.ColorBGRAToBGR)
	default:
		img.CopyTo(&out)
	}

	gocv.Rectangle(&out, region.Bounds.Rectangle(), boxColor, 3)

	if text != "" {
		origin := image.Pt(region.Vertices[0].X, region.Vertices[1].Y+offset)
		origin = clampPoint(origin, out.Cols(), out.Rows())
		gocv.PutTextWithParams(&out, text, origin, gocv.FontHersheySimplex, 1, textColor, 2, gocv.LineAA, false)
	}

	return out
}

func clampPoint(p image.Point, width, height int) image.Point {
	if p.X < 0 {
		p.X = 0
	}
	if p.X > width-1 {
		p.X = width - 1
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y > height-1 {
		p.Y = height - 1
	}
	return p
}
