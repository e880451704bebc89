package detector

import (
	"image"
	"image/color"

	"github.com/nvr-ai/go-anpr/images"
	"gocv.io/x/gocv"
)

// Isolate masks the image to the plate polygon and crops the grayscale result
// to the bounding box of the mask.
//
// The returned Mat is owned by the caller. A degenerate polygon (zero area or
// no pixels covered) yields false and no Mat.
//
// Arguments:
//   - img: The source image, colour or grayscale. It is not modified.
//   - region: The located plate polygon.
//
// Returns:
//   - gocv.Mat: The cropped single-channel plate image.
//   - bool: Whether a non-empty crop was produced.
func Isolate(img gocv.Mat, region PlateRegion) (gocv.Mat, bool) {
	if img.Empty() || ContourArea(region.Polygon()) <= 0 {
		return gocv.NewMat(), false
	}

	gray := images.ToGray(img)
	defer gray.Close()

	mask := gocv.Zeros(gray.Rows(), gray.Cols(), gocv.MatTypeCV8UC1)
	defer mask.Close()

	polygon := gocv.NewPointsVectorFromPoints([][]image.Point{region.Polygon()})
	defer polygon.Close()
	gocv.FillPoly(&mask, polygon, color.RGBA{R: 255, G: 255, B: 255, A: 0})

	bounds, ok := maskBounds(mask)
	if !ok {
		return gocv.NewMat(), false
	}

	masked := gocv.Zeros(gray.Rows(), gray.Cols(), gocv.MatTypeCV8UC1)
	defer masked.Close()
	gocv.BitwiseAndWithMask(gray, gray, &masked, mask)

	crop := masked.Region(bounds)
	defer crop.Close()

	return crop.Clone(), true
}

// maskBounds returns the bounding box of the non-zero pixels of a CV_8UC1 mask.
func maskBounds(mask gocv.Mat) (image.Rectangle, bool) {
	if gocv.CountNonZero(mask) == 0 {
		return image.Rectangle{}, false
	}

	data := mask.ToBytes()
	cols := mask.Cols()

	minX, minY, maxX, maxY := cols, mask.Rows(), -1, -1
	for i, v := range data {
		if v == 0 {
			continue
		}
		x, y := i%cols, i/cols
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
