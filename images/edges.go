package images

import (
	"gocv.io/x/gocv"
)

// EdgeConfig holds the smoothing and edge detection parameters.
type EdgeConfig struct {
	// Diameter of the pixel neighbourhood used by the bilateral filter.
	Diameter int `json:"diameter" yaml:"diameter"`
	// SigmaColor is the bilateral filter sigma in colour space.
	SigmaColor float64 `json:"sigma_color" yaml:"sigma_color"`
	// SigmaSpace is the bilateral filter sigma in coordinate space.
	SigmaSpace float64 `json:"sigma_space" yaml:"sigma_space"`
	// CannyLow is the lower hysteresis threshold of the Canny detector.
	CannyLow float32 `json:"canny_low" yaml:"canny_low"`
	// CannyHigh is the upper hysteresis threshold of the Canny detector.
	CannyHigh float32 `json:"canny_high" yaml:"canny_high"`
}

// DefaultEdgeConfig returns the parameters tuned for vehicle photographs.
func DefaultEdgeConfig() EdgeConfig {
	return EdgeConfig{
		Diameter:   11,
		SigmaColor: 17,
		SigmaSpace: 17,
		CannyLow:   30,
		CannyHigh:  200,
	}
}

// ExtractEdges converts img into a binary edge map.
//
// The image is reduced to luminance, smoothed with an edge preserving
// bilateral filter and passed through Canny with the configured threshold
// pair. Blank input yields an edge map with no set pixels. The source Mat is
// left untouched.
//
// Arguments:
//   - img: Colour (BGR/BGRA) or grayscale source image.
//   - cfg: Smoothing and threshold parameters.
//
// Returns:
//   - gocv.Mat: A new CV_8UC1 edge map, owned by the caller.
func ExtractEdges(img gocv.Mat, cfg EdgeConfig) gocv.Mat {
	gray := ToGray(img)
	defer gray.Close()

	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.BilateralFilter(gray, &smoothed, cfg.Diameter, cfg.SigmaColor, cfg.SigmaSpace)

	edges := gocv.NewMat()
	gocv.Canny(smoothed, &edges, cfg.CannyLow, cfg.CannyHigh)
	return edges
}
