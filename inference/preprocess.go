package inference

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
)

// PrepareInput fills dst with img laid out as a [3, height, width] tensor for
// a text recognition model.
//
// The image is scaled to the target height keeping its aspect ratio (capped at
// width), converted to luminance, replicated over three channels, normalised
// to [-1, 1] and right padded with zeros.
//
// Arguments:
//   - img: The cropped plate image.
//   - dst: The destination tensor data, at least 3*height*width floats.
//   - width: Model input width.
//   - height: Model input height.
//
// Returns:
//   - error: An error if the input or destination is unusable.
func PrepareInput(img image.Image, dst []float32, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid input size %dx%d", width, height)
	}
	channelSize := width * height
	if len(dst) < channelSize*3 {
		return fmt.Errorf("destination tensor only holds %d floats, needs %d", len(dst), channelSize*3)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return fmt.Errorf("input image is empty")
	}

	ratio := float32(bounds.Dx()) / float32(bounds.Dy())
	resizedW := int(math32.Ceil(float32(height) * ratio))
	resizedW = max(1, min(resizedW, width))

	scaled := resize.Resize(uint(resizedW), uint(height), img, resize.Bilinear)
	origin := scaled.Bounds().Min

	for i := range dst[:channelSize*3] {
		dst[i] = 0
	}

	first := dst[0:channelSize]
	second := dst[channelSize : channelSize*2]
	third := dst[channelSize*2 : channelSize*3]

	for y := 0; y < height; y++ {
		for x := 0; x < resizedW; x++ {
			g := color.GrayModel.Convert(scaled.At(origin.X+x, origin.Y+y)).(color.Gray)
			v := (float32(g.Y)/255.0 - 0.5) / 0.5
			i := y*width + x
			first[i] = v
			second[i] = v
			third[i] = v
		}
	}
	return nil
}
