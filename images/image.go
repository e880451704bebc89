// Package images - Image decoding, colour conversion and edge extraction.
package images

import (
	"crypto/md5"
	"fmt"

	"gocv.io/x/gocv"
)

// ImageFormat represents supported image formats for annotated output.
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// Ext returns the file extension (with leading dot) for the format.
//
// Unknown formats fall back to PNG so that writes never fail on the extension.
func (f ImageFormat) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatWebP:
		return ".webp"
	default:
		return ".png"
	}
}

// Load decodes the image file at path into a BGR Mat.
//
// Arguments:
//   - path: Path of the image file on disk.
//
// Returns:
//   - gocv.Mat: The decoded image, owned by the caller.
//   - error: An error if the file could not be read or decoded.
func Load(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("failed to decode image %q", path)
	}
	return img, nil
}

// Decode decodes an encoded image held in memory into a BGR Mat.
//
// Arguments:
//   - data: Encoded image bytes (JPEG, PNG, BMP, WebP).
//
// Returns:
//   - gocv.Mat: The decoded image, owned by the caller.
//   - error: An error if the bytes are not a decodable image.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("failed to decode image: no data")
	}
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("failed to decode image: empty result")
	}
	return img, nil
}

// ToGray returns a new single-channel copy of img.
//
// Single-channel input is cloned, three-channel input is treated as BGR and
// four-channel input as BGRA. The source is never modified.
func ToGray(img gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	switch img.Channels() {
	case 1:
		img.CopyTo(&gray)
	case 4:
		gocv.CvtColor(img, &gray, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}
	return gray
}

// ComputeMatChecksum returns a hex MD5 digest of the Mat's geometry and pixels.
//
// It is used to verify that pipeline stages never mutate their inputs.
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	hash := md5.New()
	fmt.Fprintf(hash, "%dx%dx%d:", mat.Rows(), mat.Cols(), mat.Type())

	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}
	data, err := src.DataPtrUint8()
	if err != nil {
		return "unreadable"
	}
	hash.Write(data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
