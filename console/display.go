package console

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-anpr/images"
	"gocv.io/x/gocv"
)

// Display presents a result image to the operator.
type Display interface {
	// Show presents img and returns where it was written, if anywhere.
	Show(img gocv.Mat, name string) (string, error)
}

// FileDisplay writes images into a directory and optionally opens a window.
type FileDisplay struct {
	Dir        string
	Format     images.ImageFormat
	ShowWindow bool
}

// Show implements Display.
func (d FileDisplay) Show(img gocv.Mat, name string) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("nothing to display for %s", name)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(d.Dir, name+d.Format.Ext())
	if !gocv.IMWrite(path, img) {
		return "", fmt.Errorf("failed to write %s", path)
	}

	if d.ShowWindow {
		window := gocv.NewWindow("License Plate Recognition")
		defer window.Close()
		window.IMShow(img)
		window.WaitKey(0)
	}
	return path, nil
}
