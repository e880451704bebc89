// Package util - Filesystem helpers for image collections.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Name is the file name without its extension.
	Name string
}

// ListImageFiles lists the image files of a directory, sorted by file name.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The supported image files (.jpg, .jpeg, .png, .bmp).
// - error: Error if the directory cannot be read.
func ListImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		switch strings.ToLower(ext) {
		case ".jpg", ".jpeg", ".png", ".bmp":
			images = append(images, ImageFile{
				Path: filepath.Join(dir, file.Name()),
				Name: strings.TrimSuffix(file.Name(), ext),
			})
		}
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].Name < images[j].Name
	})

	return images, nil
}
