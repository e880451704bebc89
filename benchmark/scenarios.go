package benchmark

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-anpr/images"
	"github.com/nvr-ai/go-anpr/util"
	"gopkg.in/yaml.v3"
)

// LabelledImage is an image with its expected plate text and, optionally,
// the expected plate bounding box.
type LabelledImage struct {
	Path  string       `yaml:"path" json:"path"`
	Plate string       `yaml:"plate" json:"plate"`
	Box   *images.Rect `yaml:"box,omitempty" json:"box,omitempty"`
}

// Scenario is a set of labelled images captured under one weather condition.
type Scenario struct {
	Name    string `yaml:"name" json:"name"`
	Weather string `yaml:"weather" json:"weather"`
	// Dir is scanned for images when Images is empty. File stems are the expected plates.
	Dir    string          `yaml:"dir" json:"dir"`
	Images []LabelledImage `yaml:"images" json:"images"`
}

// LoadScenario reads a scenario file.
//
// Relative image paths and Dir are resolved against the file's directory.
//
// Arguments:
//   - path: The scenario YAML file.
//
// Returns:
//   - Scenario: The scenario with absolute or file-relative paths resolved.
//   - error: An error if the file cannot be read or lists no images.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}

	base := filepath.Dir(path)
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	if sc.Weather == "" {
		sc.Weather = "unknown"
	}

	for i := range sc.Images {
		sc.Images[i].Path = resolve(base, sc.Images[i].Path)
	}

	if len(sc.Images) == 0 && sc.Dir != "" {
		sc.Dir = resolve(base, sc.Dir)
		files, err := util.ListImageFiles(sc.Dir)
		if err != nil {
			return Scenario{}, fmt.Errorf("failed to list scenario images: %w", err)
		}
		for _, f := range files {
			sc.Images = append(sc.Images, LabelledImage{Path: f.Path, Plate: f.Name})
		}
	}

	if len(sc.Images) == 0 {
		return Scenario{}, fmt.Errorf("scenario %s has no images", sc.Name)
	}
	return sc, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
