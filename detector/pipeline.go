package detector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nvr-ai/go-anpr/images"
	"github.com/nvr-ai/go-anpr/profiler"
	"github.com/nvr-ai/go-anpr/recognizer"
	"gocv.io/x/gocv"
)

// Stage names recorded in Detection.Timings and the profiler.
const (
	StageEdges     = "edges"
	StageLocate    = "locate"
	StageIsolate   = "isolate"
	StageRecognize = "recognize"
	StageTotal     = "total"
)

// Status is the terminal outcome of a detection.
type Status int

const (
	// PlateFound means a plate region was located and its text read.
	PlateFound Status = iota
	// NoPlate means no contour qualified as a plate.
	NoPlate
	// NoText means a region was located but no text was recognised.
	NoText
)

func (s Status) String() string {
	switch s {
	case PlateFound:
		return "plate_found"
	case NoPlate:
		return "no_plate"
	case NoText:
		return "no_text"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// TextRecognizer reads text from an isolated plate crop.
type TextRecognizer interface {
	Recognize(ctx context.Context, crop gocv.Mat) (recognizer.RecognizedText, bool, error)
}

// Detection is the result of running the pipeline on one image.
type Detection struct {
	Status     Status
	Text       string
	Confidence float32
	// Region is set whenever a plate polygon was located.
	Region *PlateRegion
	// Image is the annotated copy on PlateFound, otherwise a copy of the input.
	Image   gocv.Mat
	Timings map[string]time.Duration
}

// Message returns the operator-facing description of the outcome.
func (d Detection) Message() string {
	switch d.Status {
	case PlateFound:
		return fmt.Sprintf("Detected license plate: %s", d.Text)
	case NoPlate:
		return "No license plate detected"
	case NoText:
		return "License plate found, but no text was recognized"
	default:
		return d.Status.String()
	}
}

// Close releases the carried image.
func (d *Detection) Close() error {
	return d.Image.Close()
}

// Config holds the pipeline tunables.
type Config struct {
	Edges         images.EdgeConfig `yaml:"edges" json:"edges"`
	MaxCandidates int               `yaml:"max_candidates" json:"max_candidates"`
	Epsilon       float64           `yaml:"epsilon" json:"epsilon"`
	TextOffset    int               `yaml:"text_offset" json:"text_offset"`
}

// DefaultConfig returns the tuned defaults for vehicle photos.
func DefaultConfig() Config {
	return Config{
		Edges:         images.DefaultEdgeConfig(),
		MaxCandidates: DefaultMaxCandidates,
		Epsilon:       DefaultEpsilon,
		TextOffset:    DefaultTextOffset,
	}
}

// Pipeline composes edge extraction, localisation, isolation and recognition.
type Pipeline struct {
	Edges      images.EdgeConfig
	Locator    *Locator
	Recognizer TextRecognizer
	TextOffset int
	Profiler   *profiler.Profiler
}

// NewPipeline creates a pipeline from cfg and a text recognizer.
//
// Arguments:
//   - cfg: The pipeline tunables.
//   - rec: The text recognizer.
//   - prof: Optional profiler aggregating stage timings across runs.
//
// Returns:
//   - *Pipeline: The pipeline.
func NewPipeline(cfg Config, rec TextRecognizer, prof *profiler.Profiler) *Pipeline {
	locator := NewLocator()
	if cfg.MaxCandidates > 0 {
		locator.MaxCandidates = cfg.MaxCandidates
	}
	if cfg.Epsilon > 0 {
		locator.Epsilon = cfg.Epsilon
	}
	return &Pipeline{
		Edges:      cfg.Edges,
		Locator:    locator,
		Recognizer: rec,
		TextOffset: cfg.TextOffset,
		Profiler:   prof,
	}
}

// Detect runs the pipeline on img.
//
// A missing plate or missing text is reported through Detection.Status and
// stops the pipeline at that stage. Errors are returned only for recognizer
// failures. The input image is never modified; the caller must Close the
// returned Detection.
func (p *Pipeline) Detect(ctx context.Context, img gocv.Mat) (Detection, error) {
	if img.Empty() {
		return Detection{}, errors.New("detector: empty image")
	}

	det := Detection{Timings: make(map[string]time.Duration, 5)}
	start := time.Now()
	defer func() {
		p.record(det.Timings, StageTotal, time.Since(start))
	}()

	stage := time.Now()
	edges := images.ExtractEdges(img, p.Edges)
	defer edges.Close()
	p.record(det.Timings, StageEdges, time.Since(stage))

	stage = time.Now()
	region, ok := p.Locator.Locate(edges)
	p.record(det.Timings, StageLocate, time.Since(stage))
	if !ok {
		det.Status = NoPlate
		det.Image = img.Clone()
		return det, nil
	}
	det.Region = &region

	stage = time.Now()
	crop, ok := Isolate(img, region)
	p.record(det.Timings, StageIsolate, time.Since(stage))
	defer crop.Close()
	if !ok {
		det.Status = NoText
		det.Image = img.Clone()
		return det, nil
	}

	stage = time.Now()
	text, ok, err := p.Recognizer.Recognize(ctx, crop)
	p.record(det.Timings, StageRecognize, time.Since(stage))
	if err != nil {
		return Detection{}, fmt.Errorf("recognize plate: %w", err)
	}
	if !ok {
		det.Status = NoText
		det.Image = img.Clone()
		return det, nil
	}

	det.Status = PlateFound
	det.Text = text.Text
	det.Confidence = text.Confidence
	det.Image = Annotate(img, region, text.Text, p.TextOffset)
	return det, nil
}

func (p *Pipeline) record(timings map[string]time.Duration, stage string, d time.Duration) {
	timings[stage] = d
	if p.Profiler != nil {
		p.Profiler.Record(stage, d)
	}
}
