package benchmark

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-anpr/detector"
	"github.com/nvr-ai/go-anpr/images"
	"github.com/nvr-ai/go-anpr/registry"
	"gocv.io/x/gocv"
)

// MinIoU is the overlap a detected plate needs with its labelled box.
const MinIoU = 0.5

// Detector runs plate detection on a decoded image.
type Detector interface {
	Detect(ctx context.Context, img gocv.Mat) (detector.Detection, error)
}

// Evaluate runs det over every image of the scenario, in order.
//
// A missing plate or text is a false negative. Text that differs from the
// label, a plate on an unlabelled image, or a box overlapping the labelled
// box by less than MinIoU is a false positive. Undecodable images and
// detector errors abort the run.
//
// Arguments:
//   - ctx: Context for the detector.
//   - det: The detector under test.
//   - sc: The labelled scenario.
//   - method: Name recorded with each run, usually the OCR backend.
//
// Returns:
//   - []RunMetrics: One entry per image, sharing one RunID.
//   - error: The first load or detection error.
func Evaluate(ctx context.Context, det Detector, sc Scenario, method string) ([]RunMetrics, error) {
	runID := uuid.New()
	metrics := make([]RunMetrics, 0, len(sc.Images))

	for _, li := range sc.Images {
		if err := ctx.Err(); err != nil {
			return metrics, err
		}

		m, err := evaluateImage(ctx, det, li)
		if err != nil {
			return metrics, fmt.Errorf("evaluate %s: %w", li.Path, err)
		}
		m.RunID = runID
		m.Method = method
		m.Weather = sc.Weather
		metrics = append(metrics, m)
	}

	log.Printf("evaluated %d images of scenario %s (run %s)", len(metrics), sc.Name, runID)
	return metrics, nil
}

func evaluateImage(ctx context.Context, det Detector, li LabelledImage) (RunMetrics, error) {
	img, err := images.Load(li.Path)
	if err != nil {
		return RunMetrics{}, err
	}
	defer img.Close()

	start := time.Now()
	d, err := det.Detect(ctx, img)
	elapsed := time.Since(start)
	if err != nil {
		return RunMetrics{}, err
	}
	defer d.Close()

	m := RunMetrics{
		ImagePath:      li.Path,
		Expected:       registry.NormalizePlate(li.Plate),
		ProcessingTime: elapsed,
	}
	if d.Status == detector.PlateFound {
		m.Detected = registry.NormalizePlate(d.Text)
	}
	m.FalsePositive, m.FalseNegative = classify(m.Expected, m.Detected, d, li.Box)
	return m, nil
}

func classify(expected, detected string, d detector.Detection, box *images.Rect) (falsePositive, falseNegative bool) {
	if d.Status != detector.PlateFound {
		return false, expected != ""
	}
	if expected == "" || detected != expected {
		return true, false
	}
	if box != nil && d.Region != nil && images.CalculateIoU(d.Region.Bounds, *box) < MinIoU {
		return true, false
	}
	return false, false
}

// Record saves every run to the store.
func Record(ctx context.Context, store RunStore, metrics []RunMetrics) error {
	for _, m := range metrics {
		if err := store.SaveRun(ctx, m); err != nil {
			return fmt.Errorf("save run %s: %w", m.ImagePath, err)
		}
	}
	return nil
}
