// Package benchmark - Labelled evaluation runs of the plate detection pipeline.
package benchmark

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// RunMetrics captures the outcome of one labelled image.
type RunMetrics struct {
	RunID          uuid.UUID     `json:"run_id"`
	Method         string        `json:"method"`
	Weather        string        `json:"weather"`
	ImagePath      string        `json:"image_path"`
	Expected       string        `json:"expected"`
	Detected       string        `json:"detected"`
	ProcessingTime time.Duration `json:"processing_time"`
	FalsePositive  bool          `json:"false_positive"`
	FalseNegative  bool          `json:"false_negative"`
}

// Summary aggregates runs for one weather condition and method.
type Summary struct {
	Weather           string        `json:"weather"`
	Method            string        `json:"method"`
	Runs              int           `json:"runs"`
	AvgProcessingTime time.Duration `json:"avg_processing_time"`
	FalsePositives    int           `json:"false_positives"`
	FalseNegatives    int           `json:"false_negatives"`
}

// RunStore persists run metrics and aggregates them.
type RunStore interface {
	SaveRun(ctx context.Context, m RunMetrics) error
	// Summary aggregates stored runs, restricted to weather when it is not empty.
	Summary(ctx context.Context, weather string) ([]Summary, error)
}

// Summarize aggregates metrics in memory, grouped by weather then method.
func Summarize(metrics []RunMetrics) []Summary {
	type key struct{ weather, method string }

	totals := make(map[key]time.Duration)
	groups := make(map[key]*Summary)
	for _, m := range metrics {
		k := key{m.Weather, m.Method}
		s, ok := groups[k]
		if !ok {
			s = &Summary{Weather: m.Weather, Method: m.Method}
			groups[k] = s
		}
		s.Runs++
		totals[k] += m.ProcessingTime
		if m.FalsePositive {
			s.FalsePositives++
		}
		if m.FalseNegative {
			s.FalseNegatives++
		}
	}

	out := make([]Summary, 0, len(groups))
	for k, s := range groups {
		s.AvgProcessingTime = totals[k] / time.Duration(s.Runs)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weather != out[j].Weather {
			return out[i].Weather < out[j].Weather
		}
		return out[i].Method < out[j].Method
	})
	return out
}
