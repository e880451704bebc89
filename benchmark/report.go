package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"
)

// PrintSummary writes the aggregate table, one row per weather and method.
func PrintSummary(w io.Writer, summaries []Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No benchmark runs recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Weather\tMethod\tRuns\tAvg Time (ms)\tFalse Positives\tFalse Negatives")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%d\t%d\n",
			s.Weather, s.Method, s.Runs, milliseconds(s.AvgProcessingTime), s.FalsePositives, s.FalseNegatives)
	}
	tw.Flush()
}

// SaveResults writes the run metrics as JSON and a CSV summary into dir.
//
// Arguments:
//   - dir: Output directory, created when missing.
//   - metrics: The runs to save.
//
// Returns:
//   - string: The JSON results file path.
//   - error: An error if a file could not be written.
func SaveResults(dir string, metrics []RunMetrics) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(dir, fmt.Sprintf("anpr_results_%s.json", timestamp))

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write results file: %w", err)
	}

	summaryFile := filepath.Join(dir, fmt.Sprintf("anpr_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, Summarize(metrics)); err != nil {
		return "", fmt.Errorf("failed to save summary CSV: %w", err)
	}

	return resultsFile, nil
}

func saveSummaryCSV(filename string, summaries []Summary) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"Weather", "Method", "Runs", "Avg_Processing_Time_ms", "False_Positives", "False_Negatives"}); err != nil {
		return err
	}
	for _, s := range summaries {
		if err := w.Write([]string{
			s.Weather,
			s.Method,
			strconv.Itoa(s.Runs),
			strconv.FormatFloat(milliseconds(s.AvgProcessingTime), 'f', 2, 64),
			strconv.Itoa(s.FalsePositives),
			strconv.Itoa(s.FalseNegatives),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
