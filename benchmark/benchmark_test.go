package benchmark

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvr-ai/go-anpr/detector"
	"github.com/nvr-ai/go-anpr/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// MockDetector returns queued detections in order.
type MockDetector struct {
	detections []detector.Detection
	err        error
	calls      int
}

func (m *MockDetector) Detect(ctx context.Context, img gocv.Mat) (detector.Detection, error) {
	if m.err != nil {
		return detector.Detection{}, m.err
	}
	d := m.detections[m.calls%len(m.detections)]
	m.calls++
	d.Image = gocv.NewMat()
	return d, nil
}

// MockRunStore keeps saved runs in memory.
type MockRunStore struct {
	saved []RunMetrics
	err   error
}

func (m *MockRunStore) SaveRun(ctx context.Context, r RunMetrics) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *MockRunStore) Summary(ctx context.Context, weather string) ([]Summary, error) {
	return Summarize(m.saved), nil
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := gocv.NewMatWithSize(40, 60, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.SetTo(gocv.NewScalar(10, 20, 30, 0))

	path := filepath.Join(dir, name)
	require.True(t, gocv.IMWrite(path, img))
	return path
}

func found(text string, bounds images.Rect) detector.Detection {
	region := detector.PlateRegion{Bounds: bounds}
	return detector.Detection{Status: detector.PlateFound, Text: text, Region: &region}
}

func TestClassify(t *testing.T) {
	box := &images.Rect{X1: 0, Y1: 0, X2: 100, Y2: 40}

	tests := []struct {
		name     string
		expected string
		det      detector.Detection
		box      *images.Rect
		wantFP   bool
		wantFN   bool
	}{
		{name: "correct", expected: "ABC123", det: found("ABC123", *box), box: box},
		{name: "wrong text", expected: "ABC123", det: found("ABC128", *box), box: box, wantFP: true},
		{name: "poor overlap", expected: "ABC123", det: found("ABC123", images.Rect{X1: 90, Y1: 30, X2: 200, Y2: 80}), box: box, wantFP: true},
		{name: "no box label", expected: "ABC123", det: found("ABC123", images.Rect{X1: 500, Y1: 500, X2: 600, Y2: 540})},
		{name: "missed plate", expected: "ABC123", det: detector.Detection{Status: detector.NoPlate}, wantFN: true},
		{name: "missed text", expected: "ABC123", det: detector.Detection{Status: detector.NoText}, wantFN: true},
		{name: "plate on unlabelled image", expected: "", det: found("ABC123", *box), wantFP: true},
		{name: "nothing expected", expected: "", det: detector.Detection{Status: detector.NoPlate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detected := ""
			if tt.det.Status == detector.PlateFound {
				detected = tt.det.Text
			}
			fp, fn := classify(tt.expected, detected, tt.det, tt.box)
			assert.Equal(t, tt.wantFP, fp)
			assert.Equal(t, tt.wantFN, fn)
		})
	}
}

func TestEvaluate(t *testing.T) {
	dir := t.TempDir()
	sc := Scenario{
		Name:    "rain",
		Weather: "rainy",
		Images: []LabelledImage{
			{Path: writeImage(t, dir, "a.png"), Plate: "abc 123"},
			{Path: writeImage(t, dir, "b.png"), Plate: "XYZ999"},
			{Path: writeImage(t, dir, "c.png"), Plate: "KA01"},
		},
	}
	det := &MockDetector{detections: []detector.Detection{
		found("ABC123", images.Rect{}),
		{Status: detector.NoPlate},
		found("KA07", images.Rect{}),
	}}

	metrics, err := Evaluate(context.Background(), det, sc, "onnx")
	require.NoError(t, err)
	require.Len(t, metrics, 3)

	assert.Equal(t, metrics[0].RunID, metrics[2].RunID)
	assert.Equal(t, "ABC123", metrics[0].Expected)
	assert.Equal(t, "ABC123", metrics[0].Detected)
	assert.False(t, metrics[0].FalsePositive)
	assert.True(t, metrics[1].FalseNegative)
	assert.Empty(t, metrics[1].Detected)
	assert.True(t, metrics[2].FalsePositive)
	for _, m := range metrics {
		assert.Equal(t, "onnx", m.Method)
		assert.Equal(t, "rainy", m.Weather)
	}

	store := &MockRunStore{}
	require.NoError(t, Record(context.Background(), store, metrics))
	assert.Len(t, store.saved, 3)

	store.err = errors.New("db down")
	assert.Error(t, Record(context.Background(), store, metrics))
}

func TestEvaluate_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Evaluate(context.Background(), &MockDetector{detections: []detector.Detection{{}}},
		Scenario{Images: []LabelledImage{{Path: filepath.Join(dir, "missing.png")}}}, "onnx")
	assert.Error(t, err)

	boom := errors.New("ocr failed")
	_, err = Evaluate(context.Background(), &MockDetector{err: boom},
		Scenario{Images: []LabelledImage{{Path: writeImage(t, dir, "x.png")}}}, "onnx")
	assert.ErrorIs(t, err, boom)
}

func TestSummarize(t *testing.T) {
	metrics := []RunMetrics{
		{Weather: "sunny", Method: "onnx", ProcessingTime: 10 * time.Millisecond},
		{Weather: "sunny", Method: "onnx", ProcessingTime: 30 * time.Millisecond, FalsePositive: true},
		{Weather: "foggy", Method: "onnx", ProcessingTime: 50 * time.Millisecond, FalseNegative: true},
		{Weather: "sunny", Method: "rekognition", ProcessingTime: 200 * time.Millisecond},
	}

	got := Summarize(metrics)
	require.Len(t, got, 3)
	assert.Equal(t, Summary{Weather: "foggy", Method: "onnx", Runs: 1, AvgProcessingTime: 50 * time.Millisecond, FalseNegatives: 1}, got[0])
	assert.Equal(t, Summary{Weather: "sunny", Method: "onnx", Runs: 2, AvgProcessingTime: 20 * time.Millisecond, FalsePositives: 1}, got[1])
	assert.Equal(t, "rekognition", got[2].Method)

	assert.Empty(t, Summarize(nil))
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sunny.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: sunny-day
weather: sunny
images:
  - path: cars/one.png
    plate: ABC123
    box: {x1: 10, y1: 20, x2: 110, y2: 60}
  - path: /abs/two.png
    plate: XYZ999
`), 0o600))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "sunny-day", sc.Name)
	assert.Equal(t, "sunny", sc.Weather)
	require.Len(t, sc.Images, 2)
	assert.Equal(t, filepath.Join(dir, "cars", "one.png"), sc.Images[0].Path)
	assert.Equal(t, &images.Rect{X1: 10, Y1: 20, X2: 110, Y2: 60}, sc.Images[0].Box)
	assert.Equal(t, "/abs/two.png", sc.Images[1].Path)
	assert.Nil(t, sc.Images[1].Box)
}

func TestLoadScenario_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "night"), 0o755))
	for _, name := range []string{"XYZ999.png", "ABC123.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "night", name), []byte("x"), 0o600))
	}
	path := filepath.Join(dir, "night.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dir: night\n"), 0o600))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "night.yaml", sc.Name)
	assert.Equal(t, "unknown", sc.Weather)
	require.Len(t, sc.Images, 2)
	assert.Equal(t, "ABC123", sc.Images[0].Plate)
	assert.Equal(t, "XYZ999", sc.Images[1].Plate)
}

func TestLoadScenario_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadScenario(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("name: nothing\n"), 0o600))
	_, err = LoadScenario(empty)
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, nil)
	assert.Contains(t, buf.String(), "No benchmark runs recorded.")

	buf.Reset()
	PrintSummary(&buf, []Summary{{Weather: "rainy", Method: "onnx", Runs: 4, AvgProcessingTime: 1500 * time.Microsecond, FalsePositives: 1, FalseNegatives: 2}})
	out := buf.String()
	assert.Contains(t, out, "Weather")
	assert.Contains(t, out, "rainy")
	assert.Contains(t, out, "1.50")
}

func TestSaveResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	metrics := []RunMetrics{{Weather: "sunny", Method: "onnx", ImagePath: "a.png", ProcessingTime: time.Millisecond}}

	resultsFile, err := SaveResults(dir, metrics)
	require.NoError(t, err)
	assert.FileExists(t, resultsFile)

	csvFiles, err := filepath.Glob(filepath.Join(dir, "anpr_summary_*.csv"))
	require.NoError(t, err)
	require.Len(t, csvFiles, 1)
	data, err := os.ReadFile(csvFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "sunny,onnx,1,1.00,0,0")
}

