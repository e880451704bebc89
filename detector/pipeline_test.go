package detector

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/nvr-ai/go-anpr/images"
	"github.com/nvr-ai/go-anpr/profiler"
	"github.com/nvr-ai/go-anpr/recognizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// MockRecognizer returns a fixed result and records the crops it receives.
type MockRecognizer struct {
	text   recognizer.RecognizedText
	ok     bool
	err    error
	calls  int
	shapes []image.Point
}

func (m *MockRecognizer) Recognize(ctx context.Context, crop gocv.Mat) (recognizer.RecognizedText, bool, error) {
	m.calls++
	m.shapes = append(m.shapes, image.Pt(crop.Cols(), crop.Rows()))
	return m.text, m.ok, m.err
}

func TestPipeline_PlateFound(t *testing.T) {
	frame := plateFrame(320, 240, image.Rect(80, 90, 240, 150))
	defer frame.Close()
	before := images.ComputeMatChecksum(frame)

	rec := &MockRecognizer{text: recognizer.RecognizedText{Text: "ABC123", Confidence: 0.9}, ok: true}
	prof := profiler.New()
	p := NewPipeline(DefaultConfig(), rec, prof)

	det, err := p.Detect(context.Background(), frame)
	require.NoError(t, err)
	defer det.Close()

	assert.Equal(t, PlateFound, det.Status)
	assert.Equal(t, "ABC123", det.Text)
	assert.InDelta(t, 0.9, det.Confidence, 1e-6)
	require.NotNil(t, det.Region)
	assert.Equal(t, 1, rec.calls)
	assert.InDelta(t, 160, rec.shapes[0].X, 4)
	assert.InDelta(t, 60, rec.shapes[0].Y, 4)

	assert.False(t, det.Image.Empty())
	assert.NotEqual(t, before, images.ComputeMatChecksum(det.Image))
	assert.Equal(t, before, images.ComputeMatChecksum(frame))
	assert.Equal(t, "Detected license plate: ABC123", det.Message())

	for _, stage := range []string{StageEdges, StageLocate, StageIsolate, StageRecognize, StageTotal} {
		assert.Contains(t, det.Timings, stage)
		_, ok := prof.Get(stage)
		assert.True(t, ok, stage)
	}
}

func TestPipeline_NoPlateSkipsRecognition(t *testing.T) {
	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(40, 40, 40, 0))
	before := images.ComputeMatChecksum(frame)

	rec := &MockRecognizer{text: recognizer.RecognizedText{Text: "SHOULD-NOT"}, ok: true}
	p := NewPipeline(DefaultConfig(), rec, nil)

	det, err := p.Detect(context.Background(), frame)
	require.NoError(t, err)
	defer det.Close()

	assert.Equal(t, NoPlate, det.Status)
	assert.Empty(t, det.Text)
	assert.Nil(t, det.Region)
	assert.Zero(t, rec.calls)
	assert.Equal(t, before, images.ComputeMatChecksum(det.Image))
	assert.NotContains(t, det.Timings, StageRecognize)
	assert.Equal(t, "No license plate detected", det.Message())
}

func TestPipeline_NoText(t *testing.T) {
	frame := plateFrame(320, 240, image.Rect(80, 90, 240, 150))
	defer frame.Close()
	before := images.ComputeMatChecksum(frame)

	rec := &MockRecognizer{}
	p := NewPipeline(DefaultConfig(), rec, nil)

	det, err := p.Detect(context.Background(), frame)
	require.NoError(t, err)
	defer det.Close()

	assert.Equal(t, NoText, det.Status)
	assert.NotNil(t, det.Region)
	assert.Empty(t, det.Text)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, before, images.ComputeMatChecksum(det.Image))
}

func TestPipeline_RecognizerError(t *testing.T) {
	frame := plateFrame(320, 240, image.Rect(80, 90, 240, 150))
	defer frame.Close()

	boom := errors.New("ocr unavailable")
	p := NewPipeline(DefaultConfig(), &MockRecognizer{err: boom}, nil)

	_, err := p.Detect(context.Background(), frame)
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_EmptyImage(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := NewPipeline(DefaultConfig(), &MockRecognizer{}, nil).Detect(context.Background(), empty)
	assert.Error(t, err)
}

func TestNewPipeline_AppliesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCandidates = 3
	cfg.Epsilon = 4

	p := NewPipeline(cfg, &MockRecognizer{}, nil)
	assert.Equal(t, 3, p.Locator.MaxCandidates)
	assert.Equal(t, 4.0, p.Locator.Epsilon)
	assert.Equal(t, DefaultTextOffset, p.TextOffset)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "plate_found", PlateFound.String())
	assert.Equal(t, "no_plate", NoPlate.String())
	assert.Equal(t, "no_text", NoText.String())
	assert.Equal(t, "License plate found, but no text was recognized", Detection{Status: NoText}.Message())
}
