// Package recognizer - Text recognition over isolated plate regions.
//
// A Recognizer wraps an OCR Engine and reduces its ranked results to the
// single authoritative plate text. Engines are external capabilities: an
// ONNX Runtime CRNN model or the AWS Rekognition DetectText API.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"
)

// LanguageEnglish is the Latin alphanumeric language profile.
const LanguageEnglish = "en"

var (
	// ErrEmptyImage is returned when the crop handed to the recognizer has no pixels.
	ErrEmptyImage = errors.New("recognizer: empty image")
	// ErrUnsupportedLanguage is returned for language profiles no engine supports.
	ErrUnsupportedLanguage = errors.New("recognizer: unsupported language")
)

// Result is one ranked text detection returned by an engine.
type Result struct {
	// Box is the text location inside the image given to the engine.
	Box image.Rectangle
	// Text is the raw recognised string.
	Text string
	// Confidence is the engine score normalised to [0, 1].
	Confidence float32
}

// RecognizedText is the authoritative text read from a plate region.
type RecognizedText struct {
	Text       string
	Confidence float32
}

// Engine is an OCR capability returning ranked results, best first.
type Engine interface {
	ReadText(ctx context.Context, img gocv.Mat) ([]Result, error)
	Close() error
}

// Recognizer adapts an Engine to a single-result contract for one language profile.
type Recognizer struct {
	engine   Engine
	language string
}

// New creates a recognizer over engine for the given language profile.
//
// Arguments:
//   - engine: The OCR engine.
//   - language: Language profile, only LanguageEnglish is supported.
//
// Returns:
//   - *Recognizer: The recognizer.
//   - error: ErrUnsupportedLanguage for unknown profiles.
func New(engine Engine, language string) (*Recognizer, error) {
	if engine == nil {
		return nil, errors.New("recognizer: engine is required")
	}
	if err := ValidateLanguage(language); err != nil {
		return nil, err
	}
	return &Recognizer{engine: engine, language: language}, nil
}

// ValidateLanguage reports whether the language profile is supported.
func ValidateLanguage(language string) error {
	if language != LanguageEnglish {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return nil
}

// Language returns the configured language profile.
func (r *Recognizer) Language() string { return r.language }

// Recognize reads the plate text from a cropped grayscale region.
//
// The first ranked engine result is authoritative. An engine returning no
// results, or a blank first result, yields ok == false with no error. Engine
// failures are returned unchanged and never retried.
//
// Arguments:
//   - ctx: Context for the engine call.
//   - crop: The isolated plate region.
//
// Returns:
//   - RecognizedText: The text and its confidence when ok is true.
//   - bool: Whether any text was recognised.
//   - error: ErrEmptyImage or an engine failure.
func (r *Recognizer) Recognize(ctx context.Context, crop gocv.Mat) (RecognizedText, bool, error) {
	if crop.Empty() || crop.Rows() == 0 || crop.Cols() == 0 {
		return RecognizedText{}, false, ErrEmptyImage
	}

	results, err := r.engine.ReadText(ctx, crop)
	if err != nil {
		return RecognizedText{}, false, err
	}
	if len(results) == 0 {
		return RecognizedText{}, false, nil
	}

	text := strings.TrimSpace(results[0].Text)
	if text == "" {
		return RecognizedText{}, false, nil
	}
	return RecognizedText{Text: text, Confidence: results[0].Confidence}, true, nil
}

// Close releases the underlying engine.
func (r *Recognizer) Close() error {
	return r.engine.Close()
}
