package recognizer

import (
	"context"
	"fmt"
)

// Backend names an OCR engine implementation.
type Backend string

const (
	BackendONNX        Backend = "onnx"
	BackendRekognition Backend = "rekognition"
)

// Config selects and configures the OCR engine.
type Config struct {
	Backend     Backend           `yaml:"backend" json:"backend"`
	Language    string            `yaml:"language" json:"language"`
	ONNX        ONNXConfig        `yaml:"onnx" json:"onnx"`
	Rekognition RekognitionConfig `yaml:"rekognition" json:"rekognition"`
}

// NewEngine creates the engine named by cfg.Backend.
func NewEngine(ctx context.Context, cfg Config) (Engine, error) {
	switch cfg.Backend {
	case BackendONNX:
		engine, err := NewONNXEngine(cfg.ONNX)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case BackendRekognition:
		engine, err := NewRekognitionEngineFromConfig(ctx, cfg.Rekognition)
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unknown OCR backend %q", cfg.Backend)
	}
}

// NewFromConfig creates the engine and wraps it in a Recognizer.
func NewFromConfig(ctx context.Context, cfg Config) (*Recognizer, error) {
	if err := ValidateLanguage(cfg.Language); err != nil {
		return nil, err
	}
	engine, err := NewEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(engine, cfg.Language)
}
