package recognizer

import (
	"context"
	"image"
	"sync"

	"github.com/nvr-ai/go-anpr/inference"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ONNXConfig configures the ONNX Runtime CRNN engine.
type ONNXConfig struct {
	// ModelPath is the recognition model, e.g. a PP-OCR rec model exported to ONNX.
	ModelPath string `yaml:"model_path" json:"model_path"`
	// CharsetPath is the dictionary file. Empty selects DefaultCharset.
	CharsetPath string `yaml:"charset_path" json:"charset_path"`
	// UseSpace appends a space class to a loaded dictionary.
	UseSpace bool `yaml:"use_space" json:"use_space"`
	// SharedLibraryPath overrides the onnxruntime library location.
	SharedLibraryPath string `yaml:"shared_library_path" json:"shared_library_path"`
	InputWidth        int    `yaml:"input_width" json:"input_width"`
	InputHeight       int    `yaml:"input_height" json:"input_height"`
	InputName         string `yaml:"input_name" json:"input_name"`
	OutputName        string `yaml:"output_name" json:"output_name"`
	Threads           int    `yaml:"threads" json:"threads"`
	// Provider selects the execution provider, CPU when empty.
	Provider inference.ProviderConfig `yaml:"provider" json:"provider"`
}

// DefaultONNXConfig returns the PP-OCR recognition input geometry.
func DefaultONNXConfig() ONNXConfig {
	return ONNXConfig{
		InputWidth:  320,
		InputHeight: 48,
		InputName:   "x",
		OutputName:  "softmax_0.tmp_0",
	}
}

// SeqLen is the number of CTC time steps produced for the input width.
func (c ONNXConfig) SeqLen() int {
	return c.InputWidth / 8
}

// ONNXEngine runs a CTC text recognition model through ONNX Runtime.
//
// The session owns preallocated tensors so calls are serialised.
type ONNXEngine struct {
	mu      sync.Mutex
	cfg     ONNXConfig
	charset Charset
	session *inference.Session
}

// NewONNXEngine loads the charset and model and creates the session.
//
// Arguments:
//   - cfg: The engine configuration.
//
// Returns:
//   - *ONNXEngine: The engine.
//   - error: An error if the charset or session could not be created.
func NewONNXEngine(cfg ONNXConfig) (*ONNXEngine, error) {
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		return nil, errors.Errorf("invalid input geometry %dx%d", cfg.InputWidth, cfg.InputHeight)
	}

	charset := DefaultCharset()
	if cfg.CharsetPath != "" {
		var err error
		if charset, err = LoadCharset(cfg.CharsetPath, cfg.UseSpace); err != nil {
			return nil, err
		}
	}

	session, err := inference.NewSession(inference.NewSessionArgs{
		ModelPath:         cfg.ModelPath,
		SharedLibraryPath: cfg.SharedLibraryPath,
		InputName:         cfg.InputName,
		OutputName:        cfg.OutputName,
		InputShape:        []int64{1, 3, int64(cfg.InputHeight), int64(cfg.InputWidth)},
		OutputShape:       []int64{1, int64(cfg.SeqLen()), int64(charset.Len())},
		Threads:           cfg.Threads,
		Provider:          cfg.Provider,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create recognition session")
	}

	return &ONNXEngine{cfg: cfg, charset: charset, session: session}, nil
}

// ReadText recognises a single text line spanning the whole crop.
func (e *ONNXEngine) ReadText(ctx context.Context, img gocv.Mat) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := img.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert crop")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := inference.PrepareInput(src, e.session.Input.GetData(), e.cfg.InputWidth, e.cfg.InputHeight); err != nil {
		return nil, err
	}
	if err := e.session.Run(); err != nil {
		return nil, err
	}

	text, score, err := DecodeCTC(e.session.Output.GetData(), e.cfg.SeqLen(), e.charset)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	return []Result{{
		Box:        image.Rect(0, 0, img.Cols(), img.Rows()),
		Text:       text,
		Confidence: score,
	}}, nil
}

// Close destroys the session and its tensors.
func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Close()
}
