// Package inference - ONNX Runtime sessions for the text recognition model.
package inference

import (
	"fmt"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Session represents a model session from the onnxruntime with a single
// preallocated input and output tensor.
type Session struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
}

// NewSessionArgs represents the arguments for creating a new session.
type NewSessionArgs struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string
	// SharedLibraryPath overrides the onnxruntime shared library location.
	SharedLibraryPath string
	// InputName is the name of the model input tensor.
	InputName string
	// OutputName is the name of the model output tensor.
	OutputName string
	// InputShape is the fixed input shape, e.g. [1, 3, 48, 320].
	InputShape []int64
	// OutputShape is the fixed output shape, e.g. [1, 40, 97].
	OutputShape []int64
	// Threads limits intra-op parallelism, zero keeps the runtime default.
	Threads int
	// Provider selects the execution provider, CPU when empty.
	Provider ProviderConfig
}

// NewSession creates a new ONNX Runtime session with preallocated tensors.
//
// Order of operations:
//  1. Runtime initialisation (once per process).
//  2. Tensor allocation for the fixed input and output shapes.
//  3. Session options and session creation.
//
// Arguments:
//   - args: The arguments for the session.
//
// Returns:
//   - *Session: The session holding the native session and its tensors.
//   - error: An error if the runtime, tensors or session could not be created.
func NewSession(args NewSessionArgs) (*Session, error) {
	if args.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if len(args.InputShape) == 0 || len(args.OutputShape) == 0 {
		return nil, errors.New("input and output shapes are required")
	}
	if err := args.Provider.Validate(); err != nil {
		return nil, err
	}

	if err := InitRuntime(args.SharedLibraryPath); err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(args.InputShape...))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(args.OutputShape...))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "error creating session options")
	}
	defer options.Destroy()

	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "error setting graph optimization level")
	}

	if err := applyProvider(options, args.Provider); err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}

	if args.Threads > 0 {
		if err := options.SetIntraOpNumThreads(args.Threads); err != nil {
			input.Destroy()
			output.Destroy()
			return nil, errors.Wrap(err, "error setting intra-op threads")
		}
	}

	session, err := ort.NewAdvancedSession(
		args.ModelPath,
		[]string{args.InputName},
		[]string{args.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrapf(err, "error creating ORT session for %s", args.ModelPath)
	}

	return &Session{
		Session: session,
		Input:   input,
		Output:  output,
	}, nil
}

// Run executes the model on the current contents of the input tensor.
func (s *Session) Run() error {
	if s.Session == nil {
		return errors.New("session is closed")
	}
	if err := s.Session.Run(); err != nil {
		return errors.Wrap(err, "error running ORT session")
	}
	return nil
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	if s.Input != nil {
		s.Input.Destroy()
		s.Input = nil
	}
	if s.Output != nil {
		s.Output.Destroy()
		s.Output = nil
	}
	if s.Session != nil {
		err := s.Session.Destroy()
		s.Session = nil
		if err != nil {
			return fmt.Errorf("error destroying ORT session: %w", err)
		}
	}
	return nil
}
