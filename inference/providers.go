package inference

import (
	"fmt"
	"log"
	"strconv"

	ort "github.com/yalue/onnxruntime_go"
)

// ProviderBackend represents an ONNX Runtime execution provider.
type ProviderBackend string

const (
	// CPUProviderBackend is the default provider, always available.
	CPUProviderBackend ProviderBackend = "cpu"
	// CUDAProviderBackend uses NVIDIA CUDA.
	CUDAProviderBackend ProviderBackend = "cuda"
	// CoreMLProviderBackend uses Apple CoreML.
	CoreMLProviderBackend ProviderBackend = "coreml"
	// OpenVINOProviderBackend uses Intel OpenVINO.
	OpenVINOProviderBackend ProviderBackend = "openvino"
)

// ProviderConfig selects the execution provider of a session.
type ProviderConfig struct {
	Backend  ProviderBackend `json:"backend" yaml:"backend"`
	DeviceID int             `json:"device_id" yaml:"device_id"`
	// Options are passed to providers that accept key/value settings.
	Options map[string]string `json:"options" yaml:"options"`
}

// Validate reports an unknown backend. An empty backend means CPU.
func (c ProviderConfig) Validate() error {
	switch c.Backend {
	case "", CPUProviderBackend, CUDAProviderBackend, CoreMLProviderBackend, OpenVINOProviderBackend:
		return nil
	default:
		return fmt.Errorf("unsupported execution provider: %s", c.Backend)
	}
}

// cudaOptions merges the device id into the provider option map.
func (c ProviderConfig) cudaOptions() map[string]string {
	opts := map[string]string{"device_id": strconv.Itoa(c.DeviceID)}
	for k, v := range c.Options {
		opts[k] = v
	}
	return opts
}

// applyProvider appends the configured execution provider to options.
//
// Accelerators that fail to register are logged and the session falls back
// to the CPU provider.
func applyProvider(options *ort.SessionOptions, cfg ProviderConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	switch cfg.Backend {
	case "", CPUProviderBackend:
		return nil
	case CUDAProviderBackend:
		var cuda *ort.CUDAProviderOptions
		if cuda, err = ort.NewCUDAProviderOptions(); err == nil {
			defer cuda.Destroy()
			if err = cuda.Update(cfg.cudaOptions()); err == nil {
				err = options.AppendExecutionProviderCUDA(cuda)
			}
		}
	case CoreMLProviderBackend:
		err = options.AppendExecutionProviderCoreML(uint32(cfg.DeviceID))
	case OpenVINOProviderBackend:
		err = options.AppendExecutionProviderOpenVINO(cfg.Options)
	}

	if err != nil {
		log.Printf("warning: failed to enable %s provider, using cpu: %v", cfg.Backend, err)
	}
	return nil
}
