package inference

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// SharedLibraryEnv names the environment variable consulted for the
// onnxruntime shared library when no explicit path is configured.
const SharedLibraryEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

var (
	initOnce sync.Once
	initErr  error
)

// SharedLibraryPath returns the path to the onnxruntime shared library.
//
// Resolution order is the explicit override, then SharedLibraryEnv, then the
// platform default under ./third_party.
//
// Arguments:
//   - override: Explicit path from configuration, may be empty.
//
// Returns:
//   - string: The path to the shared library.
//   - error: An error if the platform has no known default.
func SharedLibraryPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv(SharedLibraryEnv); env != "" {
		return env, nil
	}
	return defaultLibraryPath(runtime.GOOS, runtime.GOARCH)
}

func defaultLibraryPath(goos, goarch string) (string, error) {
	switch goos {
	case "windows":
		if goarch == "amd64" {
			return "./third_party/onnxruntime.dll", nil
		}
	case "darwin":
		return "./third_party/libonnxruntime.dylib", nil
	case "linux":
		if goarch == "arm64" {
			return "./third_party/onnxruntime_arm64.so", nil
		}
		return "./third_party/onnxruntime.so", nil
	}
	return "", fmt.Errorf("no onnxruntime library known for %s/%s", goos, goarch)
}

// InitRuntime initialises the ONNX Runtime environment once per process.
//
// Subsequent calls return the result of the first initialisation regardless
// of the path they pass.
func InitRuntime(override string) error {
	initOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}

		libPath, err := SharedLibraryPath(override)
		if err != nil {
			initErr = err
			return
		}
		if _, err := os.Stat(libPath); err != nil {
			initErr = errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
			return
		}

		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			initErr = errors.Wrap(err, "error initializing ORT environment")
		}
	})
	return initErr
}
