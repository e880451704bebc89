// Package config - Runtime configuration loaded from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/nvr-ai/go-anpr/detector"
	"github.com/nvr-ai/go-anpr/recognizer"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Supported database drivers.
const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

// Database configures the registry store.
type Database struct {
	Driver         string        `yaml:"driver" json:"driver"`
	Host           string        `yaml:"host" json:"host"`
	Port           int           `yaml:"port" json:"port"`
	User           string        `yaml:"user" json:"user"`
	Password       string        `yaml:"password" json:"-"`
	Name           string        `yaml:"name" json:"name"`
	SSLMode        string        `yaml:"sslmode" json:"sslmode"`
	ConnectRetries int           `yaml:"connect_retries" json:"connect_retries"`
	ConnectBackoff time.Duration `yaml:"connect_backoff" json:"connect_backoff"`
}

// DSN returns the key/value connection string accepted by both drivers.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Output configures where annotated images go.
type Output struct {
	Dir        string `yaml:"dir" json:"dir"`
	ShowWindow bool   `yaml:"show_window" json:"show_window"`
}

// Config is the complete runtime configuration.
type Config struct {
	Database   Database          `yaml:"database" json:"database"`
	Detector   detector.Config   `yaml:"detector" json:"detector"`
	Recognizer recognizer.Config `yaml:"recognizer" json:"recognizer"`
	Output     Output            `yaml:"output" json:"output"`
	// DefaultImage is offered when the operator leaves the image path blank.
	DefaultImage string `yaml:"default_image" json:"default_image"`
}

// Default returns a configuration for a local PostgreSQL and the ONNX engine.
func Default() *Config {
	return &Config{
		Database: Database{
			Driver:         DriverPgx,
			Host:           "localhost",
			Port:           5432,
			User:           "anpr",
			Name:           "anpr",
			SSLMode:        "disable",
			ConnectRetries: 3,
			ConnectBackoff: 2 * time.Second,
		},
		Detector: detector.DefaultConfig(),
		Recognizer: recognizer.Config{
			Backend:  recognizer.BackendONNX,
			Language: recognizer.LanguageEnglish,
			ONNX:     recognizer.DefaultONNXConfig(),
			Rekognition: recognizer.RekognitionConfig{
				MinConfidence: 50,
			},
		},
		Output: Output{Dir: "output"},
	}
}

// Load builds the configuration.
//
// Order of precedence, lowest first:
//  1. Defaults.
//  2. The YAML file at path, when path is not empty.
//  3. A .env file in the working directory, when present.
//  4. ANPR_* environment variables.
//
// Arguments:
//   - path: Optional YAML file path.
//
// Returns:
//   - *Config: The loaded configuration, not yet validated.
//   - error: An error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Driver, "ANPR_DB_DRIVER")
	setString(&c.Database.Host, "ANPR_DB_HOST")
	setString(&c.Database.User, "ANPR_DB_USER")
	setString(&c.Database.Password, "ANPR_DB_PASSWORD")
	setString(&c.Database.Name, "ANPR_DB_NAME")
	setString(&c.Database.SSLMode, "ANPR_DB_SSLMODE")
	if err := setInt(&c.Database.Port, "ANPR_DB_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Database.ConnectRetries, "ANPR_DB_CONNECT_RETRIES"); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("ANPR_DB_CONNECT_BACKOFF"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: ANPR_DB_CONNECT_BACKOFF: %v", ErrInvalid, err)
		}
		c.Database.ConnectBackoff = d
	}

	if v, ok := os.LookupEnv("ANPR_OCR_BACKEND"); ok {
		c.Recognizer.Backend = recognizer.Backend(v)
	}
	setString(&c.Recognizer.Language, "ANPR_OCR_LANGUAGE")
	setString(&c.Recognizer.ONNX.ModelPath, "ANPR_OCR_MODEL_PATH")
	setString(&c.Recognizer.ONNX.CharsetPath, "ANPR_OCR_CHARSET_PATH")
	setString(&c.Recognizer.ONNX.SharedLibraryPath, "ANPR_ONNXRUNTIME_LIBRARY")
	setString(&c.Recognizer.Rekognition.Region, "AWS_REGION")

	setString(&c.Output.Dir, "ANPR_OUTPUT_DIR")
	setString(&c.DefaultImage, "ANPR_DEFAULT_IMAGE")
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, v)
	}
	*dst = n
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPgx, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalid, c.Database.Driver)
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("%w: database port must be positive", ErrInvalid)
	}
	if c.Database.ConnectRetries < 0 || c.Database.ConnectBackoff < 0 {
		return fmt.Errorf("%w: connect retries and backoff must not be negative", ErrInvalid)
	}

	e := c.Detector.Edges
	if e.Diameter <= 0 || e.SigmaColor <= 0 || e.SigmaSpace <= 0 {
		return fmt.Errorf("%w: bilateral filter parameters must be positive", ErrInvalid)
	}
	if e.CannyLow <= 0 || e.CannyHigh <= 0 {
		return fmt.Errorf("%w: canny thresholds must be positive", ErrInvalid)
	}
	if e.CannyLow > e.CannyHigh {
		return fmt.Errorf("%w: canny low threshold %.0f exceeds high %.0f", ErrInvalid, e.CannyLow, e.CannyHigh)
	}
	if c.Detector.MaxCandidates < 1 {
		return fmt.Errorf("%w: max_candidates must be at least 1", ErrInvalid)
	}
	if c.Detector.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive", ErrInvalid)
	}

	switch c.Recognizer.Backend {
	case recognizer.BackendONNX:
		o := c.Recognizer.ONNX
		if o.InputWidth <= 0 || o.InputHeight <= 0 {
			return fmt.Errorf("%w: recognizer input size must be positive", ErrInvalid)
		}
	case recognizer.BackendRekognition:
	default:
		return fmt.Errorf("%w: unknown OCR backend %q", ErrInvalid, c.Recognizer.Backend)
	}
	if err := recognizer.ValidateLanguage(c.Recognizer.Language); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
