// Package config loads the classifier settings from a YAML file, a .env
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv and Resolve.
const (
	EnvConfig        = "TANGRAM_CONFIG"
	EnvReference     = "TANGRAM_REFERENCE"
	EnvDataset       = "TANGRAM_DATASET"
	EnvLogLevel      = "TANGRAM_LOG_LEVEL"
	EnvSensitivity   = "TANGRAM_SENSITIVITY"
	EnvContourSource = "TANGRAM_CONTOUR_SOURCE"
)

// DefaultPath is the config file looked for in the working directory when
// no path is given.
const DefaultPath = "tangram.yaml"

// Default values.
const (
	DefaultSensitivity   = 50
	DefaultResizePercent = 50
	DefaultContourSource = "trace"
	DefaultReferencePath = "data/data.csv"
	DefaultDatasetDir    = "data/tangrams"
	DefaultLogLevel      = "info"
)

// CropConfig controls board cropping of query photos.
type CropConfig struct {
	Enabled bool   `yaml:"enabled"`
	Side    string `yaml:"side"`
}

// Validate rejects an unknown side, and a left or right side while
// cropping is disabled, since the side would be ignored.
func (c CropConfig) Validate() error {
	switch c.Side {
	case "", "none", "full":
		return nil
	case "left", "right":
		if !c.Enabled {
			return fmt.Errorf("crop.side %q requires crop.enabled: true", c.Side)
		}
		return nil
	}
	return fmt.Errorf("crop.side must be left, right or empty, got %q", c.Side)
}

// Config is the root configuration.
type Config struct {
	// Sensitivity is the brightest gray level counted as silhouette (1-255).
	Sensitivity int `yaml:"sensitivity"`

	// ResizePercent is the scale applied before tracing (1-100).
	ResizePercent int `yaml:"resize_percent"`

	Crop CropConfig `yaml:"crop"`

	// ContourSource names the contour extractor: "trace", or "gocv" in
	// builds with the gocv tag.
	ContourSource string `yaml:"contour_source"`

	// ReferencePath is the reference table, CSV or SQLite.
	ReferencePath string `yaml:"reference_path"`

	// DatasetDir holds the images the reference table is built from.
	DatasetDir string `yaml:"dataset_dir"`

	// LogLevel is "info" or "debug".
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sensitivity:   DefaultSensitivity,
		ResizePercent: DefaultResizePercent,
		ContourSource: DefaultContourSource,
		ReferencePath: DefaultReferencePath,
		DatasetDir:    DefaultDatasetDir,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads a config file. A missing file yields the defaults; fields
// missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Resolve builds the effective configuration: .env is loaded into the
// environment if present, then the config file (path, or $TANGRAM_CONFIG,
// or DefaultPath) is read, environment overrides are applied and the result
// is validated. The returned string is the config file path consulted.
func Resolve(path string) (*Config, string, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvReference); ok && v != "" {
		c.ReferencePath = v
	}
	if v, ok := lookup(EnvDataset); ok && v != "" {
		c.DatasetDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup(EnvContourSource); ok && v != "" {
		c.ContourSource = v
	}
	if v, ok := lookup(EnvSensitivity); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSensitivity, err)
		}
		c.Sensitivity = n
	}
	return nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	if c.Sensitivity < 1 || c.Sensitivity > 255 {
		return fmt.Errorf("sensitivity must be between 1 and 255")
	}

	if c.ResizePercent < 1 || c.ResizePercent > 100 {
		return fmt.Errorf("resize_percent must be between 1 and 100")
	}

	if err := c.Crop.Validate(); err != nil {
		return err
	}

	switch c.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("log_level must be info or debug, got %q", c.LogLevel)
	}

	if c.ReferencePath == "" {
		return fmt.Errorf("reference_path cannot be empty")
	}

	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

func applyDefaults(cfg *Config) {
	if cfg.Sensitivity == 0 {
		cfg.Sensitivity = DefaultSensitivity
	}
	if cfg.ResizePercent == 0 {
		cfg.ResizePercent = DefaultResizePercent
	}
	if cfg.ContourSource == "" {
		cfg.ContourSource = DefaultContourSource
	}
	if cfg.ReferencePath == "" {
		cfg.ReferencePath = DefaultReferencePath
	}
	if cfg.DatasetDir == "" {
		cfg.DatasetDir = DefaultDatasetDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
}
