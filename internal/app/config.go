package app

import (
	"errors"
	"fmt"
)

// Mode selects what the application prints for each script.
type Mode string

const (
	// ModeResolve prints resolved variants.
	ModeResolve Mode = "resolve"
	// ModeInspect prints the model summary.
	ModeInspect Mode = "inspect"
	// ModeValidate prints validation issues.
	ModeValidate Mode = "validate"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths []string // build script files

	Mode      Mode
	Variant   string   // AGP variant name, e.g. devRelease
	BuildType string   // explicit request build type
	Flavors   []string // explicit request flavors

	NamespaceFallback bool
	Format            string
	LogFormat         string
	LogLevel          string
	WorkerCount       int
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one build script path is required")
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeResolve
	}
	switch cfg.Mode {
	case ModeResolve, ModeInspect, ModeValidate:
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	if cfg.Variant != "" && (cfg.BuildType != "" || len(cfg.Flavors) > 0) {
		return nil, errors.New("variant cannot be combined with build-type or flavor")
	}
	if len(cfg.Flavors) > 0 && cfg.BuildType == "" {
		return nil, errors.New("flavor requires build-type")
	}
	if cfg.Mode != ModeResolve && (cfg.Variant != "" || cfg.BuildType != "") {
		return nil, fmt.Errorf("a variant request cannot be used in %s mode", cfg.Mode)
	}

	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	switch cfg.Format {
	case FormatJSON, FormatYAML, FormatText:
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.Format)
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}

	return &cfg, nil
}

// explicitRequest reports whether the config asks for one variant.
func (c *Config) explicitRequest() bool {
	return c.Variant != "" || c.BuildType != ""
}
