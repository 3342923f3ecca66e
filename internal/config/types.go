// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cfinfer/cfinfer/pkg/checker"
	"github.com/cfinfer/cfinfer/pkg/inference"
)

// DefaultHarnessChecker is the checker the test harness runs when neither the
// flag nor the config file names one.
const DefaultHarnessChecker = "ostrusted.OsTrustedChecker"

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidHarnessConfig is the sentinel error wrapped by InvalidHarnessConfigError.
	ErrInvalidHarnessConfig = errors.New("invalid harness config")
)

type (
	// Config holds the application configuration.
	Config struct {
		// Toolchain locates the external Java distribution and tools.
		Toolchain ToolchainConfig `json:"toolchain" mapstructure:"toolchain"`
		// Defaults apply to `cfinfer run` flags that were not given.
		Defaults DefaultsConfig `json:"defaults" mapstructure:"defaults"`
		// Checkers declares extra checker descriptors, keyed by name.
		Checkers map[string]checker.Descriptor `json:"checkers,omitempty" mapstructure:"checkers"`
		// Harness configures `cfinfer test`.
		Harness HarnessConfig `json:"harness" mapstructure:"harness"`
	}

	// ToolchainConfig points at the inference distribution, the JDK and the
	// annotation file utilities.
	ToolchainConfig struct {
		InferenceHome string `json:"inference_home,omitempty" mapstructure:"inference_home"`
		JavaHome      string `json:"java_home,omitempty" mapstructure:"java_home"`
		AFUHome       string `json:"afu_home,omitempty" mapstructure:"afu_home"`
	}

	// DefaultsConfig overrides the built-in run defaults.
	DefaultsConfig struct {
		Mode      inference.Mode     `json:"mode" mapstructure:"mode"`
		LogLevel  inference.LogLevel `json:"log_level" mapstructure:"log_level"`
		Xmx       string             `json:"xmx" mapstructure:"xmx"`
		OutputDir string             `json:"output_dir" mapstructure:"output_dir"`
	}

	// HarnessConfig configures test discovery.
	HarnessConfig struct {
		// CheckersTests is the checker framework checkout whose tests/all-systems
		// directory is searched when SearchDirs is empty.
		CheckersTests string   `json:"checkers_tests,omitempty" mapstructure:"checkers_tests"`
		SearchDirs    []string `json:"search_dirs,omitempty" mapstructure:"search_dirs"`
		GoldDir       string   `json:"gold_dir,omitempty" mapstructure:"gold_dir"`
		Checker       string   `json:"checker" mapstructure:"checker"`
		Include       []string `json:"include" mapstructure:"include"`
	}

	// InvalidHarnessConfigError is returned when HarnessConfig has invalid fields.
	// It wraps ErrInvalidHarnessConfig for errors.Is() compatibility.
	InvalidHarnessConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Mode:      inference.DefaultMode,
			LogLevel:  inference.DefaultLogLevel,
			Xmx:       inference.DefaultXmx,
			OutputDir: inference.DefaultOutputDir,
		},
		Harness: HarnessConfig{
			Checker: DefaultHarnessChecker,
			Include: []string{"*.java"},
		},
	}
}

// IsValid returns whether the Config is valid, with all field errors.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if err := c.Defaults.Mode.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults.mode: %w", err))
	}
	if err := c.Defaults.LogLevel.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults.log_level: %w", err))
	}
	for _, name := range slices.Sorted(maps.Keys(c.Checkers)) {
		d := c.Checkers[name]
		if d.Name == "" {
			d.Name = name
		}
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("checkers.%s: %w", name, err))
		}
	}
	if ok, fieldErrs := c.Harness.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Descriptors returns the config-declared checkers sorted by name. Viper folds
// map keys to lower case, so an explicit name field wins over the key.
func (c Config) Descriptors() []checker.Descriptor {
	out := make([]checker.Descriptor, 0, len(c.Checkers))
	for _, key := range slices.Sorted(maps.Keys(c.Checkers)) {
		d := c.Checkers[key]
		if d.Name == "" {
			d.Name = key
		}
		out = append(out, d)
	}
	return out
}

// IsValid returns whether the HarnessConfig is valid, with all field errors.
func (h HarnessConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(h.Checker) == "" {
		errs = append(errs, errors.New("harness.checker: must not be empty"))
	}
	for i, pattern := range h.Include {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("harness.include[%d]: %q: %w", i, pattern, err))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidHarnessConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidHarnessConfigError) Error() string {
	return fmt.Sprintf("invalid harness config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidHarnessConfig for errors.Is() compatibility.
func (e *InvalidHarnessConfigError) Unwrap() error { return ErrInvalidHarnessConfig }

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns the sentinel and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
