// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/cfinfer/cfinfer/internal/issue"
	"github.com/cfinfer/cfinfer/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "cfinfer"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema []byte

// envBindings maps config keys onto the environment variables the Java
// toolchain has always been configured with. The first set variable wins.
var envBindings = []struct {
	key  string
	envs []string
}{
	{key: "toolchain.inference_home", envs: []string{"CHECKER_INFERENCE"}},
	{key: "toolchain.java_home", envs: []string{"JAVA_HOME"}},
	{key: "toolchain.afu_home", envs: []string{"AFU_HOME"}},
	{key: "harness.checkers_tests", envs: []string{"CHECKERS_TESTS", "CHECKERS"}},
}

// ConfigDir returns the cfinfer configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// resolvePath returns the config file Load would read, or "" when none exists.
// An explicit ConfigFilePath must exist.
func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'cfinfer config path' to see where configuration is looked up").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}

	candidates := []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		ConfigFileName + "." + ConfigFileExt,
	}
	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("defaults.mode", string(defaults.Defaults.Mode))
	v.SetDefault("defaults.log_level", string(defaults.Defaults.LogLevel))
	v.SetDefault("defaults.xmx", defaults.Defaults.Xmx)
	v.SetDefault("defaults.output_dir", defaults.Defaults.OutputDir)
	v.SetDefault("harness.checker", defaults.Harness.Checker)
	v.SetDefault("harness.include", defaults.Harness.Include)

	for _, b := range envBindings {
		if err := v.BindEnv(append([]string{b.key}, b.envs...)...); err != nil {
			return nil, "", fmt.Errorf("bind %s: %w", b.key, err)
		}
	}

	path, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}

	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'cfinfer config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if ok, errs := cfg.IsValid(); !ok {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Checker entries need a fully qualified 'checker' class").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, path, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into Viper.
// Every field is optional, so the document is decoded without requiring
// concreteness and merged as a map on top of the defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.Decode[map[string]any](configSchema, "#Config", data,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file if none exists yet and
// returns its path. An explicit ConfigFilePath is written as given; otherwise
// the file goes into the (possibly overridden) config directory.
func CreateDefaultConfig(opts LoadOptions) (string, error) {
	cfgPath := opts.ConfigFilePath
	if cfgPath == "" {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return "", err
		}
		cfgPath = filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, nil
}

// GenerateCUE renders the configuration as a CUE document accepted by #Config.
// Empty optional fields are omitted.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// cfinfer configuration file\n")

	tc := cfg.Toolchain
	if tc.InferenceHome != "" || tc.JavaHome != "" || tc.AFUHome != "" {
		sb.WriteString("\ntoolchain: {\n")
		writeField(&sb, 1, "inference_home", tc.InferenceHome)
		writeField(&sb, 1, "java_home", tc.JavaHome)
		writeField(&sb, 1, "afu_home", tc.AFUHome)
		sb.WriteString("}\n")
	}

	sb.WriteString("\ndefaults: {\n")
	writeField(&sb, 1, "mode", cfg.Defaults.Mode.String())
	writeField(&sb, 1, "log_level", cfg.Defaults.LogLevel.String())
	writeField(&sb, 1, "xmx", cfg.Defaults.Xmx)
	writeField(&sb, 1, "output_dir", cfg.Defaults.OutputDir)
	sb.WriteString("}\n")

	if len(cfg.Checkers) > 0 {
		sb.WriteString("\ncheckers: {\n")
		for _, d := range cfg.Descriptors() {
			sb.WriteString("\t" + strconv.Quote(d.Name) + ": {\n")
			writeField(&sb, 2, "name", d.Name)
			writeField(&sb, 2, "checker", d.Checker)
			writeField(&sb, 2, "solver", d.Solver)
			writeField(&sb, 2, "stubs", d.Stubs)
			writeField(&sb, 2, "subtype", d.Subtype)
			writeField(&sb, 2, "supertype", d.Supertype)
			sb.WriteString("\t}\n")
		}
		sb.WriteString("}\n")
	}

	sb.WriteString("\nharness: {\n")
	writeField(&sb, 1, "checkers_tests", cfg.Harness.CheckersTests)
	writeList(&sb, 1, "search_dirs", cfg.Harness.SearchDirs)
	writeField(&sb, 1, "gold_dir", cfg.Harness.GoldDir)
	writeField(&sb, 1, "checker", cfg.Harness.Checker)
	writeList(&sb, 1, "include", cfg.Harness.Include)
	sb.WriteString("}\n")

	return sb.String()
}

func writeField(sb *strings.Builder, depth int, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "%s%s: %s\n", strings.Repeat("\t", depth), name, strconv.Quote(value))
}

func writeList(sb *strings.Builder, depth int, name string, values []string) {
	if len(values) == 0 {
		return
	}
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(v))
	}
	fmt.Fprintf(sb, "%s%s: [%s]\n", strings.Repeat("\t", depth), name, strings.Join(quoted, ", "))
}
