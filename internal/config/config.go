// Package config loads pieces CLI configuration.
//
// Values are layered, lowest to highest priority: defaults, the config
// file (pieces.yaml or pieces.yml), PIECES_* environment variables, and
// explicitly set command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultFormat = "text"
	EnvPrefix     = "PIECES_"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// configFileNames are searched in the working directory when no config
// file is given explicitly.
var configFileNames = []string{"pieces.yaml", "pieces.yml"}

// Config holds the resolved CLI configuration.
type Config struct {
	// Mapping is the default mapping path (CUE file or SQLite database).
	Mapping string `koanf:"mapping"`

	// Format is the output format: "text" or "json".
	Format string `koanf:"format"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`

	// GoldenDir is where the test command reads golden snapshots.
	// Empty means a "golden" directory next to the scenarios directory.
	GoldenDir string `koanf:"golden_dir"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Load loads configuration from cfgFile (or a pieces.yaml in the working
// directory), the environment and flags. Only flags marked as changed
// override lower layers.
//
// Relative paths read from the config file are resolved against the
// file's directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"mapping":    "",
		"format":     DefaultFormat,
		"verbose":    false,
		"golden_dir": "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		fk := koanf.New(".")
		if err := fk.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
		base := filepath.Dir(used)
		for _, key := range []string{"mapping", "golden_dir"} {
			if v := fk.String(key); v != "" {
				if err := fk.Set(key, resolvePathRelativeTo(v, base)); err != nil {
					return nil, err
				}
			}
		}
		if err := k.Merge(fk); err != nil {
			return nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	// 3. Environment: PIECES_GOLDEN_DIR -> golden_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value constraints.
func (c *Config) Validate() error {
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	return nil
}

// findConfigFile returns explicit if set, otherwise the first default
// config file present in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
