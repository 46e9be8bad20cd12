package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Config is the root configuration for jobmon, stored in ~/.jobmon/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Log         LogConfig         `json:"log"`
	Diagnostics DiagnosticsConfig `json:"diagnostics"`
}

// LogConfig controls where diagnostics go. Reports never go through it.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
	// File, if set, receives diagnostics instead of stderr and is rotated by size.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

// DiagnosticsConfig controls how pairing anomalies are surfaced.
type DiagnosticsConfig struct {
	// WarnUnmatched logs orphaned STARTs and unmatched ENDs at warn level
	// instead of info.
	WarnUnmatched bool `json:"warn_unmatched"`
}

const (
	DefaultLevel      = "warn"
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
)

var validLevels = []string{"debug", "info", "warn", "error"}

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:      DefaultLevel,
			MaxSizeMB:  DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// jobmon configuration – ~/.jobmon/config.json
//
// All settings are optional. They only affect diagnostics; the report
// format and the 5/10 minute thresholds are fixed.
{
  "log": {
    // Minimum level of diagnostic messages: "debug", "info", "warn", "error".
    // --verbose on the command line forces "debug".
    "level": "warn",

    // Write diagnostics to this file instead of stderr. Leave empty for stderr.
    "file": "",

    // Rotate the diagnostics file after this many megabytes, keeping this
    // many old files.
    "max_size_mb": 10,
    "max_backups": 3
  },

  "diagnostics": {
    // Log START rows that never ended and END rows that never started at
    // warn level instead of info.
    "warn_unmatched": false
  }
}
`

// DefaultPath returns the path to ~/.jobmon/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".jobmon", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at path, creating it with annotated defaults when it
// does not exist. On error the returned Config is still usable defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			return Default(), fmt.Errorf("could not create config file %s: %w", path, writeErr)
		}
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLevel
	}
	if !slices.Contains(validLevels, cfg.Log.Level) {
		bad := cfg.Log.Level
		cfg.Log.Level = DefaultLevel
		return cfg, fmt.Errorf("config file %s: unknown log level %q, using %q", path, bad, DefaultLevel)
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = DefaultMaxSizeMB
	}
	if cfg.Log.MaxBackups < 0 {
		cfg.Log.MaxBackups = DefaultMaxBackups
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
