// Package config loads plancheck settings from TOML files: built-in
// defaults, overridden by ~/.plancheck/config.toml, overridden by the
// project's .plancheck.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultProvider      = "anthropic"
	DefaultModel         = "claude-sonnet-4-5"
	DefaultMaxTokens     = 4096
	DefaultTemperature   = 0.2
	DefaultContextTokens = 24000
)

// Config holds the merged settings for a run.
type Config struct {
	Provider      string
	Model         string
	MaxTokens     int
	Temperature   float64
	ContextTokens int
	Experimental  bool
	Ignore        []string
	LogLevel      string
}

// fileConfig mirrors the on-disk TOML shape. Zero values mean "not set" and
// leave the previous layer's value in place.
type fileConfig struct {
	LLM struct {
		Provider    string  `toml:"provider"`
		Model       string  `toml:"model"`
		MaxTokens   int     `toml:"max_tokens"`
		Temperature float64 `toml:"temperature"`
	} `toml:"llm"`
	Context struct {
		MaxTokens int `toml:"max_tokens"`
	} `toml:"context"`
	Checkers struct {
		Experimental bool     `toml:"experimental"`
		Ignore       []string `toml:"ignore"`
	} `toml:"checkers"`
	Logging struct {
		Level string `toml:"level"`
	} `toml:"logging"`
}

// StateDir returns the user-level state directory (~/.plancheck).
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".plancheck"
	}
	return filepath.Join(home, ".plancheck")
}

// Load builds the merged config for projectDir. Missing files are fine;
// a malformed file is an error (a config the user wrote but that cannot be
// read should not be silently ignored).
func Load(projectDir string) (Config, error) {
	cfg := Config{
		Provider:      DefaultProvider,
		Model:         DefaultModel,
		MaxTokens:     DefaultMaxTokens,
		Temperature:   DefaultTemperature,
		ContextTokens: DefaultContextTokens,
		LogLevel:      "warn",
	}

	paths := []string{
		filepath.Join(StateDir(), "config.toml"),
		filepath.Join(projectDir, ".plancheck.toml"),
	}
	for _, path := range paths {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.LLM.Provider != "" {
		cfg.Provider = fc.LLM.Provider
	}
	if fc.LLM.Model != "" {
		cfg.Model = fc.LLM.Model
	}
	if fc.LLM.MaxTokens > 0 {
		cfg.MaxTokens = fc.LLM.MaxTokens
	}
	if fc.LLM.Temperature > 0 {
		cfg.Temperature = fc.LLM.Temperature
	}
	if fc.Context.MaxTokens > 0 {
		cfg.ContextTokens = fc.Context.MaxTokens
	}
	if fc.Checkers.Experimental {
		cfg.Experimental = true
	}
	if len(fc.Checkers.Ignore) > 0 {
		cfg.Ignore = append(cfg.Ignore, fc.Checkers.Ignore...)
	}
	if fc.Logging.Level != "" {
		cfg.LogLevel = fc.Logging.Level
	}
	return nil
}
