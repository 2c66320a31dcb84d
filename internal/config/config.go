// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for tibschat.
//
// Supports both TOML and JSON formats with built-in defaults and environment
// variable overrides.
//
// Configuration file locations (in order of precedence):
//   - ~/.tibschat/config.toml
//   - ~/.tibschat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tibsdev/tibschat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete tibschat configuration.
type Config struct {
	// DefaultModel is the model selector used when none is chosen explicitly.
	DefaultModel string `toml:"default_model" json:"default_model"`

	Ollama  OllamaConfig  `toml:"ollama" json:"ollama"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// OllamaConfig contains the local Ollama server settings.
type OllamaConfig struct {
	// URL of the Ollama server.
	URL string `toml:"url" json:"url"`
	// GenerateTimeoutSecs bounds a single generate request.
	GenerateTimeoutSecs int `toml:"generate_timeout_secs" json:"generate_timeout_secs"`
}

// StorageConfig contains the storage paths the stores consume. Empty
// sub-paths are derived from DataDir.
type StorageConfig struct {
	// DataDir is the application data directory.
	DataDir string `toml:"data_dir" json:"data_dir"`
	// ConversationsDir holds one JSON document per conversation.
	ConversationsDir string `toml:"conversations_dir" json:"conversations_dir"`
	// PersonasFile is the custom-personas mapping document.
	PersonasFile string `toml:"personas_file" json:"personas_file"`
	// LegacyHistoryFile is the pre-migration single-file history.
	LegacyHistoryFile string `toml:"legacy_history_file" json:"legacy_history_file"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark", "light", or "auto".
	Theme string `toml:"theme" json:"theme"`
}

// =============================================================================
// DEFAULTS & PATHS
// =============================================================================

// Default returns a Config with default values. Storage paths are left empty
// here and derived from DataDir in SetDefaults.
func Default() *Config {
	return &Config{
		DefaultModel: "",
		Ollama: OllamaConfig{
			URL:                 "http://127.0.0.1:11434",
			GenerateTimeoutSecs: 60,
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// ConfigDir returns the tibschat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tibschat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load loads configuration, trying TOML first, then JSON, then defaults.
// Environment overrides are applied on top, then defaults are filled and the
// result validated.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", tomlPath, err)
			}
			return finishLoad(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			data, err := os.ReadFile(jsonPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", jsonPath, err)
			}
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", jsonPath, err)
			}
			return finishLoad(cfg)
		}
	}

	return finishLoad(cfg)
}

// LoadFromPath loads configuration from a specific file, by extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# tibschat configuration file")
	fmt.Fprintln(file, "# Generated by tibschat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file atomically.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS & VALIDATION
// =============================================================================

// SetDefaults fills missing fields and derives the storage paths from the
// data directory.
func (c *Config) SetDefaults() error {
	defaults := Default()

	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	if c.Ollama.GenerateTimeoutSecs == 0 {
		c.Ollama.GenerateTimeoutSecs = defaults.Ollama.GenerateTimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	if c.Storage.DataDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		c.Storage.DataDir = dir
	}
	if c.Storage.ConversationsDir == "" {
		c.Storage.ConversationsDir = filepath.Join(c.Storage.DataDir, "conversations")
	}
	if c.Storage.PersonasFile == "" {
		c.Storage.PersonasFile = filepath.Join(c.Storage.DataDir, "custom_personas.json")
	}
	if c.Storage.LegacyHistoryFile == "" {
		c.Storage.LegacyHistoryFile = filepath.Join(c.Storage.DataDir, "chat_history.json")
	}

	return nil
}

// ValidationError is a field-scoped configuration error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Ollama.URL != "" {
		if u, err := url.Parse(c.Ollama.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "ollama.url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Ollama.URL),
			})
		}
	}

	if c.Ollama.GenerateTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "ollama.generate_timeout_secs",
			Message: "must be non-negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - TIBSCHAT_MODEL: overrides default_model
//   - TIBSCHAT_OLLAMA_URL: overrides ollama.url
//   - TIBSCHAT_DATA_DIR: overrides storage.data_dir
//   - TIBSCHAT_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("TIBSCHAT_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if ollamaURL := os.Getenv("TIBSCHAT_OLLAMA_URL"); ollamaURL != "" {
		c.Ollama.URL = ollamaURL
	}
	if dataDir := os.Getenv("TIBSCHAT_DATA_DIR"); dataDir != "" {
		c.Storage.DataDir = dataDir
		// Derived paths follow the override unless set explicitly.
		c.Storage.ConversationsDir = ""
		c.Storage.PersonasFile = ""
		c.Storage.LegacyHistoryFile = ""
	}
	if theme := os.Getenv("TIBSCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}
