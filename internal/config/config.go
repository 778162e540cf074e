package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds user settings read from config.yaml.
type Config struct {
	// DataDir holds checklist.sqlite. Defaults to <config dir>/data.
	DataDir string `json:"data_dir" yaml:"data_dir"`
	// AutosaveDebounce is a Go duration string, e.g. "3s".
	AutosaveDebounce string `json:"autosave_debounce" yaml:"autosave_debounce"`
	LogLevel         string `json:"log_level" yaml:"log_level"`
	Format           string `json:"format" yaml:"format"`
	// Author is recorded on revisions and events.
	Author string `json:"author" yaml:"author"`
}

func DefaultConfig() *Config {
	return &Config{
		AutosaveDebounce: "3s",
		LogLevel:         "warn",
		Format:           "json",
	}
}

// Dir returns the config directory, honouring CHECKLIST_CONFIG_DIR.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("CHECKLIST_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".checklist"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads only the file (no environment), for callers that write it back.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	return cfg, nil
}

// LoadDefault loads config.yaml from Dir and resolves DataDir.
func LoadDefault() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = filepath.Join(filepath.Dir(path), "data")
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Keys lists the settable config keys in file order.
func Keys() []string {
	return []string{"data_dir", "autosave_debounce", "log_level", "format", "author"}
}

// Set assigns one key by its config.yaml name and validates the result.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "data_dir":
		c.DataDir = value
	case "autosave_debounce":
		c.AutosaveDebounce = value
	case "log_level":
		c.LogLevel = value
	case "format":
		c.Format = value
	case "author":
		c.Author = value
	default:
		return fmt.Errorf("unknown config key: %s (keys: %s)", key, strings.Join(Keys(), ", "))
	}
	return c.Validate()
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("CHECKLIST_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKLIST_FORMAT")); v != "" {
		c.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKLIST_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKLIST_AUTHOR")); v != "" {
		c.Author = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKLIST_AUTOSAVE_DEBOUNCE")); v != "" {
		c.AutosaveDebounce = v
	}
}

func (c *Config) Validate() error {
	if _, err := c.Debounce(); err != nil {
		return err
	}
	return nil
}

// Debounce parses AutosaveDebounce. Empty means 3s.
func (c *Config) Debounce() (time.Duration, error) {
	s := strings.TrimSpace(c.AutosaveDebounce)
	if s == "" {
		return 3 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid autosave_debounce %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid autosave_debounce %q: must not be negative", s)
	}
	return d, nil
}
