// Package config loads and saves the focusa settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/focusa/pkg/focus"
	"github.com/harrisonrobin/focusa/pkg/parser"
)

const (
	xdgAppName      = "focusa"
	configFile      = "config.yaml"
	DefaultCalendar = "Tasks"
)

type Config struct {
	Calendar string       `yaml:"calendar"`
	Focus    focus.Config `yaml:"focus"`
	Parser   ParserConfig `yaml:"parser"`
	LogLevel string       `yaml:"log_level"`
	LogFile  string       `yaml:"log_file"`
}

type ParserConfig struct {
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// APIKey reads the parser key from the configured environment variable.
func (p ParserConfig) APIKey() string {
	return os.Getenv(p.APIKeyEnv)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Calendar: DefaultCalendar,
		Focus:    focus.DefaultConfig(),
		Parser: ParserConfig{
			Model:     parser.DefaultModel,
			BaseURL:   parser.DefaultBaseURL,
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
		LogLevel: "info",
	}
}

// Dir returns the directory holding config, credentials and tokens.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, xdgAppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return configFile
	}
	return filepath.Join(dir, configFile)
}

// Load reads path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.merge(file)
	return &cfg, nil
}

// merge copies set values from other; invalid focus values keep the default.
func (c *Config) merge(other Config) {
	if other.Calendar != "" {
		c.Calendar = other.Calendar
	}
	c.Focus.Merge(other.Focus)
	if other.Parser.Model != "" {
		c.Parser.Model = other.Parser.Model
	}
	if other.Parser.BaseURL != "" {
		c.Parser.BaseURL = other.Parser.BaseURL
	}
	if other.Parser.APIKeyEnv != "" {
		c.Parser.APIKeyEnv = other.Parser.APIKeyEnv
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Set updates a single key given in dotted form, e.g. "focus.work". Focus
// values that are not positive integers are rejected and the prior value
// kept.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "calendar":
		if value == "" {
			return fmt.Errorf("calendar cannot be empty")
		}
		c.Calendar = value
	case "focus.work":
		return c.setFocus(focus.OptionWork, value)
	case "focus.short_break":
		return c.setFocus(focus.OptionShortBreak, value)
	case "focus.long_break":
		return c.setFocus(focus.OptionLongBreak, value)
	case "focus.cycles_per_long_break":
		return c.setFocus(focus.OptionCyclesPerLongBreak, value)
	case "parser.model":
		c.Parser.Model = value
	case "parser.base_url":
		c.Parser.BaseURL = value
	case "parser.api_key_env":
		c.Parser.APIKeyEnv = value
	case "log_level":
		c.LogLevel = value
	case "log_file":
		c.LogFile = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func (c *Config) setFocus(option, value string) error {
	if !c.Focus.Set(option, value) {
		return fmt.Errorf("%s must be a positive integer, got %s", option, strconv.Quote(value))
	}
	return nil
}
