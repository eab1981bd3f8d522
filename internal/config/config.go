package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all scriptsmith configuration.
type Config struct {
	// Generation service
	Generator GeneratorConfig `yaml:"generator"`

	// Progressive reveal of generated scripts
	Reveal RevealConfig `yaml:"reveal"`

	// Durable key-value storage (credentials)
	Store StoreConfig `yaml:"store"`

	// Interactive editor
	Editor EditorConfig `yaml:"editor"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeneratorConfig configures the generation service.
type GeneratorConfig struct {
	Provider    string  `yaml:"provider"` // gemini, openai, anthropic
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Timeout     string  `yaml:"timeout"`
	Temperature float32 `yaml:"temperature"`

	// APIKey is never written to disk; it is filled from the environment.
	APIKey string `yaml:"-"`
}

// RevealConfig configures the reveal cadence.
type RevealConfig struct {
	Interval string `yaml:"interval"` // per unit of text, e.g. "10ms"
}

// StoreConfig configures the credential store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite (modernc, pure Go) or sqlite3 (mattn, cgo)
	Path   string `yaml:"path"`
}

// EditorConfig configures the interactive editor.
type EditorConfig struct {
	Template   string `yaml:"template"`    // starter template for a new buffer
	ExportPath string `yaml:"export_path"` // Ctrl+S target when no file is open
	Watch      bool   `yaml:"watch"`       // reload on external file edits
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// ValidProviders lists all supported generation providers.
var ValidProviders = []string{"gemini", "openai", "anthropic"}

// ValidDrivers lists the supported SQLite drivers.
var ValidDrivers = []string{"sqlite", "sqlite3"}

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[string]string{
	"gemini":    "gemini-2.5-flash",
	"openai":    "gpt-4o",
	"anthropic": "claude-sonnet-4-5",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Provider:    "gemini",
			Model:       DefaultModels["gemini"],
			Timeout:     "120s",
			Temperature: 0.2,
		},
		Reveal: RevealConfig{
			Interval: "10ms",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   DefaultStorePath(),
		},
		Editor: EditorConfig{
			Template:   "blank",
			ExportPath: "script.sh",
			Watch:      true,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// DefaultStorePath returns the process-wide credential database path.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".smith", "smith.db")
	}
	return filepath.Join(dir, "scriptsmith", "smith.db")
}

// DefaultConfigPath returns <workspace>/.smith/config.yaml.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, ".smith", "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	// Filled by applyDefaults once the provider is known.
	cfg.Generator.Model = ""

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if p := strings.ToLower(os.Getenv("SMITH_PROVIDER")); p != "" {
		if p != c.Generator.Provider && c.Generator.Model == DefaultModels[c.Generator.Provider] {
			c.Generator.Model = ""
		}
		c.Generator.Provider = p
	}
	if m := os.Getenv("SMITH_MODEL"); m != "" {
		c.Generator.Model = m
	}
	if path := os.Getenv("SMITH_DB"); path != "" {
		c.Store.Path = path
	}

	// Only the key for the selected provider is picked up.
	for _, env := range CredentialEnvVars(c.Generator.Provider) {
		if key := os.Getenv(env); key != "" {
			c.Generator.APIKey = key
			break
		}
	}
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	if c.Generator.Provider == "" {
		c.Generator.Provider = "gemini"
	}
	if c.Generator.Model == "" {
		c.Generator.Model = DefaultModels[c.Generator.Provider]
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath()
	}
	if c.Editor.ExportPath == "" {
		c.Editor.ExportPath = "script.sh"
	}
}

// CredentialEnvVars returns the environment variables checked for a provider's key,
// in priority order.
func CredentialEnvVars(provider string) []string {
	switch provider {
	case "gemini":
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case "openai":
		return []string{"OPENAI_API_KEY"}
	case "anthropic":
		return []string{"ANTHROPIC_API_KEY"}
	default:
		return nil
	}
}

// CredentialKey returns the key-value store key holding a provider's credential.
func CredentialKey(provider string) string {
	switch provider {
	case "openai":
		return "openai_api_key"
	case "anthropic":
		return "anthropic_api_key"
	default:
		return "google_api_key"
	}
}

// GetGeneratorTimeout returns the generation timeout as a duration.
func (c *Config) GetGeneratorTimeout() time.Duration {
	d, err := time.ParseDuration(c.Generator.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// GetRevealInterval returns the per-unit reveal interval.
// Zero is a valid value and means "no pacing".
func (c *Config) GetRevealInterval() time.Duration {
	d, err := time.ParseDuration(c.Reveal.Interval)
	if err != nil || d < 0 {
		return 10 * time.Millisecond
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !contains(ValidProviders, c.Generator.Provider) {
		return fmt.Errorf("invalid generator provider: %s (valid: %v)", c.Generator.Provider, ValidProviders)
	}
	if !contains(ValidDrivers, c.Store.Driver) {
		return fmt.Errorf("invalid store driver: %s (valid: %v)", c.Store.Driver, ValidDrivers)
	}
	if c.Reveal.Interval != "" {
		if _, err := time.ParseDuration(c.Reveal.Interval); err != nil {
			return fmt.Errorf("invalid reveal interval %q: %w", c.Reveal.Interval, err)
		}
	}
	if c.Generator.Timeout != "" {
		if _, err := time.ParseDuration(c.Generator.Timeout); err != nil {
			return fmt.Errorf("invalid generator timeout %q: %w", c.Generator.Timeout, err)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
