package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"SMITH_PROVIDER", "SMITH_MODEL", "SMITH_DB",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(env, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "gemini", cfg.Generator.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Generator.Model)
	assert.Equal(t, 10*time.Millisecond, cfg.GetRevealInterval())
	assert.Equal(t, 120*time.Second, cfg.GetGeneratorTimeout())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Generator, cfg.Generator)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".smith", "config.yaml")

	cfg := DefaultConfig()
	cfg.Generator.Provider = "anthropic"
	cfg.Generator.Model = "claude-test"
	cfg.Generator.APIKey = "must-not-persist"
	cfg.Reveal.Interval = "25ms"
	cfg.Logging.Categories = map[string]bool{"reveal": false}
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "must-not-persist")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", loaded.Generator.Provider)
	assert.Equal(t, "claude-test", loaded.Generator.Model)
	assert.Empty(t, loaded.Generator.APIKey)
	assert.Equal(t, 25*time.Millisecond, loaded.GetRevealInterval())
	assert.Equal(t, map[string]bool{"reveal": false}, loaded.Logging.Categories)
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator:\n  provider: openai\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Generator.Provider)
	assert.Equal(t, "gpt-4o", cfg.Generator.Model)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("provider key picked for selected provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "google-key")
		t.Setenv("OPENAI_API_KEY", "openai-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "google-key", cfg.Generator.APIKey)
	})

	t.Run("GEMINI_API_KEY wins over GOOGLE_API_KEY", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "google-key")
		t.Setenv("GEMINI_API_KEY", "gemini-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "gemini-key", cfg.Generator.APIKey)
	})

	t.Run("SMITH_PROVIDER switches provider and key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SMITH_PROVIDER", "OpenAI")
		t.Setenv("OPENAI_API_KEY", "openai-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "openai", cfg.Generator.Provider)
		assert.Equal(t, "openai-key", cfg.Generator.APIKey)
	})

	t.Run("SMITH_DB and SMITH_MODEL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SMITH_DB", "/tmp/x.db")
		t.Setenv("SMITH_MODEL", "gemini-test")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "/tmp/x.db", cfg.Store.Path)
		assert.Equal(t, "gemini-test", cfg.Generator.Model)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad provider", func(c *Config) { c.Generator.Provider = "zai" }, true},
		{"bad driver", func(c *Config) { c.Store.Driver = "postgres" }, true},
		{"bad interval", func(c *Config) { c.Reveal.Interval = "fast" }, true},
		{"bad timeout", func(c *Config) { c.Generator.Timeout = "soon" }, true},
		{"cgo driver", func(c *Config) { c.Store.Driver = "sqlite3" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reveal.Interval = "0s"
	assert.Equal(t, time.Duration(0), cfg.GetRevealInterval())

	cfg.Reveal.Interval = "-5ms"
	assert.Equal(t, 10*time.Millisecond, cfg.GetRevealInterval())

	cfg.Generator.Timeout = "nonsense"
	assert.Equal(t, 120*time.Second, cfg.GetGeneratorTimeout())
}

func TestCredentialKey(t *testing.T) {
	assert.Equal(t, "google_api_key", CredentialKey("gemini"))
	assert.Equal(t, "openai_api_key", CredentialKey("openai"))
	assert.Equal(t, "anthropic_api_key", CredentialKey("anthropic"))
}
