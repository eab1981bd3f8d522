package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"scriptsmith/internal/config"
	"scriptsmith/internal/generator"
	"scriptsmith/internal/logging"
	"scriptsmith/internal/store"
	"scriptsmith/internal/templates"
)

// app bundles the collaborators every command needs.
type app struct {
	workspace string
	cfg       *config.Config
	kv        *store.KV
	creds     *store.Credentials
	gen       *generator.Service
}

func resolveWorkspace() (string, error) {
	if workspace != "" {
		return filepath.Abs(workspace)
	}
	return os.Getwd()
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (string, *config.Config, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath(ws)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	if provider != "" && !strings.EqualFold(provider, cfg.Generator.Provider) {
		if cfg.Generator.Model == config.DefaultModels[cfg.Generator.Provider] {
			cfg.Generator.Model = config.DefaultModels[strings.ToLower(provider)]
		}
		cfg.Generator.Provider = strings.ToLower(provider)
		cfg.Generator.APIKey = ""
		for _, env := range config.CredentialEnvVars(cfg.Generator.Provider) {
			if v := os.Getenv(env); v != "" {
				cfg.Generator.APIKey = v
				break
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return ws, cfg, nil
}

// openApp loads configuration, starts file logging and opens the credential store.
func openApp() (*app, error) {
	ws, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := logging.Initialize(ws, logging.Config{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		logger.Warn("File logging disabled", zap.Error(err))
	}
	logging.Boot("workspace=%s provider=%s model=%s store=%s(%s)",
		ws, cfg.Generator.Provider, cfg.Generator.Model, cfg.Store.Path, cfg.Store.Driver)

	kv, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	gen, err := generator.New(generator.Config{
		Provider:    cfg.Generator.Provider,
		Model:       cfg.Generator.Model,
		BaseURL:     cfg.Generator.BaseURL,
		Timeout:     cfg.GetGeneratorTimeout(),
		Temperature: cfg.Generator.Temperature,
	})
	if err != nil {
		kv.Close()
		return nil, err
	}

	return &app{
		workspace: ws,
		cfg:       cfg,
		kv:        kv,
		creds:     store.NewCredentials(kv, config.CredentialKey(cfg.Generator.Provider), cfg.Generator.APIKey),
		gen:       gen,
	}, nil
}

func (a *app) Close() {
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	logging.CloseAll()
}

// initialScript loads path, or the named (or configured) starter template when
// path is empty. A path that does not exist yet starts from the template too.
func (a *app) initialScript(path, template string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	if template == "" {
		template = a.cfg.Editor.Template
	}
	return templates.Lookup(template)
}
