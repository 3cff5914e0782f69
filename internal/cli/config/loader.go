// Package config defines the CLI configuration structure.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"

	"github.com/bradthebeeble/ignite/internal/infra/confloader"
)

// EnvPrefix is the environment variable prefix for CLI settings.
// Example: IGNITE_CLI_DEFAULT_OUTPUT=json.
const EnvPrefix = "IGNITE_CLI_"

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".ignite", "cli.yaml")
}

// Load reads CLI configuration from the given file, then applies
// IGNITE_CLI_* environment overrides. A missing file yields defaults;
// an unreadable or malformed file is an error.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	opts := []confloader.Option{confloader.WithEnvPrefix(EnvPrefix)}
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	return cfg, nil
}

// Save writes CLI configuration to the given file with 0600 permissions,
// since profiles may carry bearer tokens.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Parser().Marshal(toMap(cfg))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// toMap renders the config as the nested map shape the YAML file uses.
// Keys mirror the koanf tags so Load reads back what Save wrote.
func toMap(cfg *CLIConfig) map[string]any {
	profiles := make(map[string]any, len(cfg.Profiles))
	for name, p := range cfg.Profiles {
		entry := map[string]any{}
		if p.Endpoint != "" {
			entry["endpoint"] = p.Endpoint
		}
		if p.Token != "" {
			entry["token"] = p.Token
		}
		if p.Socket != "" {
			entry["socket"] = p.Socket
		}
		profiles[name] = entry
	}

	return map[string]any{
		"default_output":  cfg.DefaultOutput,
		"current_profile": cfg.CurrentProfile,
		"profiles":        profiles,
	}
}
