package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// ConfigPath returns the default config file path for an app:
// os.UserConfigDir()/<app>/config.yaml. The env variable, when non-empty
// and set in the environment, overrides the directory.
func ConfigPath(appName, env string) (string, error) {
	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return filepath.Join(dir, DefaultConfigFile), nil
		}
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appName, DefaultConfigFile), nil
}

// LoadConfig decodes the YAML file at path into v. A missing file is not an
// error: v is left untouched and found is false.
func LoadConfig(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

// SaveConfig writes v as YAML to path, creating the parent directory.
func SaveConfig(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
