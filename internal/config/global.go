package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "ccsg"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// DefaultPath returns the path of the user's config file. Respects
// XDG_CONFIG_HOME, defaults to ~/.config/ccsg/config.yml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file at path on top of the defaults. An empty path
// means DefaultPath, which may be missing. A path the user named must exist.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expandPaths()
	return &cfg, nil
}

// Resolve loads the config file and applies the environment.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}
