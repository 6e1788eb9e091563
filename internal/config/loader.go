package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configDir  = ".theseus"
	configFile = "config"
	configType = "yaml"

	// EnvPrefix prefixes environment overrides, e.g. THESEUS_URL.
	EnvPrefix = "THESEUS"
)

// Load reads the configuration from ~/.theseus/config.yaml.
// Returns an empty config if the file does not exist.
func Load() (*Config, error) {
	dir, err := DirPath()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}
	return LoadFrom(dir)
}

// LoadFrom reads config.yaml from dir.
func LoadFrom(dir string) (*Config, error) {
	v := newViper()
	v.AddConfigPath(dir)

	cfg := &Config{}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			cfg.Preferences.Theme = v.GetString("preferences.theme")
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to ~/.theseus/config.yaml.
func Save(cfg *Config) error {
	dir, err := DirPath()
	if err != nil {
		return fmt.Errorf("config dir: %w", err)
	}
	return SaveTo(dir, cfg)
}

// SaveTo writes config.yaml into dir, creating it if needed.
func SaveTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := newViper()
	v.Set("profiles", cfg.Profiles)
	v.Set("preferences", cfg.Preferences)

	path := filepath.Join(dir, configFile+"."+configType)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultProfile returns the default profile from config, or the first one.
func DefaultProfile(cfg *Config) *Profile {
	if len(cfg.Profiles) == 0 {
		return nil
	}

	if p := cfg.Profile(cfg.Preferences.DefaultProfile); p != nil {
		return p
	}

	return &cfg.Profiles[0]
}

// DirPath returns the configuration directory.
func DirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType(configType)

	// Defaults
	v.SetDefault("preferences.theme", "default")
	return v
}
