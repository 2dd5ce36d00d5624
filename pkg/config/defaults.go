package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is used for the config directory and the environment prefix.
	AppName = "namefmt"
	// ConfigFileName is the default config file name (without extension).
	ConfigFileName = "config"
)

// Defaults are the tunables that can come from a config file or environment.
type Defaults struct {
	ImageExtensions   []string `mapstructure:"image_extensions"`
	CompanionSuffixes []string `mapstructure:"companion_suffixes"`
	StagingSuffix     string   `mapstructure:"staging_suffix"`
	ExcludeDirs       []string `mapstructure:"exclude_dirs"`
}

// DefaultDefaults returns the built-in tunables: jpg images own .pp3
// (RawTherapee) sidecars and files are staged under a .tmp suffix.
func DefaultDefaults() Defaults {
	return Defaults{
		ImageExtensions:   []string{"jpg"},
		CompanionSuffixes: []string{".pp3"},
		StagingSuffix:     ".tmp",
	}
}

// LoadDefaults reads tunables from path. An empty path falls back to
// $XDG_CONFIG_HOME/namefmt/config.{yaml,toml,json} when present; a missing
// default file is not an error. NAMEFMT_* environment variables override both.
func LoadDefaults(path string) (Defaults, error) {
	v := viper.New()

	defaults := DefaultDefaults()
	v.SetDefault("image_extensions", defaults.ImageExtensions)
	v.SetDefault("companion_suffixes", defaults.CompanionSuffixes)
	v.SetDefault("staging_suffix", defaults.StagingSuffix)
	v.SetDefault("exclude_dirs", defaults.ExcludeDirs)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Defaults{}, fmt.Errorf("%w: read config file %s: %w", ErrInvalidConfig, path, err)
		}
	} else if dir, err := configDir(); err == nil {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Defaults{}, fmt.Errorf("%w: read config file: %w", ErrInvalidConfig, err)
			}
		}
	}

	var d Defaults
	if err := v.Unmarshal(&d); err != nil {
		return Defaults{}, fmt.Errorf("%w: parse config: %w", ErrInvalidConfig, err)
	}

	for i, ext := range d.ImageExtensions {
		d.ImageExtensions[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}

	return d, nil
}

// configDir returns $XDG_CONFIG_HOME/namefmt, defaulting to ~/.config/namefmt.
func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}

	return filepath.Join(base, AppName), nil
}
