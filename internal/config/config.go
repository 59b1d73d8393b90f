// Package config loads SpaceDB build and CLI configuration from a YAML
// file plus environment overrides, using a *viper.Viper with
// SetEnvPrefix/AutomaticEnv layered over the config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// BuildConfig controls SpaceDB.New's resolution-ladder construction and the
// underlying Morton index's cell resolution.
type BuildConfig struct {
	// CellBits is the number of bits reserved per axis in the Morton code
	// backing each SpaceSetIndex. Default 10.
	CellBits uint `mapstructure:"cell_bits"`

	// DefaultMaxElements is used when a build call does not specify
	// max_elements explicitly but requests the auto-ladder path.
	DefaultMaxElements int `mapstructure:"default_max_elements"`

	// LogLevel names a logging verbosity ("debug", "info", "warn"). It is
	// loaded with the rest of the config; the CLI's logger does not read it.
	LogLevel string `mapstructure:"log_level"`
}

// DefaultBuildConfig returns the configuration used when no file or
// environment override is present.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		CellBits:          10,
		DefaultMaxElements: 0,
		LogLevel:           "info",
	}
}

// Load reads a BuildConfig from configPath (if non-empty) and from
// SPACEDB_-prefixed environment variables, falling back to DefaultBuildConfig
// for anything unset.
func Load(configPath string) (BuildConfig, error) {
	cfg := DefaultBuildConfig()

	v := viper.New()
	v.SetEnvPrefix("SPACEDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("cell_bits", cfg.CellBits)
	v.SetDefault("default_max_elements", cfg.DefaultMaxElements)
	v.SetDefault("log_level", cfg.LogLevel)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
