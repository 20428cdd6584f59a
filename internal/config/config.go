// Package config provides configuration management for tweakctl using Viper.
package config

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/tweakctl/tweakctl/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// DefaultOSVersion is the OS version tag assumed when detection and
// configuration both stay silent.
const DefaultOSVersion = "w11"

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// CatalogDir overrides the tweak catalog directory. Empty means the
	// "tweaks" directory beside the executable.
	CatalogDir string `mapstructure:"catalog_dir" yaml:"catalog_dir"`

	// SnapshotDir overrides the snapshot store directory. Empty means the
	// "snapshots" directory beside the executable.
	SnapshotDir string `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`

	// OSVersion is the OS version tag used to filter change applicability
	// (e.g. "w10", "w11").
	OSVersion string `mapstructure:"os_version" yaml:"os_version"`

	// DisableElevation forces all writes through the direct accessors even
	// for tweaks flagged as requiring elevation. Intended for testing.
	DisableElevation bool `mapstructure:"disable_elevation" yaml:"disable_elevation"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigHome())

	// Environment variable support
	viper.SetEnvPrefix("TWEAKCTL")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("os_version", DefaultOSVersion)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found
// (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural constraints on the loaded configuration.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return errors.Newf("unsupported config version: %d", c.Version)
	}
	if c.SnapshotDir != "" && !filepath.IsAbs(c.SnapshotDir) {
		return errors.Newf("snapshot_dir must be absolute: %s", c.SnapshotDir)
	}
	return nil
}

// ResolveSnapshotDir returns the effective snapshot directory.
func (c *Config) ResolveSnapshotDir() (string, error) {
	if c.SnapshotDir != "" {
		return c.SnapshotDir, nil
	}
	return paths.SnapshotsDir()
}

// ResolveCatalogDir returns the effective tweak catalog directory.
func (c *Config) ResolveCatalogDir() (string, error) {
	if c.CatalogDir != "" {
		return c.CatalogDir, nil
	}
	return paths.CatalogDir()
}
