// Package config loads tweakctl configuration via Viper.
//
// Configuration is read from config.yaml in the current directory or the
// tweakctl config home, with TWEAKCTL_* environment variable overrides.
// All settings have working defaults so the tool runs without any config
// file present.
package config
