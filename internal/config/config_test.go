package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestInit_Defaults(t *testing.T) {
	viper.Reset()

	Init()

	if viper.GetInt("version") != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt("version"))
	}
	if viper.GetString("os_version") != DefaultOSVersion {
		t.Errorf("expected os_version default %q, got %q", DefaultOSVersion, viper.GetString("os_version"))
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	viper.Reset()
	t.Setenv("TWEAKCTL_CONFIG_DIR", t.TempDir())

	Init()

	cfg, err := Load("")
	if err != nil {
		t.Errorf("Load() with no config file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config to be returned")
	}
	if cfg.OSVersion != DefaultOSVersion {
		t.Errorf("OSVersion = %q, want %q", cfg.OSVersion, DefaultOSVersion)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte("os_version: w10\ncatalog_dir: /opt/tweaks\n")
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		t.Fatal(err)
	}

	Init()

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.OSVersion != "w10" {
		t.Errorf("OSVersion = %q, want %q", cfg.OSVersion, "w10")
	}
	if cfg.CatalogDir != "/opt/tweaks" {
		t.Errorf("CatalogDir = %q, want %q", cfg.CatalogDir, "/opt/tweaks")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	viper.Reset()
	Init()

	_, err := Load(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	if err == nil {
		t.Error("Load() with non-existent explicit path should error")
	}
}

func TestLoad_InvalidVersion(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("version: 9\n"), 0600); err != nil {
		t.Fatal(err)
	}

	Init()

	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Errorf("error = %v, want unsupported config version", err)
	}
}

func TestValidate_RelativeSnapshotDir(t *testing.T) {
	cfg := &Config{Version: 1, SnapshotDir: "relative/dir"}
	if err := cfg.Validate(); err == nil {
		t.Error("relative snapshot_dir should fail validation")
	}
}

func TestResolveSnapshotDir_Override(t *testing.T) {
	want := t.TempDir()
	cfg := &Config{Version: 1, SnapshotDir: want}

	got, err := cfg.ResolveSnapshotDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("ResolveSnapshotDir() = %q, want %q", got, want)
	}
}
