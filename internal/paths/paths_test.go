package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "c")

	if err := EnsureDir(target, 0); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}

	// Idempotent
	if err := EnsureDir(target, 0); err != nil {
		t.Errorf("EnsureDir() second call error = %v", err)
	}
}

func TestSnapshotsDir_BesideExecutable(t *testing.T) {
	exeDir, err := ExecutableDir()
	if err != nil {
		t.Fatalf("ExecutableDir() error = %v", err)
	}

	snapDir, err := SnapshotsDir()
	if err != nil {
		t.Fatalf("SnapshotsDir() error = %v", err)
	}

	if filepath.Dir(snapDir) != exeDir {
		t.Errorf("snapshots dir %q should be directly under %q", snapDir, exeDir)
	}
	if filepath.Base(snapDir) != SnapshotsDirName {
		t.Errorf("base = %q, want %q", filepath.Base(snapDir), SnapshotsDirName)
	}
}

func TestConfigHome_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TWEAKCTL_CONFIG_DIR", dir)

	if got := ConfigHome(); got != dir {
		t.Errorf("ConfigHome() = %q, want %q", got, dir)
	}
}

func TestConfigHome_Default(t *testing.T) {
	t.Setenv("TWEAKCTL_CONFIG_DIR", "")

	got := ConfigHome()
	if !strings.HasSuffix(got, AppName) {
		t.Errorf("ConfigHome() = %q, want suffix %q", got, AppName)
	}
}
