package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the application name used for directory naming.
const AppName = "tweakctl"

// SnapshotsDirName is the directory holding snapshot records, created
// beside the running executable.
const SnapshotsDirName = "snapshots"

// CatalogDirName is the default directory holding tweak catalog files,
// created beside the running executable.
const CatalogDirName = "tweaks"

// Sentinel errors for path resolution.
var (
	// ErrExecutableNotFound indicates the running executable's location
	// could not be determined.
	ErrExecutableNotFound = errors.New("executable path not found")
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o755

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ExecutableDir returns the directory containing the running executable.
// Symlinks are resolved so snapshots land beside the real binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(ErrExecutableNotFound, err.Error())
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		// Fall back to the unresolved path; a dangling symlink here is
		// unlikely and the directory is still usable.
		resolved = exe
	}
	return filepath.Dir(resolved), nil
}

// SnapshotsDir returns the snapshot store directory, co-located with the
// executable so snapshots travel with the tool.
func SnapshotsDir() (string, error) {
	dir, err := ExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SnapshotsDirName), nil
}

// CatalogDir returns the default tweak catalog directory beside the executable.
func CatalogDir() (string, error) {
	dir, err := ExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CatalogDirName), nil
}

// ConfigHome returns the base directory for tweakctl configuration.
// Respects TWEAKCTL_CONFIG_DIR for tests and portable installs, then
// falls back to the XDG config home.
func ConfigHome() string {
	if dir := os.Getenv("TWEAKCTL_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}
