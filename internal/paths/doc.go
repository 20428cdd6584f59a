// Package paths resolves the well-known directories used by tweakctl.
//
// Snapshot records and the default tweak catalog live beside the running
// executable so a portable install carries its own rollback state. User
// configuration follows the XDG base directory convention, overridable
// through TWEAKCTL_CONFIG_DIR.
package paths
