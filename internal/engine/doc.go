// Package engine is the snapshot and rollback core.
//
// It captures the prior state of every resource an option touches before
// anything is modified, persists that baseline through the snapshot
// store, detects which option a tweak is currently in by reading the live
// system, and restores baselines with transactional semantics: registry
// restores are all-or-nothing with in-process undo, while service and
// task restores are best-effort with per-resource failure collection.
//
// Apply and Revert hold a per-tweak mutex, so at most one mutation per
// tweak runs at a time; detection is read-only and fans out across tweaks
// concurrently.
package engine
