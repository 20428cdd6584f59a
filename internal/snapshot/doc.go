// Package snapshot defines the persisted pre-change state records and the
// file-backed store that holds them.
//
// One record exists per tweak identifier, stored as a JSON file in a
// "snapshots" directory beside the executable. A record's presence means
// the tweak has an unreverted change; it is created on the first apply,
// has only its option metadata updated on option switches, and is deleted
// after a fully successful revert.
//
// The record keeps separate entry lists for registry values, services,
// and scheduled tasks because each class restores with a different
// atomicity guarantee. See the engine package for restore semantics.
//
// All store writes are atomic (temp file + rename), so an interrupted
// write never corrupts an existing record.
package snapshot
