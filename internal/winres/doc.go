// Package winres provides typed access to the three resource classes a
// tweak can touch: registry values, service startup configuration, and
// scheduled task enablement.
//
// The [Registry], [Services], and [Tasks] interfaces report absence as a
// distinguishable outcome (ErrNotFound for registry values and services,
// TaskNotFound for tasks) so callers can treat "does not exist" as data
// rather than failure.
//
// [Memory] is a complete in-memory implementation used by tests and
// dry-run planning. The real Windows implementation lives behind a
// windows build tag; on other platforms [NewSystem] reports that live
// access is unavailable.
package winres
