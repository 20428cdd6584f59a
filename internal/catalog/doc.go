// Package catalog loads tweak definitions from YAML files.
//
// A tweak declares an ordered list of mutually exclusive options, each a
// concrete target configuration of registry values, service startup modes,
// and scheduled task states. Registry data is decoded against the declared
// value type, so a dword 1 and the string "1" never blur together.
//
// Every change may carry an os applicability list; the engine filters
// changes against the configured OS version tag before capture, detection,
// and apply.
package catalog
