//go:build !windows

package winres

import "github.com/cockroachdb/errors"

// NewSystem reports that live resource access requires Windows. The
// in-memory implementation remains available for tests and dry runs.
func NewSystem() (Accessors, error) {
	return Accessors{}, errors.New("live system access is only available on Windows")
}
