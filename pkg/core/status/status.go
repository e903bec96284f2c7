// Package status exports errors produced by the core package.
package status

import (
	"github.com/oneconcern/depot/pkg/errors"
)

var (
	// ErrNotFound indicates a version could not be resolved
	ErrNotFound = errors.New("version not found")

	// ErrMissingBinaries indicates a version declares files but has no binaries
	ErrMissingBinaries = errors.New("could not find binaries directory")

	// ErrCycle indicates a dependency graph which loops back onto one of its ancestors
	ErrCycle = errors.New("dependency cycle")

	// ErrVerification is returned when some file fails its integrity check
	ErrVerification = errors.New("verification failed")

	// ErrInvalidPattern indicates an exclusion or file filter that does not compile
	ErrInvalidPattern = errors.New("invalid pattern")
)
