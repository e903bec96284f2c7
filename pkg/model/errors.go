package model

import "github.com/oneconcern/depot/pkg/errors"

var (
	// ErrValidation indicates that some metadata is missing required fields or is inconsistent
	ErrValidation = errors.New("invalid metadata")

	// ErrMalformedOperation indicates an operation that cannot be parsed from its tokens
	ErrMalformedOperation = errors.New("malformed operation")

	// ErrMalformedDependency indicates a dependency definition that cannot be parsed
	ErrMalformedDependency = errors.New("malformed dependency")
)
