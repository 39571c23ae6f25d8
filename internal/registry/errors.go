package registry

import "errors"

// Sentinel errors surfaced by the registry. The HTTP layer maps these to
// response codes with errors.Is.
var (
	// ErrNotFound is returned for operations on an unknown server id.
	ErrNotFound = errors.New("server not found")

	// ErrValidation is returned for missing or malformed required input.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyExists is returned on import when a server id is taken and
	// overwrite was not requested.
	ErrAlreadyExists = errors.New("server already exists")
)
