package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrUnauthenticated indicates that no usable principal was attached to the call.
	ErrUnauthenticated = errors.New("unauthenticated")
)
