package post

import "errors"

var (
	// ErrNotFound means a referenced node has no header record.
	ErrNotFound = errors.New("post: node not found")
	// ErrOverflow means a checked arithmetic step would exceed the
	// representable range. The whole call fails; nothing wraps silently.
	ErrOverflow = errors.New("post: arithmetic overflow")
	// ErrInvalidInput means the request is structurally invalid, e.g. a
	// malformed cursor component.
	ErrInvalidInput = errors.New("post: invalid input")
	// ErrUnauthorized means the sender may not perform the gated operation.
	ErrUnauthorized = errors.New("post: unauthorized")

	errNilEngine       = errors.New("post: engine not configured")
	errNotInstantiated = errors.New("post: not instantiated")
	errInstantiated    = errors.New("post: already instantiated")
)
