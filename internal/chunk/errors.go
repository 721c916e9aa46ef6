package chunk

import "errors"

var (
	// ErrInternal marks a violated internal invariant recovered while
	// chunking one file.
	ErrInternal = errors.New("internal chunking error")
	// ErrEmptyContent is returned by callers that require non-blank input.
	ErrEmptyContent = errors.New("empty content")
)
