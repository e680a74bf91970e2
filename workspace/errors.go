package workspace

import "errors"

var (
	// ErrNotFound is returned when no file exists for the given run and
	// name pair.
	ErrNotFound = errors.New("workspace file not found")

	// ErrInvalidName is returned for run IDs or file names that would
	// escape the run directory, such as path separators or "..".
	ErrInvalidName = errors.New("invalid workspace name")
)
