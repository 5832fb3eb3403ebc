// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrIO indicates that a data file could not be opened, read or written.
	ErrIO = errors.New("storage i/o failure")
	// ErrLock indicates that a record lock could not be acquired.
	ErrLock = errors.New("failed to lock record")
)
