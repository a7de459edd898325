// Package errors defines the sentinel error kinds the storage engine
// distinguishes, wrapping POSIX errno codes the way [syscall.Errno] already
// names them.
package errors

import (
	"fmt"
	"syscall"
)

// DriverError is a wrapper around a system errno code with a customizable
// error message.
type DriverError struct {
	ErrnoCode syscall.Errno
	message   string
}

// Error implements the error interface.
func (e *DriverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.ErrnoCode.Error()
}

// Is reports whether target is the same errno code, so callers can use
// errors.Is(err, syscall.ENOSPC) without depending on this package.
func (e *DriverError) Is(target error) bool {
	if errno, ok := target.(syscall.Errno); ok {
		return e.ErrnoCode == errno
	}
	other, ok := target.(*DriverError)
	return ok && e.ErrnoCode == other.ErrnoCode
}

// Unwrap exposes the underlying errno code to errors.Is/errors.As.
func (e *DriverError) Unwrap() error {
	return e.ErrnoCode
}

// NewDriverError creates a DriverError with a default message derived from
// the errno code.
func NewDriverError(errnoCode syscall.Errno) *DriverError {
	return &DriverError{ErrnoCode: errnoCode, message: errnoCode.Error()}
}

// NewDriverErrorWithMessage creates a DriverError from an errno code with a
// custom message.
func NewDriverErrorWithMessage(errnoCode syscall.Errno, message string) *DriverError {
	return &DriverError{
		ErrnoCode: errnoCode,
		message:   fmt.Sprintf("%s: %s", errnoCode.Error(), message),
	}
}

// WrapError appends an underlying error's text to this one's message,
// keeping the original errno code.
func (e *DriverError) WrapError(err error) *DriverError {
	return &DriverError{
		ErrnoCode: e.ErrnoCode,
		message:   fmt.Sprintf("%s: %s", e.Error(), err.Error()),
	}
}

// Error kinds this engine distinguishes. EINVAL, EACCES, ENOSPC, ENOENT,
// and ERANGE are standard POSIX codes used for their ordinary meaning;
// ENOTCONN and ENOMEDIUM are repurposed to mean "not mounted" and
// "corrupt/foreign image" respectively, since no POSIX code names those
// exactly.
//
// Of these kinds, only EINVAL and EIO are ever returned as errors (by block.Device
// and the sfs encoders, matched through their errno code). The sfs
// operations report every other kind through a false / -1 result with a
// nil error; no call in this module returns those values.
var (
	// ErrInvalidArgument is returned for a bad block number or nil buffer.
	ErrInvalidArgument = NewDriverError(syscall.EINVAL)
	// ErrIOFailure is returned when the underlying stream read/write/seek
	// fails.
	ErrIOFailure = NewDriverError(syscall.EIO)
	// ErrNotMounted is the kind for an operation requiring a mounted
	// device attempted on one that isn't.
	ErrNotMounted = NewDriverError(syscall.ENOTCONN)
	// ErrBadImage is the kind for a magic or derived-count mismatch found
	// at mount.
	ErrBadImage = NewDriverError(syscall.ENOMEDIUM)
	// ErrAuthFailure is the kind for a protected image whose password does
	// not match.
	ErrAuthFailure = NewDriverError(syscall.EACCES)
	// ErrNoSpace is the kind for no free inode or block being available.
	ErrNoSpace = NewDriverError(syscall.ENOSPC)
	// ErrNotFound is the kind for an inode or name that does not exist.
	ErrNotFound = NewDriverError(syscall.ENOENT)
	// ErrOutOfRange is the kind for a requested length+offset that exceeds
	// addressable file capacity.
	ErrOutOfRange = NewDriverError(syscall.ERANGE)
	// ErrDuplicateName is the kind for a directory entry whose requested
	// name already exists.
	ErrDuplicateName = NewDriverError(syscall.EEXIST)
	// ErrAlreadyMounted is the kind for Mount/Format on a device that is
	// already mounted.
	ErrAlreadyMounted = NewDriverError(syscall.EBUSY)
)
