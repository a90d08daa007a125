package link

import (
	"errors"
	"fmt"
	"syscall"
)

// Kernel error codes handled specially. They are Linux errno values, which
// is what the kernel sends regardless of where this code was built.
const (
	codeExist    = 17 // EEXIST
	codeNoDevice = 19 // ENODEV
)

var (
	// ErrNotFound is returned when an index query matched no link.
	ErrNotFound = errors.New("link not found")

	// ErrMultipleResults is returned when a query expected to be unique
	// matched more than one link.
	ErrMultipleResults = errors.New("multiple links matched")

	// ErrIndexAllocationFailed is returned by CreateLink when every attempt
	// lost the index race.
	ErrIndexAllocationFailed = errors.New("interface index allocation failed")
)

// CreateError is a kernel rejection of a create request for any reason other
// than the predicted index being taken.
type CreateError struct {
	Index int32
	Code  int
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("failed to create link at index %d: %v", e.Index, syscall.Errno(e.Code))
}

// Unwrap exposes the errno so callers can use errors.Is(err, syscall.EPERM).
func (e *CreateError) Unwrap() error {
	return syscall.Errno(e.Code)
}

// TransportError is a non-zero kernel error code surfaced from a query.
type TransportError struct {
	Op   string
	Code int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: kernel returned error %d: %v", e.Op, e.Code, syscall.Errno(e.Code))
}

// Unwrap exposes the errno.
func (e *TransportError) Unwrap() error {
	return syscall.Errno(e.Code)
}
