package core

import "errors"

// Error taxonomy shared by every package in this module. Callers match with
// errors.Is; the wrapping error usually carries the interface name and, when
// the failure came from the kernel, the original errno.
var (
	// ErrNotFound means the named interface or device does not exist.
	ErrNotFound = errors.New("interface not found")

	// ErrBusy means a clone device is currently held by someone else.
	ErrBusy = errors.New("device busy")

	// ErrMaxNumberReached means every device index in the scanned range is taken.
	ErrMaxNumberReached = errors.New("maximum number of devices reached")

	// ErrNameTooLong means a name plus its terminator does not fit the kernel buffer.
	ErrNameTooLong = errors.New("interface name too long")

	// ErrBadArguments reports empty or otherwise invalid caller input.
	ErrBadArguments = errors.New("bad arguments")

	// ErrBadData reports a malformed or truncated kernel response.
	ErrBadData = errors.New("bad data from kernel")

	// ErrNotSupported means the operation is unavailable on this platform.
	ErrNotSupported = errors.New("operation not supported on this platform")

	// ErrDriverNotFound means the virtual interface driver is not installed.
	ErrDriverNotFound = errors.New("virtual interface driver not found")

	// ErrClosed is returned by pipeline operations after shutdown.
	ErrClosed = errors.New("pipeline closed")
)
