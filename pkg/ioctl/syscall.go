//go:build linux || darwin || freebsd || netbsd || openbsd

package ioctl

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Ioctl issues ioctl(fd, req, arg). A failure comes back as the raw
// unix.Errno so callers can match specific codes.
func Ioctl(fd uintptr, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// IoctlInt issues an ioctl whose argument is a pointer to an int.
func IoctlInt(fd uintptr, req uint, v int32) error {
	return Ioctl(fd, req, unsafe.Pointer(&v))
}

// Socket is a datagram socket used only as a handle for interface ioctls.
type Socket struct {
	mu     sync.Mutex
	fd     int
	closed bool
}

// NewSocket opens an AF_INET datagram control socket.
func NewSocket() (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, fmt.Errorf("control socket: %w", os.NewSyscallError("socket", err))
	}
	unix.CloseOnExec(fd)
	return &Socket{fd: fd}, nil
}

// Ioctl issues req on the control socket.
func (s *Socket) Ioctl(req uint, arg unsafe.Pointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return os.ErrClosed
	}
	return Ioctl(uintptr(s.fd), req, arg)
}

// Fd returns the raw descriptor.
func (s *Socket) Fd() int { return s.fd }

// Close releases the socket. Closing twice is a no-op.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return unix.Close(s.fd)
}
