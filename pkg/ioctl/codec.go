// Package ioctl builds platform ioctl request codes and issues the calls.
//
// A request code packs a transfer direction, a device-class group byte, a
// command number and the size of the argument structure. Linux and the BSD
// family lay these fields out differently, so each layout is an Encoding
// value; Native is the one the running platform uses.
package ioctl

import "fmt"

// Dir is the data transfer direction as seen from user space.
type Dir int

const (
	None      Dir = iota // no argument
	Read                 // kernel writes the argument (_IOR)
	Write                // kernel reads the argument (_IOW)
	ReadWrite            // both (_IOWR)
)

func (d Dir) String() string {
	switch d {
	case None:
		return "none"
	case Read:
		return "read"
	case Write:
		return "write"
	case ReadWrite:
		return "readwrite"
	}
	return fmt.Sprintf("Dir(%d)", int(d))
}

// Encoding describes one request code layout.
type Encoding struct {
	Name string

	dirNone, dirRead, dirWrite uint
	dirShift                   uint
	sizeMask                   uint
}

var (
	// Linux is the asm-generic layout used by x86, arm, arm64, riscv and s390.
	Linux = Encoding{Name: "linux", dirNone: 0, dirRead: 2, dirWrite: 1, dirShift: 30, sizeMask: 1<<14 - 1}

	// LinuxAlt is the layout of mips, powerpc and sparc: three direction bits
	// and a 13-bit size.
	LinuxAlt = Encoding{Name: "linux-alt", dirNone: 1, dirRead: 2, dirWrite: 4, dirShift: 29, sizeMask: 1<<13 - 1}

	// BSD is shared by FreeBSD, NetBSD, OpenBSD and Darwin.
	// IOC_VOID, IOC_OUT and IOC_IN live in the top three bits and
	// IOCPARM_MASK limits the size to 13 bits.
	BSD = Encoding{Name: "bsd", dirNone: 1, dirRead: 2, dirWrite: 4, dirShift: 29, sizeMask: 0x1fff}
)

func (e Encoding) dirBits(d Dir) uint {
	switch d {
	case Read:
		return e.dirRead
	case Write:
		return e.dirWrite
	case ReadWrite:
		return e.dirRead | e.dirWrite
	}
	return e.dirNone
}

// Request returns the request code for the tuple. Sizes that overflow the size
// field are masked the same way the C macros do.
func (e Encoding) Request(d Dir, group byte, num uint8, size uintptr) uint {
	if d == None {
		size = 0
	}
	return e.dirBits(d)<<e.dirShift | (uint(size)&e.sizeMask)<<16 | uint(group)<<8 | uint(num)
}

// Decode splits a request code produced by this encoding.
func (e Encoding) Decode(req uint) (d Dir, group byte, num uint8, size uintptr) {
	bits := req >> e.dirShift
	switch {
	case bits&(e.dirRead|e.dirWrite) == e.dirRead|e.dirWrite:
		d = ReadWrite
	case bits&e.dirRead != 0:
		d = Read
	case bits&e.dirWrite != 0:
		d = Write
	default:
		d = None
	}
	return d, byte(req >> 8), uint8(req), uintptr(req>>16) & uintptr(e.sizeMask)
}

// Windows device-control code fields.
const (
	FileDeviceUnknown = 0x22

	MethodBuffered  = 0
	MethodInDirect  = 1
	MethodOutDirect = 2
	MethodNeither   = 3

	FileAnyAccess = 0
)

// CtlCode is the CTL_CODE macro used to build DeviceIoControl codes.
func CtlCode(deviceType, function, method, access uint32) uint32 {
	return deviceType<<16 | access<<14 | function<<2 | method
}
