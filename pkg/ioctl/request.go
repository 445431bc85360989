//go:build linux || darwin || freebsd || netbsd || openbsd

package ioctl

// IO is _IO(group, num) for the running platform.
func IO(group byte, num uint8) uint {
	return Native.Request(None, group, num, 0)
}

// IOR is _IOR(group, num, type) where size is sizeof(type).
func IOR(group byte, num uint8, size uintptr) uint {
	return Native.Request(Read, group, num, size)
}

// IOW is _IOW(group, num, type).
func IOW(group byte, num uint8, size uintptr) uint {
	return Native.Request(Write, group, num, size)
}

// IOWR is _IOWR(group, num, type).
func IOWR(group byte, num uint8, size uintptr) uint {
	return Native.Request(ReadWrite, group, num, size)
}
