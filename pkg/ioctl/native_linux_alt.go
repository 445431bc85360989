//go:build linux && (mips || mipsle || mips64 || mips64le || ppc || ppc64 || ppc64le || sparc64)

package ioctl

// Native is the request code layout of the running platform.
var Native = LinuxAlt
