//go:build darwin || freebsd || netbsd || openbsd

package ioctl

// Native is the request code layout of the running platform.
var Native = BSD
