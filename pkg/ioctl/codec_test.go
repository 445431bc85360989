package ioctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownRequestCodes(t *testing.T) {
	tests := []struct {
		name string
		enc  Encoding
		dir  Dir
		grp  byte
		num  uint8
		size uintptr
		want uint
	}{
		{"linux TUNSETIFF", Linux, Write, 'T', 202, 4, 0x400454ca},
		{"linux TUNGETFEATURES", Linux, Read, 'T', 207, 4, 0x800454cf},
		{"powerpc TUNSETIFF", LinuxAlt, Write, 'T', 202, 4, 0x800454ca},
		{"freebsd SIOCGIFFLAGS", BSD, ReadWrite, 'i', 17, 32, 0xc0206911},
		{"freebsd SIOCSIFFLAGS", BSD, Write, 'i', 16, 32, 0x80206910},
		{"darwin SIOCAIFADDR", BSD, Write, 'i', 26, 64, 0x8040691a},
		{"freebsd TUNSIFHEAD", BSD, Write, 't', 96, 4, 0x80047460},
		{"freebsd TUNSIFPID", BSD, None, 't', 95, 0, 0x2000745f},
		{"none ignores size", BSD, None, 't', 95, 64, 0x2000745f},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.enc.Request(tt.dir, tt.grp, tt.num, tt.size), "got %#x", tt.enc.Request(tt.dir, tt.grp, tt.num, tt.size))
		})
	}
}

func TestRequestMasksOversizedPayload(t *testing.T) {
	req := BSD.Request(Read, 'x', 1, 0x2001)
	_, _, _, size := BSD.Decode(req)
	assert.Equal(t, uintptr(1), size)
}

func TestDecodeInvertsRequest(t *testing.T) {
	for _, enc := range []Encoding{Linux, LinuxAlt, BSD} {
		for _, d := range []Dir{None, Read, Write, ReadWrite} {
			size := uintptr(40)
			if d == None {
				size = 0
			}
			gd, grp, num, gsize := enc.Decode(enc.Request(d, 'i', 136, size))
			assert.Equal(t, d, gd, "%s %s", enc.Name, d)
			assert.Equal(t, byte('i'), grp)
			assert.Equal(t, uint8(136), num)
			assert.Equal(t, size, gsize)
		}
	}
}

func TestCtlCode(t *testing.T) {
	assert.Equal(t, uint32(0x220004), CtlCode(FileDeviceUnknown, 1, MethodBuffered, FileAnyAccess))
	assert.Equal(t, uint32(0x220018), CtlCode(FileDeviceUnknown, 6, MethodBuffered, FileAnyAccess))
	assert.Equal(t, uint32(0x220028), CtlCode(FileDeviceUnknown, 10, MethodBuffered, FileAnyAccess))
}
