// Package ifstructs holds the byte-exact kernel request layouts used to talk
// to the network stack: ifreq, ifaliasreq, ifdrv, ifbreq, ifgroupreq and
// rtentry. Layouts are chosen at compile time for the target OS and are only
// reachable through named accessors.
package ifstructs

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/irctrakz/netif/pkg/core"
)

// IFNAMSIZ is the capacity of every interface name field, terminator included.
const IFNAMSIZ = 16

// putName writes name NUL padded into dst. dst is left untouched on error.
func putName(dst []byte, name string) error {
	if len(name)+1 > len(dst) {
		return fmt.Errorf("%w: %q needs %d bytes, field holds %d", core.ErrNameTooLong, name, len(name)+1, len(dst))
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: interface name contains NUL", core.ErrBadArguments)
	}
	n := copy(dst, name)
	clear(dst[n:])
	return nil
}

// getName returns the bytes before the first NUL.
func getName(src []byte) (string, error) {
	end := bytes.IndexByte(src, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: name field not terminated within %d bytes", core.ErrBadData, len(src))
	}
	if !utf8.Valid(src[:end]) {
		return "", fmt.Errorf("%w: name is not valid UTF-8", core.ErrBadData)
	}
	return string(src[:end]), nil
}

// CheckName validates name against the kernel buffer without building a request.
func CheckName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty interface name", core.ErrBadArguments)
	}
	var scratch [IFNAMSIZ]byte
	return putName(scratch[:], name)
}

// CString returns name as a NUL-terminated IFNAMSIZ buffer, the argument
// format of ioctls that take a bare name (Linux SIOCBRADDBR and friends).
func CString(name string) (*[IFNAMSIZ]byte, error) {
	var b [IFNAMSIZ]byte
	if err := putName(b[:], name); err != nil {
		return nil, err
	}
	return &b, nil
}

// GroupNames decodes a buffer of fixed-width, NUL-padded group slots as
// returned by SIOCGIFGROUP. A trailing partial slot is malformed.
func GroupNames(buf []byte) ([]string, error) {
	if len(buf)%IFNAMSIZ != 0 {
		return nil, fmt.Errorf("%w: group buffer of %d bytes is not a multiple of %d", core.ErrBadData, len(buf), IFNAMSIZ)
	}
	groups := make([]string, 0, len(buf)/IFNAMSIZ)
	for off := 0; off < len(buf); off += IFNAMSIZ {
		g, err := getName(buf[off : off+IFNAMSIZ])
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}
