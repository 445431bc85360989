package ifstructs

import (
	"fmt"
	"strings"
)

// Flags is the interface flag bitmask (IFF_*). Bit values differ between
// Linux and the BSDs; use the named constants of the target platform.
type Flags uint32

// Has reports whether every bit of f2 is set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	rest := f
	for _, n := range flagNames {
		if f&n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

type flagName struct {
	bit  Flags
	name string
}
