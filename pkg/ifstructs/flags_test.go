package ifstructs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsStringZeroAndUnknownBits(t *testing.T) {
	assert.Equal(t, "0", Flags(0).String())

	var known Flags
	for _, n := range flagNames {
		known |= n.bit
	}
	unknown := ^known & 0x80000000
	if unknown == 0 {
		t.Skip("every bit has a name on this platform")
	}
	assert.Equal(t, "0x80000000", unknown.String())
}

func TestFlagsHas(t *testing.T) {
	f := Flags(0x5)
	assert.True(t, f.Has(0x1))
	assert.True(t, f.Has(0x5))
	assert.False(t, f.Has(0x3))
}
