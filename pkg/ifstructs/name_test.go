package ifstructs

import (
	"strings"
	"testing"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRoundTrip(t *testing.T) {
	for n := 1; n < IFNAMSIZ; n++ {
		name := strings.Repeat("x", n-1) + "0"
		var field [IFNAMSIZ]byte
		require.NoError(t, putName(field[:], name))
		got, err := getName(field[:])
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
}

func TestNameTooLongLeavesFieldUntouched(t *testing.T) {
	var field [IFNAMSIZ]byte
	require.NoError(t, putName(field[:], "eth0"))
	before := field

	err := putName(field[:], strings.Repeat("a", IFNAMSIZ))
	assert.ErrorIs(t, err, core.ErrNameTooLong)
	assert.Equal(t, before, field)
}

func TestPutNameClearsPreviousBytes(t *testing.T) {
	var field [IFNAMSIZ]byte
	require.NoError(t, putName(field[:], "bridge1234"))
	require.NoError(t, putName(field[:], "br0"))
	assert.Equal(t, [IFNAMSIZ]byte{'b', 'r', '0'}, field)
}

func TestGetNameRejectsCorruptField(t *testing.T) {
	var field [IFNAMSIZ]byte
	for i := range field {
		field[i] = 'z'
	}
	_, err := getName(field[:])
	assert.ErrorIs(t, err, core.ErrBadData)

	field = [IFNAMSIZ]byte{0xff, 0xfe, 0}
	_, err = getName(field[:])
	assert.ErrorIs(t, err, core.ErrBadData)
}

func TestCheckName(t *testing.T) {
	assert.ErrorIs(t, CheckName(""), core.ErrBadArguments)
	assert.ErrorIs(t, CheckName("a\x00b"), core.ErrBadArguments)
	assert.ErrorIs(t, CheckName("averyveryverylongname"), core.ErrNameTooLong)
	assert.NoError(t, CheckName("tun%d"))
}

func TestGroupNames(t *testing.T) {
	buf := make([]byte, 3*IFNAMSIZ)
	copy(buf, "all")
	copy(buf[IFNAMSIZ:], "tun")
	copy(buf[2*IFNAMSIZ:], "egress")

	groups, err := GroupNames(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"all", "tun", "egress"}, groups)

	_, err = GroupNames(buf[:IFNAMSIZ+3])
	assert.ErrorIs(t, err, core.ErrBadData)

	empty, err := GroupNames(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
