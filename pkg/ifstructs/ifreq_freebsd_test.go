package ifstructs

import (
	"encoding/binary"
	"net/netip"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeBSDSizes(t *testing.T) {
	if sizeofPtr != 8 {
		t.Skip("sizes checked for 64-bit ABIs")
	}
	assert.Equal(t, uintptr(32), unsafe.Sizeof(Ifreq{}))
	assert.Equal(t, uintptr(68), unsafe.Sizeof(Ifaliasreq{}))
	assert.Equal(t, uintptr(40), unsafe.Sizeof(Ifdrv{}))
	assert.Equal(t, uintptr(80), unsafe.Sizeof(Ifbreq{}))
	assert.Equal(t, uintptr(40), unsafe.Sizeof(Ifgroupreq{}))
}

func TestFreeBSDFlagsSpanBothWords(t *testing.T) {
	r := &Ifreq{}
	r.SetFlags(FlagUp | FlagPPromisc)
	assert.Equal(t, uint16(FlagUp), binary.NativeEndian.Uint16(r.raw[16:]))
	assert.Equal(t, uint16(FlagPPromisc>>16), binary.NativeEndian.Uint16(r.raw[18:]))

	r.RemoveFlags(FlagPPromisc)
	assert.Equal(t, FlagUp, r.Flags())
}

func TestBSDSockaddrHasLength(t *testing.T) {
	sa, err := SockaddrInet4(netip.MustParseAddr("192.0.2.1"))
	require.NoError(t, err)
	assert.Equal(t, byte(16), sa[0])
	assert.Equal(t, byte(afInet), sa[1])
}

func TestIfdrvCarriesMember(t *testing.T) {
	br, err := NewIfbreq("em0")
	require.NoError(t, err)
	drv, err := NewIfdrv("bridge0", BRDGADD, br.Pointer(), SizeofIfbreq)
	require.NoError(t, err)

	name, err := drv.Name()
	require.NoError(t, err)
	assert.Equal(t, "bridge0", name)
	assert.Equal(t, uintptr(0), drv.Cmd)
	assert.Equal(t, uintptr(SizeofIfbreq), drv.Len)
	member, err := br.Member()
	require.NoError(t, err)
	assert.Equal(t, "em0", member)
}
