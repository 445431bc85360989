package ifstructs

import (
	"encoding/binary"
	"net/netip"
	"testing"
	"unsafe"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIfreqSize(t *testing.T) {
	want := uintptr(32)
	if sizeofPtr == 8 {
		want = 40
	}
	assert.Equal(t, want, unsafe.Sizeof(Ifreq{}))
	assert.Equal(t, want, unsafe.Sizeof(IfreqData{}))
}

func TestIfreqFlagsAtOffset16(t *testing.T) {
	r, err := NewIfreq("eth0")
	require.NoError(t, err)
	r.SetFlags(FlagUp | FlagRunning)

	assert.Equal(t, uint16(0x41), binary.NativeEndian.Uint16(r.raw[16:18]))
	name, err := r.Name()
	require.NoError(t, err)
	assert.Equal(t, "eth0", name)
}

func TestInsertRemoveFlagsRestoresOriginal(t *testing.T) {
	r := &Ifreq{}
	for orig := 0; orig <= 0xffff; orig += 0x0101 {
		for _, bits := range []Flags{FlagUp, FlagPromisc, FlagUp | FlagRunning, FlagMulticast | FlagNoARP, 0xffff} {
			add := bits &^ Flags(orig)
			r.SetFlags(Flags(orig))
			r.InsertFlags(add)
			assert.True(t, r.Flags().Has(add))
			r.RemoveFlags(add)
			assert.Equal(t, Flags(orig), r.Flags(), "orig=%#x bits=%#x", orig, add)
		}
	}
}

func TestIfreqIndexAndNewName(t *testing.T) {
	r, err := NewIfreq("lo")
	require.NoError(t, err)
	r.SetIndex(42)
	assert.Equal(t, 42, r.Index())

	r.ClearUnion()
	require.NoError(t, r.SetNewName("wan0"))
	got, err := r.NewName()
	require.NoError(t, err)
	assert.Equal(t, "wan0", got)

	assert.ErrorIs(t, r.SetNewName("this-name-is-too-long"), core.ErrNameTooLong)
}

func TestIfreqMTU(t *testing.T) {
	r := &Ifreq{}
	r.SetMTU(1420)
	assert.Equal(t, 1420, r.MTU())
}

func TestSockaddrInet4(t *testing.T) {
	sa, err := SockaddrInet4(netip.MustParseAddr("10.1.2.3"))
	require.NoError(t, err)
	assert.Equal(t, afInet, sa.Family())
	assert.Equal(t, []byte{10, 1, 2, 3}, sa[4:8])

	addr, ok := sa.Addr()
	require.True(t, ok)
	assert.Equal(t, "10.1.2.3", addr.String())

	_, err = SockaddrInet4(netip.MustParseAddr("fe80::1"))
	assert.ErrorIs(t, err, core.ErrBadArguments)
}

func TestMaskInet4(t *testing.T) {
	for bits, want := range map[int]string{0: "0.0.0.0", 8: "255.0.0.0", 24: "255.255.255.0", 32: "255.255.255.255"} {
		sa, err := MaskInet4(bits)
		require.NoError(t, err)
		addr, _ := sa.Addr()
		assert.Equal(t, want, addr.String())
	}
	_, err := MaskInet4(33)
	assert.ErrorIs(t, err, core.ErrBadArguments)
}

func TestRtentryLayout(t *testing.T) {
	if sizeofPtr != 8 {
		t.Skip("offsets checked for 64-bit ABIs")
	}
	var r Rtentry
	assert.Equal(t, uintptr(120), unsafe.Sizeof(r))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(r.Dst))
	assert.Equal(t, uintptr(56), unsafe.Offsetof(r.Flags))
	assert.Equal(t, uintptr(80), unsafe.Offsetof(r.Metric))
	assert.Equal(t, uintptr(88), unsafe.Offsetof(r.Dev))
	assert.Equal(t, uintptr(112), unsafe.Offsetof(r.Irtt))
}

func TestEthtoolDrvinfoLayout(t *testing.T) {
	d := NewEthtoolDrvinfo()
	assert.Equal(t, uintptr(196), unsafe.Sizeof(*d))
	copy(d.driver[:], "tun")
	copy(d.busInfo[:], "tap")
	drv, err := d.Driver()
	require.NoError(t, err)
	bus, err := d.BusInfo()
	require.NoError(t, err)
	assert.Equal(t, "tun", drv)
	assert.Equal(t, "tap", bus)
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "UP|RUNNING", (FlagUp | FlagRunning).String())
	assert.Equal(t, "0", Flags(0).String())
	assert.Equal(t, "UP|0x10000", (FlagUp | 0x10000).String())
}
