package route

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inet(a, b, c, d byte) []byte {
	sa := make([]byte, 16)
	sa[0] = 16
	sa[1] = familyInet
	copy(sa[4:], []byte{a, b, c, d})
	return sa
}

// message builds one rt_msghdr followed by sockaddrs and pad bytes.
func message(l Layout, index uint16, flags, addrs uint32, pad int, sas ...[]byte) []byte {
	hdr := make([]byte, l.HeaderSize)
	hdr[2] = 5 // RTM_VERSION
	hdr[3] = 4 // RTM_GET
	binary.NativeEndian.PutUint16(hdr[l.IndexOff:], index)
	binary.NativeEndian.PutUint32(hdr[l.FlagsOff:], flags)
	binary.NativeEndian.PutUint32(hdr[l.AddrsOff:], addrs)
	if l.HdrlenOff >= 0 {
		binary.NativeEndian.PutUint16(hdr[l.HdrlenOff:], uint16(l.HeaderSize))
	}
	msg := hdr
	for _, sa := range sas {
		msg = append(msg, sa...)
	}
	for i := 0; i < pad; i++ {
		msg = append(msg, 0xAA)
	}
	binary.NativeEndian.PutUint16(msg[0:2], uint16(len(msg)))
	return msg
}

func TestDecodeDstAndGatewayOnly(t *testing.T) {
	for _, l := range []Layout{LayoutFreeBSD, LayoutDarwin, LayoutNetBSD, LayoutOpenBSD} {
		t.Run(l.Name, func(t *testing.T) {
			first := message(l, 2, FlagUp|FlagGateway, AddrDst|AddrGateway, 24, inet(0, 0, 0, 0), inet(192, 168, 1, 1))
			second := message(l, 1, FlagUp|FlagHost, AddrDst, 0, inet(127, 0, 0, 1))
			buf := append(first, second...)

			recs, err := Decode(buf, l)
			require.NoError(t, err)
			require.Len(t, recs, 2)

			r := recs[0]
			assert.Equal(t, 2, r.Index)
			assert.Equal(t, uint32(FlagUp|FlagGateway), r.Flags)
			require.NotNil(t, r.Dst)
			require.NotNil(t, r.Gateway)
			assert.Equal(t, "0.0.0.0", r.Dst.IP.String())
			assert.Equal(t, "192.168.1.1", r.Gateway.IP.String())
			assert.Nil(t, r.Netmask)
			assert.Nil(t, r.Genmask)
			assert.Nil(t, r.IfName)
			assert.Nil(t, r.IfAddr)
			assert.Nil(t, r.Author)
			assert.Nil(t, r.Brd)

			assert.Equal(t, "127.0.0.1", recs[1].Dst.IP.String())
			assert.Nil(t, recs[1].Gateway)
		})
	}
}

func TestDecodeCanonicalOrder(t *testing.T) {
	l := LayoutFreeBSD
	msg := message(l, 3, FlagUp, AddrDst|AddrNetmask|AddrIfAddr, 0,
		inet(10, 0, 0, 0), inet(255, 0, 0, 0), inet(10, 0, 0, 1))

	recs, err := Decode(msg, l)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "10.0.0.0", recs[0].Dst.IP.String())
	assert.Equal(t, "255.0.0.0", recs[0].Netmask.IP.String())
	assert.Equal(t, "10.0.0.1", recs[0].IfAddr.IP.String())
	assert.Nil(t, recs[0].Gateway)
}

func TestDecodeLinkAddress(t *testing.T) {
	l := LayoutDarwin
	dl := make([]byte, 16)
	dl[0], dl[1] = 20, familyLink
	binary.NativeEndian.PutUint16(dl[2:], 4)
	dl[5] = 3
	copy(dl[8:], "en0")

	recs, err := Decode(message(l, 4, FlagUp, AddrDst|AddrGateway, 0, inet(10, 1, 0, 0), dl), l)
	require.NoError(t, err)
	assert.Equal(t, 4, recs[0].Gateway.Index)
	assert.Equal(t, "en0", recs[0].Gateway.Name)
	assert.False(t, recs[0].Gateway.IP.IsValid())
}

func TestDecodeEmptyBuffer(t *testing.T) {
	recs, err := Decode(nil, LayoutFreeBSD)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	l := LayoutFreeBSD
	full := message(l, 1, FlagUp, AddrDst, 0, inet(1, 2, 3, 4))

	_, err := Decode(full[:l.HeaderSize-1], l)
	assert.ErrorIs(t, err, core.ErrBadData)

	_, err = Decode(full[:10], l)
	assert.ErrorIs(t, err, core.ErrBadData)
}

func TestDecodeRejectsBadLengths(t *testing.T) {
	l := LayoutFreeBSD

	short := message(l, 1, FlagUp, 0, 0)
	binary.NativeEndian.PutUint16(short[0:2], uint16(l.HeaderSize-1))
	_, err := Decode(short, l)
	assert.ErrorIs(t, err, core.ErrBadData)

	long := message(l, 1, FlagUp, AddrDst, 0, inet(1, 2, 3, 4))
	binary.NativeEndian.PutUint16(long[0:2], uint16(len(long)+1))
	_, err = Decode(long, l)
	assert.ErrorIs(t, err, core.ErrBadData)

	// bits promise three addresses, the message carries one
	greedy := message(l, 1, FlagUp, AddrDst|AddrGateway|AddrNetmask, 0, inet(1, 2, 3, 4))
	_, err = Decode(greedy, l)
	assert.ErrorIs(t, err, core.ErrBadData)
}

func TestDecodeOpenBSDHeaderLength(t *testing.T) {
	l := LayoutOpenBSD
	msg := message(l, 1, FlagUp, AddrDst, 0, inet(1, 2, 3, 4))
	binary.NativeEndian.PutUint16(msg[l.HdrlenOff:], uint16(len(msg)+8))

	_, err := Decode(msg, l)
	assert.ErrorIs(t, err, core.ErrBadData)
}

func TestDecodeNeverPanicsOnNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		buf := make([]byte, rng.Intn(400))
		rng.Read(buf)
		for _, l := range []Layout{LayoutFreeBSD, LayoutDarwin, LayoutNetBSD, LayoutOpenBSD} {
			assert.NotPanics(t, func() { _, _ = Decode(buf, l) })
		}
	}
}

func TestRecordString(t *testing.T) {
	r := Record{Index: 2, Flags: FlagUp | FlagGateway, Dst: &Addr{Family: familyInet}, Interface: "em0"}
	assert.Contains(t, r.String(), "dev em0 flags UG")
	assert.Contains(t, r.String(), "via -")
}
