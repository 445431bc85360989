package capture

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/irctrakz/netif/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icmpEcho(t *testing.T) []byte {
	t.Helper()
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolICMPv4, SrcIP: net.IPv4(10, 0, 0, 2), DstIP: net.IPv4(10, 0, 0, 1)}
	icmp := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0), Id: 1, Seq: 1}
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}, ip, icmp, gopacket.Payload(make([]byte, 36))))
	return buf.Bytes()
}

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := New(&buf, LinkType(false))
	require.NoError(t, err)
	ts := time.Unix(1700000000, 0)
	w.now = func() time.Time { return ts }

	frame := icmpEcho(t)
	w.Tap(frame, core.Inbound)
	w.Tap(nil, core.Inbound)
	w.Tap(frame[:20], core.Outbound)
	require.NoError(t, w.Close())
	w.Tap(frame, core.Inbound)

	written, failed := w.Stats()
	assert.Equal(t, uint64(2), written)
	assert.Equal(t, uint64(0), failed)

	r, err := pcapgo.NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, layers.LinkTypeRaw, r.LinkType())

	data, ci, err := r.ReadPacketData()
	require.NoError(t, err)
	assert.Equal(t, frame, data)
	assert.Equal(t, 64, ci.Length)
	assert.True(t, ci.Timestamp.Equal(ts))

	data, _, err = r.ReadPacketData()
	require.NoError(t, err)
	assert.Len(t, data, 20)
}

func TestWriterDirectionFilter(t *testing.T) {
	var buf bytes.Buffer
	w, err := New(&buf, LinkType(true))
	require.NoError(t, err)
	out := core.Outbound
	w.Dir = &out

	w.Tap([]byte{1, 2, 3}, core.Inbound)
	w.Tap([]byte{4, 5, 6}, core.Outbound)
	written, _ := w.Stats()
	assert.Equal(t, uint64(1), written)
}

func TestCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t0.pcap")
	w, err := Create(path, LinkType(false))
	require.NoError(t, err)
	w.Tap(icmpEcho(t), core.Inbound)
	require.NoError(t, w.Close())

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(24+16+64), st.Size())
}

func TestSummary(t *testing.T) {
	s := Summary(icmpEcho(t), false)
	assert.True(t, strings.HasPrefix(s, "IPv4 10.0.0.2 > 10.0.0.1"), s)
	assert.Contains(t, s, "EchoRequest")
	assert.True(t, strings.HasSuffix(s, "len=64"), s)

	assert.Contains(t, Summary([]byte{0x00}, true), "len=1")
}
