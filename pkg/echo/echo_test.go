package echo

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/irctrakz/netif/pkg/tuntap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hostMAC  = net.HardwareAddr{0x02, 0, 0, 0, 0, 1}
	guestMAC = net.HardwareAddr{0x02, 0, 0, 0, 0, 2}
)

func buildFrame(t *testing.T, tap bool, typ uint8, proto layers.IPProtocol) []byte {
	t.Helper()
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Id:       0x1234,
		Protocol: proto,
		SrcIP:    net.IPv4(10, 200, 0, 2),
		DstIP:    net.IPv4(10, 200, 0, 1),
	}
	var ls []gopacket.SerializableLayer
	if tap {
		ls = append(ls, &layers.Ethernet{SrcMAC: guestMAC, DstMAC: hostMAC, EthernetType: layers.EthernetTypeIPv4})
	}
	ls = append(ls, ip)
	if proto == layers.IPProtocolICMPv4 {
		ls = append(ls, &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(typ, 0), Id: 7, Seq: 3})
	}
	ls = append(ls, gopacket.Payload([]byte("0123456789abcdef0123456789abcdef0123")))

	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}, ls...))
	return buf.Bytes()
}

func checkReply(t *testing.T, reply []byte, tap bool, request []byte) {
	t.Helper()
	first := layers.LayerTypeIPv4
	if tap {
		first = layers.LayerTypeEthernet
	}
	pkt := gopacket.NewPacket(reply, first, gopacket.Default)
	require.Nil(t, pkt.ErrorLayer())

	ip := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	assert.Equal(t, "10.200.0.1", ip.SrcIP.String())
	assert.Equal(t, "10.200.0.2", ip.DstIP.String())

	icmp := pkt.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
	assert.Equal(t, uint8(layers.ICMPv4TypeEchoReply), icmp.TypeCode.Type())
	assert.Equal(t, uint16(7), icmp.Id)
	assert.Equal(t, uint16(3), icmp.Seq)
	assert.Equal(t, []byte("0123456789abcdef0123456789abcdef0123"), icmp.Payload)
	assert.Len(t, reply, len(request))

	if tap {
		eth := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
		assert.Equal(t, hostMAC, eth.SrcMAC)
		assert.Equal(t, guestMAC, eth.DstMAC)
	}
}

func TestReplyTun(t *testing.T) {
	req := buildFrame(t, false, layers.ICMPv4TypeEchoRequest, layers.IPProtocolICMPv4)
	r := New(tuntap.Info{Kind: tuntap.KindTun})

	reply, ok := r.Reply(req)
	require.True(t, ok)
	checkReply(t, reply, false, req)
}

func TestReplyTap(t *testing.T) {
	req := buildFrame(t, true, layers.ICMPv4TypeEchoRequest, layers.IPProtocolICMPv4)
	r := New(tuntap.Info{Kind: tuntap.KindTap})

	reply, ok := r.Reply(req)
	require.True(t, ok)
	checkReply(t, reply, true, req)
}

func TestReplyKeepsFamilyHeader(t *testing.T) {
	req := append([]byte{0, 0, 0, 2}, buildFrame(t, false, layers.ICMPv4TypeEchoRequest, layers.IPProtocolICMPv4)...)
	r := New(tuntap.Info{Kind: tuntap.KindTun, HeaderLen: 4})

	reply, ok := r.Reply(req)
	require.True(t, ok)
	assert.Equal(t, []byte{0, 0, 0, 2}, reply[:4])
	checkReply(t, reply[4:], false, req[4:])
}

func TestReplyIgnores(t *testing.T) {
	r := &Responder{}
	tests := map[string][]byte{
		"empty":      nil,
		"garbage":    {0x45, 0x00, 0x01},
		"echo reply": buildFrame(t, false, layers.ICMPv4TypeEchoReply, layers.IPProtocolICMPv4),
		"udp":        buildFrame(t, false, 0, layers.IPProtocolUDP),
		"ipv6":       {0x60, 0, 0, 0, 0, 0, 58, 64},
	}
	for name, frame := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := r.Reply(frame)
			assert.False(t, ok)
		})
	}
}

func TestServe(t *testing.T) {
	dev := tuntap.NewMemDevice("t0", 4, false)
	p := tuntap.NewPipeline(dev, dev, tuntap.PipelineOptions{})
	r := &Responder{}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- r.Serve(ctx, p) }()

	req := buildFrame(t, false, layers.ICMPv4TypeEchoRequest, layers.IPProtocolICMPv4)
	require.NoError(t, dev.Inject(req))
	require.NoError(t, dev.Inject([]byte{0x45, 0, 0}))

	require.Eventually(t, func() bool {
		_, ignored := r.Stats()
		return len(dev.Written()) == 1 && ignored == 1
	}, 2*time.Second, 5*time.Millisecond)
	checkReply(t, dev.Written()[0], false, req)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	require.NoError(t, p.Close())
	answered, _ := r.Stats()
	assert.Equal(t, uint64(1), answered)
}
