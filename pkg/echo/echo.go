// Package echo answers ICMPv4 echo requests arriving on a virtual
// interface, which makes a freshly created interface pingable without a
// userspace network stack behind it.
package echo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/irctrakz/netif/pkg/capture"
	"github.com/irctrakz/netif/pkg/logging"
	"github.com/irctrakz/netif/pkg/tuntap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const protocolICMP = 1

// Responder turns echo requests into echo replies.
type Responder struct {
	// HeaderLen is the platform prefix in front of every frame. It is copied
	// to the reply unchanged.
	HeaderLen int

	// Tap means frames are ethernet frames rather than raw IP.
	Tap bool

	answered atomic.Uint64
	ignored  atomic.Uint64
}

// New configures a responder for the interface described by info.
func New(info tuntap.Info) *Responder {
	return &Responder{HeaderLen: info.HeaderLen, Tap: info.Kind == tuntap.KindTap}
}

// Reply builds the echo reply for frame. It returns false for anything that
// is not a well formed ICMPv4 echo request.
func (r *Responder) Reply(frame []byte) ([]byte, bool) {
	if len(frame) <= r.HeaderLen {
		return nil, false
	}
	prefix, body := frame[:r.HeaderLen], frame[r.HeaderLen:]

	first := layers.LayerTypeIPv4
	if r.Tap {
		first = layers.LayerTypeEthernet
	}
	pkt := gopacket.NewPacket(body, first, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	ip, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok || ip.Protocol != layers.IPProtocolICMPv4 || ip.Flags&layers.IPv4MoreFragments != 0 || ip.FragOffset != 0 {
		return nil, false
	}
	msg, err := icmp.ParseMessage(protocolICMP, ip.Payload)
	if err != nil || msg.Type != ipv4.ICMPTypeEcho {
		return nil, false
	}
	echo, ok := msg.Body.(*icmp.Echo)
	if !ok {
		return nil, false
	}

	reply, err := (&icmp.Message{Type: ipv4.ICMPTypeEchoReply, Body: echo}).Marshal(nil)
	if err != nil {
		return nil, false
	}
	out := []gopacket.SerializableLayer{
		&layers.IPv4{
			Version:  4,
			IHL:      5,
			TOS:      ip.TOS,
			Id:       ip.Id,
			TTL:      64,
			Protocol: layers.IPProtocolICMPv4,
			SrcIP:    ip.DstIP,
			DstIP:    ip.SrcIP,
		},
		gopacket.Payload(reply),
	}
	if r.Tap {
		eth, ok := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
		if !ok {
			return nil, false
		}
		out = append([]gopacket.SerializableLayer{&layers.Ethernet{
			SrcMAC:       eth.DstMAC,
			DstMAC:       eth.SrcMAC,
			EthernetType: layers.EthernetTypeIPv4,
		}}, out...)
	}

	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}, out...); err != nil {
		return nil, false
	}
	return append(append(make([]byte, 0, len(prefix)+len(buf.Bytes())), prefix...), buf.Bytes()...), true
}

// Serve answers requests read from p until ctx is done or the pipeline
// stops. A pipeline that stopped because its device closed is not an error.
func (r *Responder) Serve(ctx context.Context, p *tuntap.Pipeline) error {
	log := logging.For("echo")
	for {
		frame, err := p.Recv(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("echo: %w", err)
		}
		reply, ok := r.Reply(frame)
		if !ok {
			r.ignored.Add(1)
			if logging.IsDebug() {
				log.Debugf("ignored %s", capture.Summary(frame[min(r.HeaderLen, len(frame)):], r.Tap))
			}
			continue
		}
		if err := p.Send(ctx, reply); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("echo: %w", err)
		}
		r.answered.Add(1)
	}
}

// Stats returns how many requests were answered and how many frames were
// not echo requests.
func (r *Responder) Stats() (answered, ignored uint64) {
	return r.answered.Load(), r.ignored.Load()
}
