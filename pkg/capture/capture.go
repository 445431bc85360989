// Package capture tees pipeline frames into a PCAP file and renders short
// frame summaries for debug logs.
package capture

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/logging"
)

const snaplen = 65535

// LinkType returns the PCAP link type of a tun (raw IP) or tap (ethernet)
// device.
func LinkType(tap bool) layers.LinkType {
	if tap {
		return layers.LinkTypeEthernet
	}
	return layers.LinkTypeRaw
}

// Writer appends frames to a PCAP stream. It is safe for concurrent use by
// the reader and writer goroutines of a pipeline.
type Writer struct {
	mu     sync.Mutex
	w      *pcapgo.Writer
	closer io.Closer
	now    func() time.Time

	// Dir limits capture to one direction when set.
	Dir *core.Direction

	written atomic.Uint64
	failed  atomic.Uint64
}

// New writes the PCAP file header to w.
func New(w io.Writer, lt layers.LinkType) (*Writer, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snaplen, lt); err != nil {
		return nil, fmt.Errorf("pcap header: %w", err)
	}
	cw := &Writer{w: pw, now: time.Now}
	if c, ok := w.(io.Closer); ok {
		cw.closer = c
	}
	return cw, nil
}

// Create truncates path and starts a capture in it.
func Create(path string, lt layers.LinkType) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := New(f, lt)
	if err != nil {
		f.Close()
		return nil, err
	}
	logging.For("capture").WithField("file", path).Info("pcap capture started")
	return w, nil
}

// Tap records one frame. Its signature matches tuntap.PipelineOptions.Tap.
func (c *Writer) Tap(frame []byte, dir core.Direction) {
	if len(frame) == 0 || (c.Dir != nil && *c.Dir != dir) {
		return
	}
	n := len(frame)
	if n > snaplen {
		n = snaplen
	}
	ci := gopacket.CaptureInfo{Timestamp: c.now(), CaptureLength: n, Length: len(frame)}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w == nil {
		return
	}
	if err := c.w.WritePacket(ci, frame[:n]); err != nil {
		if c.failed.Add(1) == 1 {
			logging.For("capture").WithError(err).Warn("pcap write failed")
		}
		return
	}
	c.written.Add(1)
}

// Stats returns how many frames were written and how many failed.
func (c *Writer) Stats() (written, failed uint64) {
	return c.written.Load(), c.failed.Load()
}

// Close stops the capture and closes the underlying file, if any.
func (c *Writer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w = nil
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// Summary decodes frame far enough for a one line description, e.g.
// "IPv4 10.0.0.2 > 10.0.0.1 ICMPv4 EchoRequest len=64".
func Summary(frame []byte, tap bool) string {
	first := layers.LayerTypeIPv4
	if tap {
		first = layers.LayerTypeEthernet
	} else if len(frame) > 0 && frame[0]>>4 == 6 {
		first = layers.LayerTypeIPv6
	}
	pkt := gopacket.NewPacket(frame, first, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	var s string
	if nl := pkt.NetworkLayer(); nl != nil {
		src, dst := nl.NetworkFlow().Endpoints()
		s = fmt.Sprintf("%s %s > %s", nl.LayerType(), src, dst)
	} else if ll := pkt.LinkLayer(); ll != nil {
		src, dst := ll.LinkFlow().Endpoints()
		s = fmt.Sprintf("%s %s > %s", ll.LayerType(), src, dst)
	} else {
		s = "unknown"
	}
	if icmp, ok := pkt.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4); ok {
		s += " ICMPv4 " + icmp.TypeCode.String()
	}
	if tl := pkt.TransportLayer(); tl != nil {
		src, dst := tl.TransportFlow().Endpoints()
		s += fmt.Sprintf(" %s %s > %s", tl.LayerType(), src, dst)
	}
	return fmt.Sprintf("%s len=%d", s, len(frame))
}
