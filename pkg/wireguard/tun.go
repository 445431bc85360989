//go:build !netbsd

package wireguard

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/logging"
	"github.com/irctrakz/netif/pkg/tuntap"
	wtun "golang.zx2c4.com/wireguard/tun"
)

// TUNMetrics exposes counters for the plaintext exchange with wireguard-go.
type TUNMetrics struct {
	PlaintextFromWG uint64 // bytes wireguard-go wrote towards the interface
	PlaintextToWG   uint64 // bytes read from the interface and handed to wireguard-go
	Truncated       uint64 // frames larger than the buffer wireguard-go offered
}

// PipelineTun lets wireguard-go use a virtual interface pipeline as its tun
// device: frames read from the interface are encrypted to peers, decrypted
// frames are written back to it.
type PipelineTun struct {
	p    *tuntap.Pipeline
	name string
	mtu  int

	events    chan wtun.Event
	closed    chan struct{}
	closeOnce sync.Once

	fromWG    atomic.Uint64
	toWG      atomic.Uint64
	truncated atomic.Uint64
}

var _ wtun.Device = (*PipelineTun)(nil)

// NewPipelineTun wraps p. The device reports itself up immediately.
func NewPipelineTun(name string, mtu int, p *tuntap.Pipeline) *PipelineTun {
	if mtu <= 0 {
		mtu = 1420
	}
	t := &PipelineTun{
		p:      p,
		name:   name,
		mtu:    mtu,
		events: make(chan wtun.Event, 2),
		closed: make(chan struct{}),
	}
	t.events <- wtun.EventUp
	return t
}

// File returns nil; the descriptor stays owned by the pipeline.
func (t *PipelineTun) File() *os.File { return nil }

// Read blocks for one frame, then takes more that are already queued, up
// to len(bufs).
func (t *PipelineTun) Read(bufs [][]byte, sizes []int, offset int) (int, error) {
	if len(bufs) == 0 {
		return 0, nil
	}
	var frame []byte
	var ok bool
	select {
	case <-t.closed:
		return 0, os.ErrClosed
	case frame, ok = <-t.p.Outgoing():
		if !ok {
			return 0, t.readErr()
		}
	}
	n := 0
	for {
		sizes[n] = t.place(bufs[n], offset, frame)
		n++
		if n == len(bufs) {
			return n, nil
		}
		select {
		case frame, ok = <-t.p.Outgoing():
			if !ok {
				return n, nil
			}
		default:
			return n, nil
		}
	}
}

func (t *PipelineTun) place(buf []byte, offset int, frame []byte) int {
	dst := buf[offset:]
	if len(frame) > len(dst) {
		t.truncated.Add(1)
	}
	n := copy(dst, frame)
	t.toWG.Add(uint64(n))
	return n
}

func (t *PipelineTun) readErr() error {
	if err := t.p.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

// Write queues every buffer for the interface; it blocks while the
// pipeline is full.
func (t *PipelineTun) Write(bufs [][]byte, offset int) (int, error) {
	select {
	case <-t.closed:
		return 0, os.ErrClosed
	default:
	}
	sent := 0
	for _, b := range bufs {
		if offset >= len(b) {
			continue
		}
		pkt := append([]byte(nil), b[offset:]...)
		if err := t.p.Send(context.Background(), pkt); err != nil {
			if errors.Is(err, core.ErrClosed) {
				return sent, os.ErrClosed
			}
			return sent, err
		}
		t.fromWG.Add(uint64(len(pkt)))
		sent++
	}
	return sent, nil
}

// MTU returns the plaintext MTU.
func (t *PipelineTun) MTU() (int, error) { return t.mtu, nil }

// Name returns the interface name.
func (t *PipelineTun) Name() (string, error) { return t.name, nil }

// Events reports EventUp once and EventDown on Close.
func (t *PipelineTun) Events() <-chan wtun.Event { return t.events }

// BatchSize is the capacity of the pipeline channels.
func (t *PipelineTun) BatchSize() int { return tuntap.DefaultCapacity }

// Close stops the pipeline. Closing twice is a no-op.
func (t *PipelineTun) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		t.events <- wtun.EventDown
		close(t.events)
		err = t.p.Close()
		logging.For("wireguard").WithField("iface", t.name).Debug("tun adapter closed")
	})
	return err
}

// Metrics returns a snapshot of counters.
func (t *PipelineTun) Metrics() TUNMetrics {
	return TUNMetrics{
		PlaintextFromWG: t.fromWG.Load(),
		PlaintextToWG:   t.toWG.Load(),
		Truncated:       t.truncated.Load(),
	}
}
