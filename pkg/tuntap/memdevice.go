package tuntap

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/logging"
)

// MemDevice is an in-memory stand-in for a tun descriptor, for tests and
// benchmarks that must run without privileges. Injected frames are returned
// by Read one at a time; written frames are recorded and, with Loopback,
// fed back to the read side.
type MemDevice struct {
	name     string
	loopback bool

	inbox  chan []byte
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	written [][]byte

	metrics struct {
		injected, read, written atomic.Uint64
	}
}

// NewMemDevice creates a device whose inbox holds up to backlog frames.
func NewMemDevice(name string, backlog int, loopback bool) *MemDevice {
	return &MemDevice{
		name:     name,
		loopback: loopback,
		inbox:    make(chan []byte, backlog),
		closed:   make(chan struct{}),
	}
}

// Name returns the device name.
func (m *MemDevice) Name() string { return m.name }

// Inject queues a frame for Read. It fails when the inbox is full.
func (m *MemDevice) Inject(frame []byte) error {
	dataCopy := append([]byte(nil), frame...)
	select {
	case <-m.closed:
		return core.ErrClosed
	default:
	}
	select {
	case m.inbox <- dataCopy:
		m.metrics.injected.Add(1)
		return nil
	default:
		return fmt.Errorf("mem device %s: inbox full, frame dropped", m.name)
	}
}

// Read blocks for the next injected frame. A frame larger than p is
// truncated, like a datagram read.
func (m *MemDevice) Read(p []byte) (int, error) {
	select {
	case frame := <-m.inbox:
		m.metrics.read.Add(1)
		return copy(p, frame), nil
	case <-m.closed:
		return 0, io.EOF
	}
}

// Write records frame and, for a loopback device, injects it back.
func (m *MemDevice) Write(p []byte) (int, error) {
	select {
	case <-m.closed:
		return 0, core.ErrClosed
	default:
	}
	dataCopy := append([]byte(nil), p...)
	m.mu.Lock()
	m.written = append(m.written, dataCopy)
	m.mu.Unlock()
	m.metrics.written.Add(1)

	if m.loopback {
		if err := m.Inject(dataCopy); err != nil {
			return 0, err
		}
	}
	logging.Debugf("mem device %s wrote frame of length %d", m.name, len(p))
	return len(p), nil
}

// Written returns copies of all frames written so far.
func (m *MemDevice) Written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.written))
	for i, f := range m.written {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// ClearWritten forgets recorded frames.
func (m *MemDevice) ClearWritten() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = nil
}

// Counts returns the number of injected, read and written frames.
func (m *MemDevice) Counts() (injected, read, written uint64) {
	return m.metrics.injected.Load(), m.metrics.read.Load(), m.metrics.written.Load()
}

// Close unblocks pending reads. Closing twice is a no-op.
func (m *MemDevice) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}
