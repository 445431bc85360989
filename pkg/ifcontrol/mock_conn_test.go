//go:build linux || darwin || freebsd || netbsd || openbsd

package ifcontrol

import (
	"sync"
	"unsafe"

	"github.com/irctrakz/netif/pkg/ifstructs"
	"golang.org/x/sys/unix"
)

// mockConn emulates the flag and MTU ioctls against an in-memory table and
// records every request it sees.
type mockConn struct {
	mu     sync.Mutex
	flags  map[string]ifstructs.Flags
	mtu    map[string]int
	calls  []uint
	extra  func(req uint, arg unsafe.Pointer) (bool, error)
	closed bool
}

func newMockConn() *mockConn {
	return &mockConn{flags: map[string]ifstructs.Flags{}, mtu: map[string]int{}}
}

func (m *mockConn) Ioctl(req uint, arg unsafe.Pointer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.extra != nil {
		if handled, err := m.extra(req, arg); handled {
			return err
		}
	}
	r := (*ifstructs.Ifreq)(arg)
	name, err := r.Name()
	if err != nil {
		return unix.EINVAL
	}
	if _, ok := m.flags[name]; !ok {
		return unix.ENXIO
	}
	switch req {
	case reqGetFlags:
		r.SetFlags(m.flags[name])
	case reqSetFlags:
		m.flags[name] = r.Flags()
	case reqGetMTU:
		r.SetMTU(m.mtu[name])
	case reqSetMTU:
		m.mtu[name] = r.MTU()
	default:
		return unix.ENOTTY
	}
	return nil
}

func (m *mockConn) Close() error {
	m.closed = true
	return nil
}

func (m *mockConn) count(req uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == req {
			n++
		}
	}
	return n
}
