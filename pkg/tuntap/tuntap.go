package tuntap

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifstructs"
)

// Kind selects a layer 3 (tun) or layer 2 (tap) device.
type Kind int

const (
	KindTun Kind = iota
	KindTap
)

func (k Kind) String() string {
	if k == KindTap {
		return "tap"
	}
	return "tun"
}

// ParseKind accepts "tun" and "tap"; an empty string means tun.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tun":
		return KindTun, nil
	case "tap":
		return KindTap, nil
	}
	return KindTun, fmt.Errorf("%w: unknown interface kind %q", core.ErrBadArguments, s)
}

// Info describes the interface a queue belongs to.
type Info struct {
	Name string
	Kind Kind

	// HeaderLen is the size of the address family prefix the platform puts
	// in front of every tun frame (4 on utun and multi-af BSD tun, else 0).
	HeaderLen int
}

// infoBlock is shared by every queue of one interface. Queues hold it
// strongly; VirtualInterface only observes it.
type infoBlock struct {
	mu   sync.Mutex
	info Info
}

func (b *infoBlock) get() Info {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.info
}

// ClosePolicy tears a queue down once its last handle is closed. It
// receives the device and must close it.
type ClosePolicy interface {
	CloseQueue(info Info, dev io.Closer) error
}

// ClosePolicyFunc adapts a function to ClosePolicy.
type ClosePolicyFunc func(info Info, dev io.Closer) error

func (f ClosePolicyFunc) CloseQueue(info Info, dev io.Closer) error { return f(info, dev) }

// CloseDevice only closes the device; the kernel removes the interface
// with its last descriptor.
var CloseDevice ClosePolicy = ClosePolicyFunc(func(_ Info, dev io.Closer) error { return dev.Close() })

// handle is the single owner of an open device. Queue values share it.
type handle struct {
	dev    io.ReadWriteCloser
	policy ClosePolicy
	info   atomic.Pointer[infoBlock]

	mu   sync.Mutex
	refs int
	err  error
}

func (h *handle) acquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refs == 0 {
		return false
	}
	h.refs++
	return true
}

func (h *handle) release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refs--
	if h.refs > 0 {
		return nil
	}
	blk := h.info.Swap(nil)
	h.err = h.policy.CloseQueue(blk.get(), h.dev)
	return h.err
}

// Queue is one open device descriptor of a virtual interface. Clones share
// the descriptor; each clone is closed on its own and the close policy runs
// when the last one goes.
type Queue struct {
	h      *handle
	closed atomic.Bool
	split  atomic.Bool
}

func newQueue(dev io.ReadWriteCloser, blk *infoBlock, policy ClosePolicy) *Queue {
	if policy == nil {
		policy = CloseDevice
	}
	h := &handle{dev: dev, policy: policy, refs: 1}
	h.info.Store(blk)
	return &Queue{h: h}
}

// Read reads one frame from the device.
func (q *Queue) Read(p []byte) (int, error) {
	if q.closed.Load() {
		return 0, core.ErrClosed
	}
	return q.h.dev.Read(p)
}

// Write writes one frame to the device.
func (q *Queue) Write(p []byte) (int, error) {
	if q.closed.Load() {
		return 0, core.ErrClosed
	}
	return q.h.dev.Write(p)
}

// Clone returns another handle on the same descriptor.
func (q *Queue) Clone() (*Queue, error) {
	if q.closed.Load() || !q.h.acquire() {
		return nil, core.ErrClosed
	}
	return &Queue{h: q.h}, nil
}

// Info returns the interface metadata while the descriptor is open.
func (q *Queue) Info() (Info, bool) {
	blk := q.h.info.Load()
	if blk == nil {
		return Info{}, false
	}
	return blk.get(), true
}

// Device returns the underlying device.
func (q *Queue) Device() io.ReadWriteCloser { return q.h.dev }

// Close releases this handle. Closing twice is a no-op.
func (q *Queue) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	return q.h.release()
}

// VirtualInterface is a freshly created interface and the queues that
// have not been handed out yet.
type VirtualInterface struct {
	mu     sync.Mutex
	queues []*Queue
	info   weak.Pointer[infoBlock]
}

// NewVirtualInterface wraps already open devices as the queues of one
// interface. Platform factories and tests build on it.
func NewVirtualInterface(info Info, policy ClosePolicy, devs ...io.ReadWriteCloser) *VirtualInterface {
	blk := &infoBlock{info: info}
	v := &VirtualInterface{info: weak.Make(blk)}
	for _, d := range devs {
		v.queues = append(v.queues, newQueue(d, blk, policy))
	}
	return v
}

// Queues returns how many queues are still held by v.
func (v *VirtualInterface) Queues() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.queues)
}

// PopQueue hands the last remaining queue to the caller, who then owns it.
func (v *VirtualInterface) PopQueue() (*Queue, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.queues) == 0 {
		return nil, false
	}
	q := v.queues[len(v.queues)-1]
	v.queues = v.queues[:len(v.queues)-1]
	return q, true
}

// Info returns a copy of the interface metadata, or false once every queue
// referencing it has been closed and collected.
func (v *VirtualInterface) Info() (Info, bool) {
	blk := v.info.Value()
	if blk == nil {
		return Info{}, false
	}
	return blk.get(), true
}

// Name is a shorthand for Info().Name.
func (v *VirtualInterface) Name() string {
	info, _ := v.Info()
	return info.Name
}

// Close closes the queues still held by v. Popped queues are not affected.
func (v *VirtualInterface) Close() error {
	v.mu.Lock()
	qs := v.queues
	v.queues = nil
	v.mu.Unlock()

	var errs []error
	for _, q := range qs {
		if err := q.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options describes the interface to create.
type Options struct {
	// Name of the interface. Linux accepts templates like "tun%d". On probing
	// platforms "tun" or "tap" picks the first free unit and "tun3" asks for
	// unit 3.
	Name string

	Kind Kind

	// Queues is the number of descriptors to open. Only Linux supports more
	// than one.
	Queues int

	// Async puts descriptors in non-blocking mode so reads park in the
	// runtime poller and Close interrupts them.
	Async bool

	// Network is the CIDR the Windows TAP driver needs for tun mode.
	Network string
}

func (o Options) validate(multiQueue bool) error {
	if err := ifstructs.CheckName(o.Name); err != nil {
		return err
	}
	if o.Kind != KindTun && o.Kind != KindTap {
		return fmt.Errorf("%w: unknown interface kind %d", core.ErrBadArguments, int(o.Kind))
	}
	if o.Queues < 1 {
		return fmt.Errorf("%w: need at least one queue, got %d", core.ErrBadArguments, o.Queues)
	}
	if o.Queues > 1 && !multiQueue {
		return fmt.Errorf("%w: %d queues requested, multi-queue is not available on this platform", core.ErrBadArguments, o.Queues)
	}
	return nil
}

// closeAll closes devices opened before a creation step failed.
func closeAll(devs []io.ReadWriteCloser) {
	for _, d := range devs {
		_ = d.Close()
	}
}
