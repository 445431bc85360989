package tuntap

import (
	"errors"
	"io"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("TAP")
	require.NoError(t, err)
	assert.Equal(t, KindTap, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindTun, k)

	_, err = ParseKind("tan")
	assert.ErrorIs(t, err, core.ErrBadArguments)
	assert.Equal(t, "tap", KindTap.String())
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		multi bool
		want  error
	}{
		{"valid", Options{Name: "t0", Queues: 1}, false, nil},
		{"empty name", Options{Queues: 1}, true, core.ErrBadArguments},
		{"name too long", Options{Name: "sixteen-chars-xx", Queues: 1}, true, core.ErrNameTooLong},
		{"longest name", Options{Name: "fifteen-chars-x", Queues: 1}, true, nil},
		{"no queues", Options{Name: "t0"}, true, core.ErrBadArguments},
		{"multi-queue unsupported", Options{Name: "t0", Queues: 2}, false, core.ErrBadArguments},
		{"multi-queue", Options{Name: "t0", Queues: 4}, true, nil},
		{"bad kind", Options{Name: "t0", Kind: Kind(9), Queues: 1}, true, core.ErrBadArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate(tt.multi)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

type countingPolicy struct {
	calls atomic.Int32
	last  atomic.Value
}

func (p *countingPolicy) CloseQueue(info Info, dev io.Closer) error {
	p.calls.Add(1)
	p.last.Store(info)
	return dev.Close()
}

func TestClosePolicyRunsOnceAfterLastHandle(t *testing.T) {
	policy := &countingPolicy{}
	dev := NewMemDevice("t0", 4, false)
	vi := NewVirtualInterface(Info{Name: "t0", Kind: KindTap}, policy, dev)

	q, ok := vi.PopQueue()
	require.True(t, ok)
	clone, err := q.Clone()
	require.NoError(t, err)

	require.NoError(t, q.Close())
	assert.Equal(t, int32(0), policy.calls.Load())

	// the clone still works after the original is closed
	_, err = clone.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	_, err = q.Write([]byte{1})
	assert.ErrorIs(t, err, core.ErrClosed)

	require.NoError(t, clone.Close())
	require.NoError(t, clone.Close())
	require.NoError(t, q.Close())
	assert.Equal(t, int32(1), policy.calls.Load())
	assert.Equal(t, Info{Name: "t0", Kind: KindTap}, policy.last.Load())

	_, err = dev.Read(make([]byte, 8))
	assert.ErrorIs(t, err, io.EOF)

	_, err = clone.Clone()
	assert.ErrorIs(t, err, core.ErrClosed)
	_, ok = q.Info()
	assert.False(t, ok)
}

func TestClosePolicyErrorIsReturned(t *testing.T) {
	boom := errors.New("destroy failed")
	vi := NewVirtualInterface(Info{Name: "t0"}, ClosePolicyFunc(func(Info, io.Closer) error { return boom }), NewMemDevice("t0", 1, false))
	q, _ := vi.PopQueue()
	assert.ErrorIs(t, q.Close(), boom)
}

func TestVirtualInterfaceInfoIsObserved(t *testing.T) {
	vi := NewVirtualInterface(Info{Name: "t0", Kind: KindTun}, nil, NewMemDevice("t0", 1, false))

	info, ok := vi.Info()
	require.True(t, ok)
	assert.Equal(t, "t0", info.Name)
	assert.Equal(t, "t0", vi.Name())

	q, ok := vi.PopQueue()
	require.True(t, ok)
	qi, ok := q.Info()
	require.True(t, ok)
	assert.Equal(t, info, qi)

	require.NoError(t, q.Close())

	assert.Eventually(t, func() bool {
		runtime.GC()
		_, ok := vi.Info()
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, vi.Name())
}

func TestVirtualInterfaceQueues(t *testing.T) {
	d0 := NewMemDevice("q0", 1, false)
	d1 := NewMemDevice("q1", 1, false)
	vi := NewVirtualInterface(Info{Name: "mq0"}, nil, d0, d1)
	assert.Equal(t, 2, vi.Queues())

	q, ok := vi.PopQueue()
	require.True(t, ok)
	assert.Same(t, d1, q.Device())
	assert.Equal(t, 1, vi.Queues())

	require.NoError(t, vi.Close())
	assert.Equal(t, 0, vi.Queues())
	_, ok = vi.PopQueue()
	assert.False(t, ok)

	_, err := d0.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF, "remaining queue closed")
	_, err = q.Write([]byte{1})
	assert.NoError(t, err, "popped queue untouched")
	require.NoError(t, q.Close())
}
