package tuntap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/logging"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultCapacity bounds both frame channels.
	DefaultCapacity = 4
	// DefaultReserve is the size of one read buffer reservation.
	DefaultReserve = 65536
	// DefaultMinFree is the free space below which a new reservation is made.
	// It has to hold the largest frame the device can return.
	DefaultMinFree = 2000

	minBackoff = time.Millisecond
	maxBackoff = 50 * time.Millisecond
)

// PipelineOptions tunes a Pipeline. Zero values take the defaults.
type PipelineOptions struct {
	Capacity int
	Reserve  int
	MinFree  int

	// Tap sees every frame in both directions. It runs on the pipeline
	// goroutines and must not retain the slice.
	Tap func(frame []byte, dir core.Direction)
}

func (o *PipelineOptions) setDefaults() {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.MinFree <= 0 {
		o.MinFree = DefaultMinFree
	}
	if o.Reserve < o.MinFree {
		o.Reserve = DefaultReserve
	}
	if o.Reserve < o.MinFree {
		o.Reserve = o.MinFree
	}
}

// Pipeline turns one blocking device into two bounded frame streams. A
// reader goroutine pushes device frames to Outgoing; a writer goroutine
// writes frames passed to Send. A full channel blocks the side feeding it.
type Pipeline struct {
	r       io.Reader
	w       io.Writer
	closers []io.Closer
	opts    PipelineOptions
	log     *logrus.Entry

	out chan []byte
	in  chan []byte

	sendClosed chan struct{}
	sendOnce   sync.Once
	stop       chan struct{}
	stopOnce   sync.Once

	done       chan struct{} // reader exited
	writerDone chan struct{}

	errMu sync.Mutex
	err   error

	counters core.Counters
}

// Split consumes q and starts a pipeline over it. The reader uses q, the
// writer a clone of it; Close releases both.
func Split(q *Queue, opts PipelineOptions) (*Pipeline, error) {
	if !q.split.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: queue already split", core.ErrBadArguments)
	}
	wq, err := q.Clone()
	if err != nil {
		return nil, err
	}
	p := newPipeline(q, wq, opts)
	if info, ok := q.Info(); ok {
		p.log = p.log.WithField("iface", info.Name)
	}
	p.closers = []io.Closer{q, wq}
	p.start()
	return p, nil
}

// NewPipeline starts a pipeline over arbitrary handles. Close closes r and
// w when they implement io.Closer.
func NewPipeline(r io.Reader, w io.Writer, opts PipelineOptions) *Pipeline {
	p := newPipeline(r, w, opts)
	for _, x := range []any{r, w} {
		if c, ok := x.(io.Closer); ok {
			p.closers = append(p.closers, c)
		}
	}
	p.start()
	return p
}

func newPipeline(r io.Reader, w io.Writer, opts PipelineOptions) *Pipeline {
	opts.setDefaults()
	return &Pipeline{
		r:          r,
		w:          w,
		opts:       opts,
		log:        logging.For("pipeline"),
		out:        make(chan []byte, opts.Capacity),
		in:         make(chan []byte, opts.Capacity),
		sendClosed: make(chan struct{}),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

func (p *Pipeline) start() {
	go p.readLoop()
	go p.writeLoop()
}

func (p *Pipeline) readLoop() {
	defer close(p.done)
	defer close(p.out)

	buf := p.reserve()
	backoff := minBackoff
	for {
		n, err := p.r.Read(buf)
		if n > 0 {
			frame := buf[:n:n]
			buf = buf[n:]
			if len(buf) < p.opts.MinFree {
				buf = p.reserve()
			}
			p.counters.FramesRead.Add(1)
			p.counters.BytesRead.Add(uint64(n))
			if p.opts.Tap != nil {
				p.opts.Tap(frame, core.Inbound)
			}
			select {
			case p.out <- frame:
			case <-p.stop:
				return
			}
			backoff = minBackoff
			continue
		}
		if err == nil || isTemporary(err) {
			// no data yet
			p.counters.ReadRetries.Add(1)
			select {
			case <-time.After(backoff):
			case <-p.stop:
				return
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		if !isClosed(err) {
			p.setErr(fmt.Errorf("read: %w", err))
			p.log.WithError(err).Warn("device read failed, stopping pipeline")
		} else {
			p.log.Debug("device closed, reader exiting")
		}
		return
	}
}

func (p *Pipeline) reserve() []byte {
	p.counters.Reservations.Add(1)
	return make([]byte, p.opts.Reserve)
}

func (p *Pipeline) writeLoop() {
	defer close(p.writerDone)
	for {
		select {
		case frame := <-p.in:
			p.write(frame)
		case <-p.sendClosed:
			for {
				select {
				case frame := <-p.in:
					p.write(frame)
				default:
					return
				}
			}
		case <-p.done:
			return
		case <-p.stop:
			return
		}
	}
}

func (p *Pipeline) write(frame []byte) {
	if p.opts.Tap != nil {
		p.opts.Tap(frame, core.Outbound)
	}
	if _, err := p.w.Write(frame); err != nil {
		p.counters.WriteErrors.Add(1)
		if logging.IsDebug() {
			p.log.WithError(err).Debugf("dropped %d byte frame", len(frame))
		}
		return
	}
	p.counters.FramesWritten.Add(1)
	p.counters.BytesWritten.Add(uint64(len(frame)))
}

// Send queues frame for the device. It blocks while the incoming channel is
// full and fails with ErrClosed after CloseSend, Close or once the reader
// stopped.
// The pipeline owns frame after a successful Send.
func (p *Pipeline) Send(ctx context.Context, frame []byte) error {
	select {
	case <-p.sendClosed:
		return core.ErrClosed
	case <-p.done:
		return core.ErrClosed
	case <-p.stop:
		return core.ErrClosed
	default:
	}
	select {
	case p.in <- frame:
		return nil
	case <-p.sendClosed:
		return core.ErrClosed
	case <-p.done:
		return core.ErrClosed
	case <-p.stop:
		return core.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv returns the next frame read from the device. After the reader
// stopped it returns io.EOF, or the read error that stopped it.
func (p *Pipeline) Recv(ctx context.Context) ([]byte, error) {
	select {
	case frame, ok := <-p.out:
		if !ok {
			if err := p.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Outgoing is the device to caller channel. It is closed when the reader
// stops.
func (p *Pipeline) Outgoing() <-chan []byte { return p.out }

// CloseSend stops the writer once the frames already queued are written.
func (p *Pipeline) CloseSend() {
	p.sendOnce.Do(func() { close(p.sendClosed) })
}

// Done is closed when the reader stops, because the device was closed or
// failed.
func (p *Pipeline) Done() <-chan struct{} { return p.done }

// Close stops both goroutines and closes the device handles. It waits for
// the writer; the reader exits once the device read returns.
func (p *Pipeline) Close() error {
	var errs []error
	p.stopOnce.Do(func() {
		close(p.stop)
		for _, c := range p.closers {
			if err := c.Close(); err != nil && !isClosed(err) {
				errs = append(errs, err)
			}
		}
	})
	<-p.writerDone
	return errors.Join(errs...)
}

// Wait blocks until both goroutines have exited and returns the error that
// stopped the reader, if any.
func (p *Pipeline) Wait() error {
	<-p.done
	<-p.writerDone
	return p.Err()
}

// Err returns the read error that stopped the pipeline.
func (p *Pipeline) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

func (p *Pipeline) setErr(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

// Metrics returns a snapshot of the pipeline counters.
func (p *Pipeline) Metrics() core.PipelineMetrics { return p.counters.Snapshot() }

func isTemporary(err error) bool {
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return true
	}
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR)
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || errors.Is(err, core.ErrClosed)
}
