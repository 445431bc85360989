//go:build linux || darwin || freebsd || openbsd

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"sync"
	"time"

	"github.com/irctrakz/netif/pkg/capture"
	"github.com/irctrakz/netif/pkg/config"
	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/echo"
	"github.com/irctrakz/netif/pkg/ifcontrol"
	"github.com/irctrakz/netif/pkg/logging"
	"github.com/irctrakz/netif/pkg/tuntap"
	wg "github.com/irctrakz/netif/pkg/wireguard"
	"github.com/sirupsen/logrus"
)

// daemon owns everything netifd creates and tears it down in reverse order.
type daemon struct {
	cfg  *config.Config
	log  *logrus.Entry
	ctl  *ifcontrol.Controller
	vi   *tuntap.VirtualInterface
	info tuntap.Info

	bridgeCreated bool
	capture       *capture.Writer
	pipes         []*tuntap.Pipeline
	responders    []*echo.Responder

	wgTun *wg.PipelineTun
	wgDev wg.DeviceHandle

	stopOnce sync.Once
}

func newDaemon(cfg *config.Config) (_ *daemon, err error) {
	d := &daemon{cfg: cfg, log: logging.For("netifd")}
	defer func() {
		if err != nil {
			if cerr := d.Close(); cerr != nil {
				d.log.WithError(cerr).Warn("cleanup after failed start")
			}
		}
	}()

	if d.ctl, err = ifcontrol.Open(); err != nil {
		return nil, err
	}
	opts, err := cfg.TunOptions()
	if err != nil {
		return nil, err
	}
	if d.vi, err = tuntap.Create(opts); err != nil {
		return nil, fmt.Errorf("create %s: %w", opts.Name, err)
	}
	d.info, _ = d.vi.Info()
	d.log = d.log.WithField("iface", d.info.Name)

	if err := d.configure(); err != nil {
		return nil, err
	}
	if err := d.setupBridge(); err != nil {
		return nil, err
	}
	if err := d.split(); err != nil {
		return nil, err
	}
	if cfg.WireGuard.Enabled {
		if err := d.startWireGuard(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// configure applies MTU, address and flags from the interface section.
func (d *daemon) configure() error {
	ic := d.cfg.Interface
	name := d.info.Name
	if ic.MTU > 0 {
		if err := d.ctl.SetMTU(name, ic.MTU); err != nil {
			return err
		}
	}
	if ic.Address != "" {
		prefix, err := netip.ParsePrefix(ic.Address)
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrBadArguments, err)
		}
		if err := d.ctl.AddAddr(name, prefix, netip.Addr{}); err != nil {
			return err
		}
	}
	if ic.Promiscuous {
		if err := d.ctl.SetPromiscuousMode(name, true); err != nil {
			return err
		}
	}
	if err := d.ctl.Up(name); err != nil {
		return err
	}
	flags, err := d.ctl.Flags(name)
	if err != nil {
		return err
	}
	mtu, _ := d.ctl.MTU(name)
	d.log.WithFields(logrus.Fields{"flags": flags, "mtu": mtu, "queues": d.vi.Queues()}).Info("interface configured")
	return nil
}

func (d *daemon) setupBridge() error {
	bc := d.cfg.Bridge
	if bc.Name == "" {
		return nil
	}
	if err := d.ctl.CreateBridge(bc.Name); err != nil {
		return err
	}
	d.bridgeCreated = true
	members := bc.Members
	if bc.AttachInterface {
		members = append(append([]string(nil), members...), d.info.Name)
	}
	for _, m := range members {
		if err := d.ctl.AddToBridge(bc.Name, m); err != nil {
			return err
		}
	}
	if err := d.ctl.Up(bc.Name); err != nil {
		return err
	}
	d.log.WithField("bridge", bc.Name).WithField("members", members).Info("bridge ready")
	return nil
}

// split turns every queue into a pipeline, with the capture tee attached.
func (d *daemon) split() error {
	opts := d.cfg.PipelineOptions()
	if path := d.cfg.Pipeline.PCAPFile; path != "" {
		w, err := capture.Create(path, capture.LinkType(d.info.Kind == tuntap.KindTap))
		if err != nil {
			return err
		}
		d.capture = w
		if d.info.HeaderLen == 0 {
			opts.Tap = w.Tap
		} else {
			hdr := d.info.HeaderLen
			opts.Tap = func(frame []byte, dir core.Direction) {
				if len(frame) > hdr {
					w.Tap(frame[hdr:], dir)
				}
			}
		}
	}
	for {
		q, ok := d.vi.PopQueue()
		if !ok {
			break
		}
		p, err := tuntap.Split(q, opts)
		if err != nil {
			q.Close()
			return err
		}
		d.pipes = append(d.pipes, p)
	}
	return nil
}

func (d *daemon) startWireGuard() error {
	if d.info.Kind != tuntap.KindTun || d.info.HeaderLen != 0 {
		return fmt.Errorf("%w: wireguard needs a raw IP tun device", core.ErrNotSupported)
	}
	mtu := d.cfg.Interface.MTU
	if mtu <= 0 {
		mtu, _ = d.ctl.MTU(d.info.Name)
	}
	d.wgTun = wg.NewPipelineTun(d.info.Name, mtu, d.pipes[0])

	var monitor time.Duration
	if iv := d.cfg.Metrics.Interval; iv != "" {
		monitor, _ = time.ParseDuration(iv)
	}
	dev, err := wg.StartDevice(wg.FromConfig(d.cfg.WireGuard, mtu), d.wgTun, wg.StartOptions{MonitorInterval: monitor})
	if err != nil {
		return fmt.Errorf("wireguard start: %w", err)
	}
	d.wgDev = dev
	return nil
}

// run serves the queues until ctx is done or every pipeline stopped. The
// first queue belongs to WireGuard when it is enabled.
func (d *daemon) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var workers sync.WaitGroup
	errs := make(chan error, len(d.pipes))
	pipes := d.pipes
	if d.wgTun != nil {
		pipes = pipes[1:]
	}
	for i, p := range pipes {
		workers.Add(1)
		serve := drain(d.info)
		if d.cfg.Pipeline.Echo {
			r := echo.New(d.info)
			d.responders = append(d.responders, r)
			serve = r.Serve
		}
		go func() {
			defer workers.Done()
			if err := serve(ctx, p); err != nil {
				d.log.WithField("queue", i).WithError(err).Warn("queue stopped")
				errs <- err
			}
		}()
	}
	if d.cfg.Metrics.Interval != "" || d.cfg.Metrics.Listen != "" {
		go newMetricsReporter(d).run(ctx)
	}
	d.log.WithField("pipelines", len(d.pipes)).Info("netifd running")

	select {
	case <-ctx.Done():
	case <-d.allDone():
		d.log.Warn("every pipeline stopped")
	}
	cancel()
	d.closePipelines()
	workers.Wait()
	close(errs)

	var all []error
	for err := range errs {
		all = append(all, err)
	}
	return errors.Join(all...)
}

// drain discards frames nobody answers, logging them at debug level.
func drain(info tuntap.Info) func(context.Context, *tuntap.Pipeline) error {
	log := logging.For("netifd").WithField("iface", info.Name)
	tap := info.Kind == tuntap.KindTap
	return func(ctx context.Context, p *tuntap.Pipeline) error {
		for {
			frame, err := p.Recv(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			if logging.IsDebug() && len(frame) > info.HeaderLen {
				log.Debug(capture.Summary(frame[info.HeaderLen:], tap))
			}
		}
	}
}

// allDone is closed once every pipeline's reader exited.
func (d *daemon) allDone() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		for _, p := range d.pipes {
			<-p.Done()
		}
		close(ch)
	}()
	return ch
}

func (d *daemon) closePipelines() {
	d.stopOnce.Do(func() {
		if d.wgDev != nil {
			if err := d.wgDev.Close(); err != nil {
				d.log.WithError(err).Warn("wireguard close")
			}
		}
		for _, p := range d.pipes {
			p.CloseSend()
			if err := p.Close(); err != nil {
				d.log.WithError(err).Warn("pipeline close")
			}
		}
	})
}

// Close releases everything that was set up. It is safe after a partial
// start and is called once.
func (d *daemon) Close() error {
	var errs []error
	d.closePipelines()
	if d.capture != nil {
		written, failed := d.capture.Stats()
		d.log.WithField("written", written).WithField("failed", failed).Info("capture closed")
		errs = append(errs, d.capture.Close())
	}
	if d.vi != nil {
		errs = append(errs, d.vi.Close())
	}
	if d.bridgeCreated && d.cfg.Bridge.Remove {
		errs = append(errs, d.ctl.RemoveBridge(d.cfg.Bridge.Name))
	}
	if d.ctl != nil {
		errs = append(errs, d.ctl.Close())
	}
	return errors.Join(errs...)
}
