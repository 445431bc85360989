//go:build linux || darwin || freebsd || openbsd

package main

import (
	"fmt"
	"net/http"

	"github.com/irctrakz/netif/pkg/tuntap"
)

// healthChecker reports healthy while the interface is up and at least one
// pipeline is still reading.
type healthChecker struct {
	isUp  func() (bool, error)
	pipes []*tuntap.Pipeline
}

func newHealthChecker(d *daemon) *healthChecker {
	name := d.info.Name
	return &healthChecker{
		isUp:  func() (bool, error) { return d.ctl.IsUp(name) },
		pipes: d.pipes,
	}
}

func (h *healthChecker) check() error {
	up, err := h.isUp()
	if err != nil {
		return err
	}
	if !up {
		return fmt.Errorf("interface is down")
	}
	for _, p := range h.pipes {
		select {
		case <-p.Done():
		default:
			return nil
		}
	}
	return fmt.Errorf("all %d pipelines stopped", len(h.pipes))
}

func (h *healthChecker) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	if err := h.check(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
