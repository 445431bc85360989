//go:build linux || darwin || freebsd || openbsd

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/logging"
	wg "github.com/irctrakz/netif/pkg/wireguard"
)

// handshakeFresh is the age under which a peer handshake counts as fresh.
const handshakeFresh = 3 * time.Minute

type metricsSnapshot struct {
	Timestamp string                 `json:"ts"`
	Interface string                 `json:"iface"`
	Up        bool                   `json:"up"`
	Total     core.PipelineMetrics   `json:"total"`
	Queues    []core.PipelineMetrics `json:"queues"`
	Echo      map[string]uint64      `json:"echo,omitempty"`
	Capture   map[string]uint64      `json:"capture,omitempty"`
	WG        map[string]uint64      `json:"wg,omitempty"`
	WGHS      map[string]uint64      `json:"wg_hs,omitempty"`
	RT        map[string]uint64      `json:"rt"`
}

type metricsReporter struct {
	d      *daemon
	every  time.Duration
	format string
	health *healthChecker
}

func newMetricsReporter(d *daemon) *metricsReporter {
	r := &metricsReporter{d: d, format: strings.ToLower(d.cfg.Metrics.Format), health: newHealthChecker(d)}
	if iv := d.cfg.Metrics.Interval; iv != "" {
		r.every, _ = time.ParseDuration(iv)
	}
	if r.format == "" {
		r.format = "text"
	}
	return r
}

// run logs a snapshot every interval and serves /health and /metrics when
// a listen address is configured.
func (r *metricsReporter) run(ctx context.Context) {
	if addr := r.d.cfg.Metrics.Listen; addr != "" {
		go r.serve(ctx, addr)
	}
	if r.every <= 0 {
		return
	}
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()
	for {
		r.dump(r.collect())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *metricsReporter) serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/health", r.health)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(r.collect())
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	logging.Infof("metrics: serving on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Warnf("metrics: http server: %v", err)
	}
}

func (r *metricsReporter) collect() metricsSnapshot {
	d := r.d
	snap := metricsSnapshot{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Interface: d.info.Name,
		RT:        runtimeStats(),
	}
	snap.Up, _ = d.ctl.IsUp(d.info.Name)
	for _, p := range d.pipes {
		m := p.Metrics()
		snap.Queues = append(snap.Queues, m)
		snap.Total = snap.Total.Add(m)
	}
	if len(d.responders) > 0 {
		snap.Echo = map[string]uint64{}
		for _, er := range d.responders {
			a, i := er.Stats()
			snap.Echo["answered"] += a
			snap.Echo["ignored"] += i
		}
	}
	if d.capture != nil {
		written, failed := d.capture.Stats()
		snap.Capture = map[string]uint64{"written": written, "failed": failed}
	}
	if d.wgTun != nil {
		m := d.wgTun.Metrics()
		snap.WG = map[string]uint64{
			"plaintext_from_wg": m.PlaintextFromWG,
			"plaintext_to_wg":   m.PlaintextToWG,
			"truncated":         m.Truncated,
		}
	}
	if d.wgDev != nil {
		if peers, err := d.wgDev.Peers(); err == nil {
			snap.WGHS = summarizeHandshakes(peers, time.Now())
		}
	}
	return snap
}

func (r *metricsReporter) dump(snap metricsSnapshot) {
	switch r.format {
	case "json":
		b, _ := json.Marshal(snap)
		logging.Infof("metrics: %s", string(b))
	default:
		logging.Infof("metrics: %s", formatText(snap))
	}
}

func formatText(s metricsSnapshot) string {
	state := "down"
	if s.Up {
		state = "up"
	}
	t := s.Total
	var b strings.Builder
	fmt.Fprintf(&b, "ts=%s iface=%s %s | pipe: queues=%d rx=%d/%d tx=%d/%d werr=%d retry=%d resv=%d",
		s.Timestamp, s.Interface, state, len(s.Queues),
		t.FramesRead, t.BytesRead, t.FramesWritten, t.BytesWritten,
		t.WriteErrors, t.ReadRetries, t.Reservations)
	if s.Echo != nil {
		fmt.Fprintf(&b, " | echo: answered=%d ignored=%d", s.Echo["answered"], s.Echo["ignored"])
	}
	if s.Capture != nil {
		fmt.Fprintf(&b, " | pcap: written=%d failed=%d", s.Capture["written"], s.Capture["failed"])
	}
	if s.WG != nil {
		fmt.Fprintf(&b, " | wg: from=%d to=%d trunc=%d", s.WG["plaintext_from_wg"], s.WG["plaintext_to_wg"], s.WG["truncated"])
	}
	if s.WGHS != nil {
		fmt.Fprintf(&b, " hs: peers=%d %d/%d oldest=%ds newest=%ds",
			s.WGHS["peers"], s.WGHS["fresh"], s.WGHS["stale"], s.WGHS["oldest_sec"], s.WGHS["newest_sec"])
	}
	fmt.Fprintf(&b, " | rt: heap=%dMi gor=%d gc=%d", s.RT["heap_alloc"]>>20, s.RT["goroutines"], s.RT["num_gc"])
	return b.String()
}

// summarizeHandshakes counts peers by handshake age. Keys: peers, fresh,
// stale, oldest_sec, newest_sec.
func summarizeHandshakes(peers []wg.PeerStatus, now time.Time) map[string]uint64 {
	out := map[string]uint64{"peers": uint64(len(peers))}
	first := true
	for _, p := range peers {
		if p.LastHandshake.IsZero() {
			out["stale"]++
			continue
		}
		age := uint64(now.Sub(p.LastHandshake) / time.Second)
		if now.Sub(p.LastHandshake) < handshakeFresh {
			out["fresh"]++
		} else {
			out["stale"]++
		}
		if first || age > out["oldest_sec"] {
			out["oldest_sec"] = age
		}
		if first || age < out["newest_sec"] {
			out["newest_sec"] = age
		}
		first = false
	}
	return out
}

func runtimeStats() map[string]uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return map[string]uint64{
		"heap_alloc": ms.HeapAlloc,
		"heap_inuse": ms.HeapInuse,
		"sys":        ms.Sys,
		"num_gc":     uint64(ms.NumGC),
		"goroutines": uint64(runtime.NumGoroutine()),
	}
}
