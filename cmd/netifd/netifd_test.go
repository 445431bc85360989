//go:build linux || darwin || freebsd || openbsd

package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/tuntap"
	wg "github.com/irctrakz/netif/pkg/wireguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeHandshakes(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	peers := []wg.PeerStatus{
		{PublicKey: "a", LastHandshake: now.Add(-30 * time.Second)},
		{PublicKey: "b", LastHandshake: now.Add(-10 * time.Minute)},
		{PublicKey: "c"},
	}
	got := summarizeHandshakes(peers, now)
	assert.Equal(t, map[string]uint64{
		"peers":      3,
		"fresh":      1,
		"stale":      2,
		"oldest_sec": 600,
		"newest_sec": 30,
	}, got)

	assert.Equal(t, map[string]uint64{"peers": 0}, summarizeHandshakes(nil, now))
}

func TestFormatText(t *testing.T) {
	s := metricsSnapshot{
		Timestamp: "2026-01-02T03:04:05Z",
		Interface: "tun0",
		Up:        true,
		Total:     core.PipelineMetrics{FramesRead: 3, BytesRead: 192, FramesWritten: 2, BytesWritten: 128},
		Queues:    make([]core.PipelineMetrics, 2),
		Echo:      map[string]uint64{"answered": 2, "ignored": 1},
		RT:        map[string]uint64{"heap_alloc": 4 << 20, "goroutines": 9},
	}
	out := formatText(s)
	assert.Contains(t, out, "iface=tun0 up")
	assert.Contains(t, out, "queues=2 rx=3/192 tx=2/128")
	assert.Contains(t, out, "echo: answered=2 ignored=1")
	assert.Contains(t, out, "heap=4Mi gor=9")
	assert.NotContains(t, out, "wg:")
}

func TestHealthChecker(t *testing.T) {
	dev := tuntap.NewMemDevice("t0", 1, false)
	p := tuntap.NewPipeline(dev, dev, tuntap.PipelineOptions{})
	up := true
	var upErr error
	h := &healthChecker{isUp: func() (bool, error) { return up, upErr }, pipes: []*tuntap.Pipeline{p}}

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		return rec
	}

	rec := get()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	up = false
	assert.Equal(t, http.StatusServiceUnavailable, get().Code)

	up, upErr = true, errors.New("no such device")
	assert.Contains(t, get().Body.String(), "no such device")

	upErr = nil
	require.NoError(t, p.Close())
	<-p.Done()
	rec = get()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "all 1 pipelines stopped")
}
