//go:build !netbsd

package wireguard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/irctrakz/netif/pkg/logging"
	"golang.zx2c4.com/wireguard/conn"
	wgdev "golang.zx2c4.com/wireguard/device"
	wtun "golang.zx2c4.com/wireguard/tun"
)

// DeviceHandle is a minimal lifecycle for the WG device.
type DeviceHandle interface {
	Close() error
	// IpcGet returns the current device state in UAPI text form.
	IpcGet() (string, error)
	// RebindListenPort updates the device's UDP listen port (0 = random).
	RebindListenPort(port int) error
	// Peers parses the current peer state.
	Peers() ([]PeerStatus, error)
}

type wgHandle struct {
	dev    *wgdev.Device
	cancel context.CancelFunc
}

func (h *wgHandle) Close() error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.dev != nil {
		h.dev.Close()
	}
	return nil
}

func (h *wgHandle) IpcGet() (string, error) {
	if h == nil || h.dev == nil {
		return "", fmt.Errorf("nil device")
	}
	return h.dev.IpcGet()
}

// RebindListenPort updates the device's UDP listen port (0 = random) via UAPI.
func (h *wgHandle) RebindListenPort(port int) error {
	if h == nil || h.dev == nil {
		return fmt.Errorf("nil device")
	}
	if port < 0 {
		port = 0
	}
	if err := h.dev.IpcSet(fmt.Sprintf("listen_port=%d\n", port)); err != nil {
		return fmt.Errorf("IpcSet listen_port: %w", err)
	}
	return nil
}

func (h *wgHandle) Peers() ([]PeerStatus, error) {
	state, err := h.IpcGet()
	if err != nil {
		return nil, err
	}
	return ParsePeers(state), nil
}

// PeerStatus is the part of a peer's UAPI state worth logging.
type PeerStatus struct {
	PublicKey     string // hex
	Endpoint      string
	LastHandshake time.Time // zero when no handshake happened
	RxBytes       uint64
	TxBytes       uint64
}

// ParsePeers extracts per-peer status from UAPI "get" output.
func ParsePeers(state string) []PeerStatus {
	var peers []PeerStatus
	var cur *PeerStatus
	for _, line := range strings.Split(state, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		if key == "public_key" {
			peers = append(peers, PeerStatus{PublicKey: value})
			cur = &peers[len(peers)-1]
			continue
		}
		if cur == nil {
			continue
		}
		switch key {
		case "endpoint":
			cur.Endpoint = value
		case "last_handshake_time_sec":
			if sec, err := strconv.ParseInt(value, 10, 64); err == nil && sec > 0 {
				cur.LastHandshake = time.Unix(sec, 0)
			}
		case "rx_bytes":
			cur.RxBytes, _ = strconv.ParseUint(value, 10, 64)
		case "tx_bytes":
			cur.TxBytes, _ = strconv.ParseUint(value, 10, 64)
		}
	}
	return peers
}

// monitorHandshakes periodically logs handshake status until ctx ends.
func monitorHandshakes(ctx context.Context, h *wgHandle, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	log := logging.For("wireguard")
	log.Info("handshake monitoring started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			peers, err := h.Peers()
			if err != nil {
				log.WithError(err).Warn("handshake monitor: failed to get device state")
				continue
			}
			for _, p := range peers {
				logPeerStatus(p)
			}
		}
	}
}

func logPeerStatus(p PeerStatus) {
	handshake := "never"
	if !p.LastHandshake.IsZero() {
		handshake = time.Since(p.LastHandshake).Truncate(time.Second).String() + " ago"
	}
	shortKey := p.PublicKey
	if len(shortKey) > 16 {
		shortKey = shortKey[:8] + "..." + shortKey[len(shortKey)-8:]
	}
	logging.For("wireguard").Infof("peer %s: handshake=%s endpoint=%s transfer=rx:%d/tx:%d bytes",
		shortKey, handshake, p.Endpoint, p.RxBytes, p.TxBytes)
}

// StartOptions are the knobs of StartDevice beyond the device config.
type StartOptions struct {
	// Bind defaults to conn.NewDefaultBind().
	Bind conn.Bind
	// MonitorInterval enables periodic peer status logs when non-zero.
	MonitorInterval time.Duration
}

// StartDevice starts a wireguard-go device over tun and applies cfg via
// IpcSet.
func StartDevice(cfg DeviceConfig, tun wtun.Device, opts StartOptions) (DeviceHandle, error) {
	if tun == nil {
		return nil, fmt.Errorf("nil tun")
	}
	conf, err := cfg.uapi()
	if err != nil {
		return nil, err
	}
	bind := opts.Bind
	if bind == nil {
		bind = conn.NewDefaultBind()
	}

	entry := logging.For("wireguard")
	logger := &wgdev.Logger{Verbosef: wgdev.DiscardLogf, Errorf: entry.Errorf}
	if logging.IsDebug() {
		logger.Verbosef = entry.Debugf
	}
	dev := wgdev.NewDevice(tun, bind, logger)

	if logging.IsDebug() {
		masked := conf
		if priv, err := keyHex(cfg.PrivateKey); err == nil {
			masked = strings.ReplaceAll(conf, priv, strings.Repeat("*", len(priv)-6)+priv[len(priv)-6:])
		}
		entry.Debugf("UAPI IpcSet applying:\n%s", masked)
	}
	if err := dev.IpcSet(conf); err != nil {
		dev.Close()
		return nil, fmt.Errorf("IpcSet: %w", err)
	}
	if err := dev.Up(); err != nil {
		dev.Close()
		return nil, fmt.Errorf("device up: %w", err)
	}
	entry.WithField("port", cfg.ListenPort).WithField("peers", len(cfg.Peers)).Info("wireguard device up")

	ctx, cancel := context.WithCancel(context.Background())
	handle := &wgHandle{dev: dev, cancel: cancel}
	if opts.MonitorInterval > 0 {
		go monitorHandshakes(ctx, handle, opts.MonitorInterval)
	}
	return handle, nil
}
