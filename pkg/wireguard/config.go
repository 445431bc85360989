//go:build !netbsd

package wireguard

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/irctrakz/netif/pkg/core"
)

// PeerConfig holds a single WireGuard peer configuration.
type PeerConfig struct {
	PublicKey              string   // base64
	AllowedIPs             []string // CIDRs
	Endpoint               string   // host:port
	PersistentKeepaliveSec int      // optional
}

// DeviceConfig holds the WireGuard device configuration.
type DeviceConfig struct {
	ListenPort int
	PrivateKey string // base64
	MTU        int    // plaintext MTU reported to wireguard-go
	Peers      []PeerConfig
}

// FromConfig converts the daemon configuration section.
func FromConfig(c core.WireGuardConfig, mtu int) DeviceConfig {
	dc := DeviceConfig{ListenPort: c.ListenPort, PrivateKey: c.PrivateKey, MTU: mtu}
	for _, p := range c.Peers {
		dc.Peers = append(dc.Peers, PeerConfig{
			PublicKey:              p.PublicKey,
			AllowedIPs:             p.AllowedIPs,
			Endpoint:               p.Endpoint,
			PersistentKeepaliveSec: p.PersistentKeepalive,
		})
	}
	return dc
}

// LoadFromEnv builds a DeviceConfig from environment variables.
//
// Required:
//
//	NETIF_WG_PRIVATE_KEY  (base64)
//
// Optional:
//
//	NETIF_WG_LISTEN_PORT (default 51820)
//	NETIF_WG_MTU (default 1420)
//	NETIF_WG_PEERS (comma-separated peer indices, e.g., "0,1")
//
// For each index i in NETIF_WG_PEERS, read:
//
//	NETIF_WG_PEER_i_PUBLIC_KEY
//	NETIF_WG_PEER_i_ALLOWED_IPS (comma-separated CIDRs)
//	NETIF_WG_PEER_i_ENDPOINT (host:port)
//	NETIF_WG_PEER_i_KEEPALIVE (seconds, optional)
func (c *DeviceConfig) LoadFromEnv() error {
	pk := strings.TrimSpace(os.Getenv("NETIF_WG_PRIVATE_KEY"))
	if pk == "" {
		return fmt.Errorf("%w: NETIF_WG_PRIVATE_KEY is required", core.ErrBadArguments)
	}
	c.PrivateKey = pk
	c.ListenPort = 51820
	if v := os.Getenv("NETIF_WG_LISTEN_PORT"); v != "" {
		if x, err := strconv.Atoi(v); err == nil {
			c.ListenPort = x
		}
	}
	c.MTU = 1420
	if v := os.Getenv("NETIF_WG_MTU"); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x > 0 {
			c.MTU = x
		}
	}

	var peers []PeerConfig
	for _, i := range splitCSV(os.Getenv("NETIF_WG_PEERS")) {
		prefix := "NETIF_WG_PEER_" + i + "_"
		p := PeerConfig{
			PublicKey:  strings.TrimSpace(os.Getenv(prefix + "PUBLIC_KEY")),
			AllowedIPs: splitCSV(os.Getenv(prefix + "ALLOWED_IPS")),
			Endpoint:   strings.TrimSpace(os.Getenv(prefix + "ENDPOINT")),
		}
		if ka := strings.TrimSpace(os.Getenv(prefix + "KEEPALIVE")); ka != "" {
			if x, err := strconv.Atoi(ka); err == nil {
				p.PersistentKeepaliveSec = x
			}
		}
		if p.PublicKey != "" {
			peers = append(peers, p)
		}
	}
	c.Peers = peers
	return nil
}

// uapi renders the configuration in the wireguard-go UAPI text format. Keys
// are converted from base64 to the hex form UAPI expects.
func (c DeviceConfig) uapi() (string, error) {
	priv, err := keyHex(c.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("%w: private key must be base64 of 32 bytes", core.ErrBadArguments)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "private_key=%s\nlisten_port=%d\nreplace_peers=true\n", priv, c.ListenPort)
	for _, p := range c.Peers {
		pub, err := keyHex(p.PublicKey)
		if err != nil {
			return "", fmt.Errorf("%w: peer public key %q", core.ErrBadArguments, p.PublicKey)
		}
		fmt.Fprintf(&b, "public_key=%s\n", pub)
		if p.Endpoint != "" {
			fmt.Fprintf(&b, "endpoint=%s\n", p.Endpoint)
		}
		if p.PersistentKeepaliveSec > 0 {
			fmt.Fprintf(&b, "persistent_keepalive_interval=%d\n", p.PersistentKeepaliveSec)
		}
		b.WriteString("replace_allowed_ips=true\n")
		for _, ip := range p.AllowedIPs {
			fmt.Fprintf(&b, "allowed_ip=%s\n", ip)
		}
	}
	return b.String(), nil
}

func keyHex(k string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(k))
	if err != nil {
		return "", err
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("key is %d bytes", len(raw))
	}
	return hex.EncodeToString(raw), nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
