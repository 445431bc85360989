package core

// InterfaceConfig describes the virtual interface the daemon creates.
type InterfaceConfig struct {
	// Name is the requested interface name. Linux accepts templates like "tun%d".
	Name string `json:"name" yaml:"name"`

	// Kind is either "tun" or "tap".
	Kind string `json:"kind" yaml:"kind"`

	// Queues is the number of queues to open. Values above 1 need multi-queue support.
	Queues int `json:"queues" yaml:"queues"`

	// Address is an optional CIDR assigned after creation (e.g., "10.66.0.1/24").
	Address string `json:"address" yaml:"address"`

	// MTU is applied after creation when non-zero.
	MTU int `json:"mtu" yaml:"mtu"`

	// Promiscuous enables IFF_PROMISC on the new interface.
	Promiscuous bool `json:"promiscuous" yaml:"promiscuous"`

	// Async opens queues in non-blocking mode so reads park in the runtime poller.
	Async bool `json:"async" yaml:"async"`
}

// PipelineConfig tunes the reader/writer pair behind every queue.
type PipelineConfig struct {
	// Capacity is the bound of both frame channels.
	Capacity int `json:"capacity" yaml:"capacity"`

	// Reserve is the size of the read buffer reservation.
	Reserve int `json:"reserve" yaml:"reserve"`

	// MinFree is the free space below which the reservation is renewed.
	MinFree int `json:"min_free" yaml:"minFree"`

	// PCAPFile, when set, receives a copy of every frame.
	PCAPFile string `json:"pcap_file" yaml:"pcapFile"`

	// Echo answers ICMP echo requests arriving on the interface.
	Echo bool `json:"echo" yaml:"echo"`
}

// BridgeConfig optionally creates a bridge and enslaves interfaces to it.
type BridgeConfig struct {
	// Name of the bridge. Empty disables bridge management.
	Name string `json:"name" yaml:"name"`

	// Members are attached in order after the bridge exists.
	Members []string `json:"members" yaml:"members"`

	// AttachInterface adds the created virtual interface as a member too.
	AttachInterface bool `json:"attach_interface" yaml:"attachInterface"`

	// Remove deletes the bridge on shutdown.
	Remove bool `json:"remove" yaml:"remove"`
}

// WireGuardConfig contains configuration for WireGuard.
type WireGuardConfig struct {
	// Enabled runs a wireguard-go device on top of the virtual interface pipeline.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// PrivateKey is the WireGuard private key (base64).
	PrivateKey string `json:"private_key" yaml:"privateKey"`

	// ListenPort is the UDP port to listen on for WireGuard connections.
	ListenPort int `json:"listen_port" yaml:"listenPort"`

	// Peers is a list of WireGuard peers.
	Peers []WireGuardPeer `json:"peers" yaml:"peers"`
}

// WireGuardPeer represents a WireGuard peer.
type WireGuardPeer struct {
	// PublicKey is the peer's public key.
	PublicKey string `json:"public_key" yaml:"publicKey"`

	// AllowedIPs is a list of IP ranges that are allowed for this peer.
	AllowedIPs []string `json:"allowed_ips" yaml:"allowedIPs"`

	// Endpoint is the peer's endpoint address.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// PersistentKeepalive is the interval in seconds for sending keepalive packets.
	PersistentKeepalive int `json:"persistent_keepalive" yaml:"persistentKeepalive"`
}

// MetricsConfig controls periodic metric reporting.
type MetricsConfig struct {
	// Interval between reports, as a Go duration string. Empty disables reporting.
	Interval string `json:"interval" yaml:"interval"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format"`

	// Listen is an optional HTTP address serving /health and /metrics.
	Listen string `json:"listen" yaml:"listen"`
}
