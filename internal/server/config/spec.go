// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for ignite-server.
type ServerConfig struct {
	Node      NodeSection      `koanf:"node"`
	Cluster   ClusterSection   `koanf:"cluster"`
	HTTP      HTTPSection      `koanf:"http"`
	Local     LocalSection     `koanf:"local"`
	Storage   StorageSection   `koanf:"storage"`
	Snapshots SnapshotsSection `koanf:"snapshots"`
	Check     CheckSection     `koanf:"check"`
	Log       LogSection       `koanf:"log"`
	Metrics   MetricsSection   `koanf:"metrics"`
}

// NodeSection identifies this node within the cluster.
type NodeSection struct {
	// Name is the unique node name. If empty, a random name will be
	// generated at startup (see EnsureNodeName).
	Name string `koanf:"name"`

	// Attributes are free-form key/value pairs matched by cache-group
	// node filters, for example zone=eu.
	Attributes map[string]string `koanf:"attributes"`
}

// ClusterSection configures cluster membership and consensus.
//
// @req RQ-0401 - Cluster configuration
type ClusterSection struct {
	// RaftBind is the Raft TCP bind address (e.g., "192.168.1.10:47600").
	RaftBind string `koanf:"raft_bind"`

	// GossipBind is the gossip bind host (e.g., "192.168.1.10").
	GossipBind string `koanf:"gossip_bind"`

	// GossipPort is the gossip bind port (e.g., 47500).
	GossipPort int `koanf:"gossip_port"`

	// RaftDir is the directory for Raft log and snapshot storage.
	RaftDir string `koanf:"raft_dir"`

	// Bootstrap indicates if this node bootstraps a new cluster.
	// Mutually exclusive with Seeds.
	Bootstrap bool `koanf:"bootstrap"`

	// Seeds is the list of seed node gossip addresses to join an
	// existing cluster. Format: ["192.168.1.10:47500", "192.168.1.11:47500"]
	Seeds []string `koanf:"seeds"`

	// RPCListen is the host:port serving node-to-node verification RPC.
	RPCListen string `koanf:"rpc_listen"`

	// RPCAdvertise is the address other nodes dial for cluster RPC.
	// Defaults to RPCListen.
	RPCAdvertise string `koanf:"rpc_advertise"`
}

// HTTPSection configures the management HTTP API.
type HTTPSection struct {
	// Listen is the management API bind address.
	Listen string `koanf:"listen"`

	// AuthToken is the bearer token required on management requests.
	// Empty disables authentication.
	AuthToken string `koanf:"auth_token"`

	TLS TLSSection `koanf:"tls"`
}

// TLSSection configures TLS for the management API.
type TLSSection struct {
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`

	// ClientCADir holds CA certificates for client verification.
	// Empty disables client certificate checks.
	ClientCADir string `koanf:"client_ca_dir"`
}

// LocalSection configures the local management socket.
type LocalSection struct {
	SocketPath string `koanf:"socket_path"`
}

// StorageSection configures the node-local metastore and page geometry.
type StorageSection struct {
	// Dir is the metastore directory.
	Dir string `koanf:"dir"`

	// PageSize is the partition file page size in bytes.
	// Must be a power of two between 512 and 65536.
	PageSize int `koanf:"page_size"`

	// ReadRatePages bounds snapshot page reads per second during
	// verification. Zero disables throttling.
	ReadRatePages int `koanf:"read_rate_pages"`
}

// SnapshotsSection configures snapshot placement.
type SnapshotsSection struct {
	// Dir is the node's snapshot root directory.
	Dir string `koanf:"dir"`
}

// CheckSection configures verification runs.
type CheckSection struct {
	// NodeTimeout bounds the wait for each participant during a check.
	NodeTimeout time.Duration `koanf:"node_timeout"`

	// HistoryLimit bounds retained check records in the metastore.
	HistoryLimit int `koanf:"history_limit"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures Prometheus exposition.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}
