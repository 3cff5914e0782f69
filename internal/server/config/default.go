// Package config defines the server configuration structure.
package config

import (
	"time"

	"github.com/bradthebeeble/ignite/internal/storage/pagestore"
)

// Default configuration values.
const (
	DefaultHTTPListen = "127.0.0.1:8080"
	DefaultSocketPath = "/var/run/ignite/ignite.sock"

	DefaultRaftBind   = "127.0.0.1:47600"
	DefaultGossipBind = "127.0.0.1"
	DefaultGossipPort = 47500
	DefaultRPCListen  = "127.0.0.1:47100"

	DefaultStorageDir   = "/var/lib/ignite/data"
	DefaultRaftDir      = "/var/lib/ignite/raft"
	DefaultSnapshotsDir = "/var/lib/ignite/snapshots"

	DefaultPageSize     = pagestore.DefaultPageSize
	DefaultNodeTimeout  = 5 * time.Minute
	DefaultHistoryLimit = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Cluster: ClusterSection{
			RaftBind:   DefaultRaftBind,
			GossipBind: DefaultGossipBind,
			GossipPort: DefaultGossipPort,
			RaftDir:    DefaultRaftDir,
			RPCListen:  DefaultRPCListen,
		},
		HTTP: HTTPSection{
			Listen: DefaultHTTPListen,
		},
		Local: LocalSection{
			SocketPath: DefaultSocketPath,
		},
		Storage: StorageSection{
			Dir:      DefaultStorageDir,
			PageSize: DefaultPageSize,
		},
		Snapshots: SnapshotsSection{
			Dir: DefaultSnapshotsDir,
		},
		Check: CheckSection{
			NodeTimeout:  DefaultNodeTimeout,
			HistoryLimit: DefaultHistoryLimit,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
	}
}
