// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/bradthebeeble/ignite/internal/storage/pagestore"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyNode(&cfg.Node); err != nil {
		return err
	}
	if err := verifyCluster(&cfg.Cluster); err != nil {
		return err
	}
	if err := verifyHTTP(&cfg.HTTP); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySnapshots(&cfg.Snapshots); err != nil {
		return err
	}
	if err := verifyCheck(&cfg.Check); err != nil {
		return err
	}
	return nil
}

func verifyNode(cfg *NodeSection) error {
	if cfg.Name == "" {
		return errors.New("node.name is required")
	}
	return nil
}

func verifyCluster(cfg *ClusterSection) error {
	if _, _, err := net.SplitHostPort(cfg.RaftBind); err != nil {
		return fmt.Errorf("cluster.raft_bind %q: %w", cfg.RaftBind, err)
	}
	if cfg.GossipBind == "" {
		return errors.New("cluster.gossip_bind is required")
	}
	if cfg.GossipPort <= 0 || cfg.GossipPort > 65535 {
		return fmt.Errorf("cluster.gossip_port %d is out of range", cfg.GossipPort)
	}
	if cfg.RaftDir == "" {
		return errors.New("cluster.raft_dir is required")
	}
	if _, _, err := net.SplitHostPort(cfg.RPCListen); err != nil {
		return fmt.Errorf("cluster.rpc_listen %q: %w", cfg.RPCListen, err)
	}
	if cfg.RPCAdvertise != "" {
		if _, _, err := net.SplitHostPort(cfg.RPCAdvertise); err != nil {
			return fmt.Errorf("cluster.rpc_advertise %q: %w", cfg.RPCAdvertise, err)
		}
	}
	if cfg.Bootstrap && len(cfg.Seeds) > 0 {
		return errors.New("cluster.bootstrap and cluster.seeds are mutually exclusive")
	}
	return nil
}

func verifyHTTP(cfg *HTTPSection) error {
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return fmt.Errorf("http.listen %q: %w", cfg.Listen, err)
	}
	if (cfg.TLS.CertFile == "") != (cfg.TLS.KeyFile == "") {
		return errors.New("http.tls.cert_file and http.tls.key_file must be set together")
	}
	if cfg.TLS.CertFile != "" {
		if _, err := os.Stat(cfg.TLS.CertFile); err != nil {
			return fmt.Errorf("http.tls.cert_file: %w", err)
		}
		if _, err := os.Stat(cfg.TLS.KeyFile); err != nil {
			return fmt.Errorf("http.tls.key_file: %w", err)
		}
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.Dir == "" {
		return errors.New("storage.dir is required")
	}

	// Check if storage directory exists or can be created
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return errors.New("cannot create storage directory: " + err.Error())
	}

	if !pagestore.ValidPageSize(cfg.PageSize) {
		return fmt.Errorf("storage.page_size %d: must be a power of two between %d and %d",
			cfg.PageSize, pagestore.MinPageSize, pagestore.MaxPageSize)
	}

	if cfg.ReadRatePages < 0 {
		return errors.New("storage.read_rate_pages must not be negative")
	}

	return nil
}

func verifySnapshots(cfg *SnapshotsSection) error {
	if cfg.Dir == "" {
		return errors.New("snapshots.dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return errors.New("cannot create snapshots directory: " + err.Error())
	}
	return nil
}

func verifyCheck(cfg *CheckSection) error {
	if cfg.NodeTimeout < 0 {
		return errors.New("check.node_timeout must not be negative")
	}
	if cfg.HistoryLimit < 0 {
		return errors.New("check.history_limit must not be negative")
	}
	return nil
}
